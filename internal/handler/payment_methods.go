package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/repository"
)

type PaymentMethodsHandler struct{ methods repository.PaymentMethodRepository }

func NewPaymentMethodsHandler(methods repository.PaymentMethodRepository) *PaymentMethodsHandler {
	return &PaymentMethodsHandler{methods: methods}
}

// Create godoc
// @Summary Adds a payment method
// @Tags payment-methods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreatePaymentMethodRequest true "Payment method data"
// @Success 201 {object} dto.PaymentMethodResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/payment-methods [post]
func (h *PaymentMethodsHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	m := &model.PaymentMethod{
		Name:              req.Name,
		RequiresReference: req.RequiresReference,
		Active:            true,
	}
	if err := h.methods.Create(c.Request.Context(), m); err != nil {
		if err == repository.ErrDuplicate {
			respondError(c, apierror.Conflict("payment method already exists"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, methodToResponse(m))
}

// List returns payment methods; ?active=true narrows to active ones.
func (h *PaymentMethodsHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	methods, err := h.methods.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, methodToResponse(&methods[i]))
	}
	c.JSON(http.StatusOK, out)
}

func methodToResponse(m *model.PaymentMethod) dto.PaymentMethodResponse {
	return dto.PaymentMethodResponse{
		ID:                m.ID.String(),
		Name:              m.Name,
		RequiresReference: m.RequiresReference,
		Active:            m.Active,
	}
}
