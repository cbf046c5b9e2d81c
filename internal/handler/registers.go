package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/repository"
)

// RegistersHandler manages physical register records. Thin enough that it
// talks to the repository directly.
type RegistersHandler struct{ registers repository.RegisterRepository }

func NewRegistersHandler(registers repository.RegisterRepository) *RegistersHandler {
	return &RegistersHandler{registers: registers}
}

// Create godoc
// @Summary Registers a new cash register
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateRegisterRequest true "Register data"
// @Success 201 {object} dto.RegisterResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/registers [post]
func (h *RegistersHandler) Create(c *gin.Context) {
	var req dto.CreateRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	reg := &model.CashRegister{
		Number:   req.Number,
		Location: req.Location,
		Active:   true,
	}
	if err := h.registers.Create(c.Request.Context(), reg); err != nil {
		if err == repository.ErrDuplicate {
			respondError(c, apierror.Conflict("register number already exists"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registerToResponse(reg))
}

// List returns all registers; ?active=true narrows to active ones.
func (h *RegistersHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	regs, err := h.registers.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.RegisterResponse, 0, len(regs))
	for i := range regs {
		out = append(out, registerToResponse(&regs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Deactivate takes a register out of service. Existing open sessions are
// unaffected; new sessions on it are rejected at open time.
func (h *RegistersHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid register id"))
		return
	}
	if err := h.registers.SetActive(c.Request.Context(), id, false); err != nil {
		if err == repository.ErrNotFound {
			respondError(c, apierror.NotFound("register not found"))
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func registerToResponse(r *model.CashRegister) dto.RegisterResponse {
	return dto.RegisterResponse{
		ID:       r.ID.String(),
		Number:   r.Number,
		Location: r.Location,
		Active:   r.Active,
	}
}
