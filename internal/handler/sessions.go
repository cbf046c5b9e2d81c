package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/middleware"
	"cashdesk/internal/service"
)

type SessionsHandler struct{ svc service.SessionService }

func NewSessionsHandler(svc service.SessionService) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

// Open godoc
// @Summary Opens a cash session on a register
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/sessions/open [post]
func (h *SessionsHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operatorID, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id"))
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), operatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Record godoc
// @Summary Appends a transaction to an open session's ledger
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session id"
// @Param body body dto.RecordTransactionRequest true "Transaction data"
// @Success 201 {object} dto.TransactionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/sessions/{id}/transactions [post]
func (h *SessionsHandler) Record(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	var req dto.RecordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operatorID, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id"))
		return
	}

	resp, err := h.svc.Record(c.Request.Context(), operatorID, sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Closes a session with the counted drawer amount
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session id"
// @Param body body dto.CloseSessionRequest true "Counted amount"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/sessions/{id}/close [post]
func (h *SessionsHandler) Close(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateNotes replaces a session's notes. Works on closed sessions too.
func (h *SessionsHandler) UpdateNotes(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	var req dto.UpdateNotesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateNotes(c.Request.Context(), sessionID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns one session with its live expected closing amount.
func (h *SessionsHandler) Get(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns sessions matching the filter, newest first.
func (h *SessionsHandler) List(c *gin.Context) {
	var f dto.SessionFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid filter: "+err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTransactions returns a session's ledger in insertion order.
func (h *SessionsHandler) ListTransactions(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	resp, err := h.svc.ListTransactions(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active resolves the open session for a register or an operator. Exactly one
// of register_id / operator_id must be supplied; 404 when nothing is open —
// dependent UIs gate sale entry on this.
func (h *SessionsHandler) Active(c *gin.Context) {
	registerParam := c.Query("register_id")
	operatorParam := c.Query("operator_id")
	if (registerParam == "") == (operatorParam == "") {
		c.JSON(http.StatusBadRequest, apierror.New("provide exactly one of register_id or operator_id"))
		return
	}

	var (
		resp *dto.SessionResponse
		err  error
	)
	if registerParam != "" {
		registerID, perr := uuid.Parse(registerParam)
		if perr != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid register id"))
			return
		}
		resp, err = h.svc.ActiveForRegister(c.Request.Context(), registerID)
	} else {
		operatorID, perr := uuid.Parse(operatorParam)
		if perr != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid operator id"))
			return
		}
		resp, err = h.svc.ActiveForOperator(c.Request.Context(), operatorID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("no open session"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
