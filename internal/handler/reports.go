package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/service"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Summary godoc
// @Summary Aggregate totals over the sessions matching a filter
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "Session status"
// @Param register_id query string false "Register id"
// @Param operator_id query string false "Operator id"
// @Success 200 {object} dto.SummaryResponse
// @Router /v1/reports/summary [get]
func (h *ReportsHandler) Summary(c *gin.Context) {
	var f dto.SessionFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid filter: "+err.Error()))
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SessionBuckets returns a session's transaction totals bucketed by hour or
// day, controlled by the ?by= query parameter.
func (h *ReportsHandler) SessionBuckets(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	by := c.DefaultQuery("by", "hour")
	buckets, err := h.svc.SessionBuckets(c.Request.Context(), sessionID, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}
