package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frenillazo/acainfo-portal-api/internal/dto"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
	"github.com/frenillazo/acainfo-portal-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, studentID string) (*dto.StudentOverviewResponse, error)
}

// DashboardHandler serves the student overview card.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview godoc
// @Summary Student dashboard overview
// @Tags Dashboard
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	studentID := c.Param("id")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
