package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frenillazo/acainfo-portal-api/internal/models"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
	"github.com/frenillazo/acainfo-portal-api/pkg/response"
)

type scheduleService interface {
	Week(ctx context.Context, studentID string, weekOf time.Time, includeAlternatives bool) (*models.WeekSchedule, error)
}

// ScheduleHandler serves the weekly calendar grid.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Week godoc
// @Summary Weekly schedule for a student
// @Tags Schedule
// @Produce json
// @Param id path string true "Student ID"
// @Param week query string false "Any date inside the week (YYYY-MM-DD). Defaults to today"
// @Param alternatives query bool false "Include bookable sessions of enrolled subjects"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedule [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	studentID := c.Param("id")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}

	weekOf := time.Now()
	if raw := strings.TrimSpace(c.Query("week")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid week format, expected YYYY-MM-DD"))
			return
		}
		weekOf = parsed
	}

	includeAlternatives := c.Query("alternatives") == "true"

	week, err := h.service.Week(c.Request.Context(), studentID, weekOf, includeAlternatives)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}
