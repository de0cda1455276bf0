package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frenillazo/acainfo-portal-api/internal/dto"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
	"github.com/frenillazo/acainfo-portal-api/pkg/response"
)

type exportService interface {
	WeeklySchedulePDF(ctx context.Context, studentID string, weekOf time.Time) (*dto.ExportResponse, error)
	RosterCSV(ctx context.Context, actor models.Actor, sessionID string) (*dto.ExportResponse, error)
	Download(token string, w io.Writer) (string, error)
}

// ExportHandler serves schedule and roster exports behind signed links.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// SchedulePDF godoc
// @Summary Export a student's weekly schedule as PDF
// @Tags Exports
// @Produce json
// @Param id path string true "Student ID"
// @Param week query string false "Any date inside the week (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedule/export [post]
func (h *ExportHandler) SchedulePDF(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
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

	result, err := h.service.WeeklySchedulePDF(c.Request.Context(), c.Param("id"), weekOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RosterCSV godoc
// @Summary Export a session's attendance roster as CSV
// @Tags Exports
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance/export [post]
func (h *ExportHandler) RosterCSV(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.RosterCSV(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a previously generated export
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}

	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	c.Header("Content-Disposition", "attachment")
	if _, err := h.service.Download(token, c.Writer); err != nil {
		response.Error(c, err)
		return
	}
}
