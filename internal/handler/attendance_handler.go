package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frenillazo/acainfo-portal-api/internal/dto"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
	"github.com/frenillazo/acainfo-portal-api/pkg/response"
)

type attendanceService interface {
	Roster(ctx context.Context, actor models.Actor, sessionID string) (*dto.RosterView, error)
	Record(ctx context.Context, actor models.Actor, reservationID string, status models.AttendanceStatus) (*models.Reservation, error)
	BulkRecord(ctx context.Context, actor models.Actor, sessionID string, decisions map[string]models.AttendanceStatus) (*dto.BulkAttendanceResult, error)
	MarkRemainingAbsent(ctx context.Context, actor models.Actor, sessionID string) (*dto.BulkAttendanceResult, error)
}

// AttendanceHandler serves the teacher roster and attendance writes.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Roster godoc
// @Summary Attendance roster for a session
// @Tags Attendance
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.service.Roster(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Record godoc
// @Summary Record one attendance decision
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param payload body dto.RecordAttendanceRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status is required"))
		return
	}
	if err := dto.Validate(req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be PRESENT or ABSENT"))
		return
	}

	reservation, err := h.service.Record(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewReservationResponse(*reservation), nil)
}

// BulkRecord godoc
// @Summary Record a batch of attendance decisions
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.BulkAttendanceRequest true "Decisions keyed by reservation ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [post]
func (h *AttendanceHandler) BulkRecord(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "decisions are required"))
		return
	}
	if err := dto.Validate(req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "decisions must map reservation IDs to PRESENT or ABSENT"))
		return
	}

	result, err := h.service.BulkRecord(c.Request.Context(), actor, c.Param("id"), req.Decisions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MarkRemainingAbsent godoc
// @Summary Mark every unrecorded student absent once the session ends
// @Tags Attendance
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance/close [post]
func (h *AttendanceHandler) MarkRemainingAbsent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.MarkRemainingAbsent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
