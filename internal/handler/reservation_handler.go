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

type reservationService interface {
	Create(ctx context.Context, actor models.Actor, sessionID string, mode models.ReservationMode) (*models.Reservation, error)
	Cancel(ctx context.Context, actor models.Actor, reservationID string) (*models.Reservation, error)
	SwitchCandidates(ctx context.Context, actor models.Actor, reservationID string) ([]dto.SwitchCandidate, error)
	Switch(ctx context.Context, actor models.Actor, reservationID, newSessionID string) (*models.Reservation, error)
	RequestOnline(ctx context.Context, actor models.Actor, reservationID string) (*models.Reservation, error)
	ProcessOnlineRequest(ctx context.Context, actor models.Actor, reservationID string, approved bool) (*models.Reservation, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.Reservation, error)
}

// ReservationHandler wires the booking workflows to HTTP endpoints.
type ReservationHandler struct {
	service reservationService
}

// NewReservationHandler constructs the handler.
func NewReservationHandler(service reservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// Create godoc
// @Summary Book a session
// @Tags Reservations
// @Accept json
// @Produce json
// @Param payload body dto.CreateReservationRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "session_id and mode are required"))
		return
	}
	if err := dto.Validate(req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "mode must be IN_PERSON or ONLINE"))
		return
	}

	reservation, err := h.service.Create(c.Request.Context(), actor, req.SessionID, req.Mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewReservationResponse(*reservation))
}

// ListMine godoc
// @Summary List the caller's reservations
// @Tags Reservations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reservations [get]
func (h *ReservationHandler) ListMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reservations, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, dto.NewReservationResponse(r))
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Cancel godoc
// @Summary Cancel a reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reservation, err := h.service.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewReservationResponse(*reservation), nil)
}

// SwitchCandidates godoc
// @Summary List sessions a reservation can switch to
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/switch-candidates [get]
func (h *ReservationHandler) SwitchCandidates(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	candidates, err := h.service.SwitchCandidates(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// Switch godoc
// @Summary Move a reservation to another session
// @Tags Reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param payload body dto.SwitchReservationRequest true "Target session"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/switch [post]
func (h *ReservationHandler) Switch(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SwitchReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "new_session_id is required"))
		return
	}

	reservation, err := h.service.Switch(c.Request.Context(), actor, c.Param("id"), req.NewSessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewReservationResponse(*reservation), nil)
}

// RequestOnline godoc
// @Summary Request online attendance for an in-person reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/online-request [post]
func (h *ReservationHandler) RequestOnline(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reservation, err := h.service.RequestOnline(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewReservationResponse(*reservation), nil)
}

// ProcessOnlineRequest godoc
// @Summary Approve or reject a pending online attendance request
// @Tags Reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param payload body dto.ProcessOnlineRequestRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/online-request/decision [post]
func (h *ReservationHandler) ProcessOnlineRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ProcessOnlineRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Approved == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "approved is required"))
		return
	}

	reservation, err := h.service.ProcessOnlineRequest(c.Request.Context(), actor, c.Param("id"), *req.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewReservationResponse(*reservation), nil)
}
