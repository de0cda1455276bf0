package dto

import "github.com/frenillazo/acainfo-portal-api/internal/models"

// CreateReservationRequest is the booking payload sent by the portal client.
type CreateReservationRequest struct {
	SessionID string                 `json:"session_id" binding:"required"`
	Mode      models.ReservationMode `json:"mode" binding:"required" validate:"oneof=IN_PERSON ONLINE"`
}

// SwitchReservationRequest rebinds an existing reservation to a new session.
type SwitchReservationRequest struct {
	NewSessionID string `json:"new_session_id" binding:"required"`
}

// ProcessOnlineRequestRequest carries the teacher's decision.
type ProcessOnlineRequestRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ReservationResponse decorates a reservation with its derived state tag.
type ReservationResponse struct {
	models.Reservation
	State models.ReservationState `json:"state"`
}

// NewReservationResponse tags the reservation's derived state.
func NewReservationResponse(r models.Reservation) ReservationResponse {
	return ReservationResponse{Reservation: r, State: r.State()}
}

// SwitchCandidate is one alternative session a reservation can move to.
type SwitchCandidate struct {
	Session   models.Session `json:"session"`
	SeatsLeft *int           `json:"seats_left,omitempty"`
}
