package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptrOnline(s OnlineRequestStatus) *OnlineRequestStatus { return &s }

func TestReservationState(t *testing.T) {
	r := Reservation{Status: ReservationStatusConfirmed, Mode: ReservationModeInPerson}
	assert.Equal(t, StateInPerson, r.State())

	r.OnlineRequestStatus = ptrOnline(OnlineRequestPending)
	assert.Equal(t, StateOnlineRequested, r.State())

	r.OnlineRequestStatus = ptrOnline(OnlineRequestRejected)
	assert.Equal(t, StateRequestRejected, r.State())

	r.OnlineRequestStatus = ptrOnline(OnlineRequestApproved)
	assert.Equal(t, StateOnline, r.State())

	r.Mode = ReservationModeOnline
	assert.Equal(t, StateOnline, r.State())

	r.Status = ReservationStatusCancelled
	assert.Equal(t, StateCancelled, r.State())
}

func TestCanBeCancelled(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	session := sessionOn(day, "11:00", "13:00", SessionStatusScheduled)
	r := Reservation{Status: ReservationStatusConfirmed, Mode: ReservationModeInPerson}

	before := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	during := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	after := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	assert.True(t, r.CanBeCancelled(session, before))
	assert.False(t, r.CanBeCancelled(session, during))
	assert.False(t, r.CanBeCancelled(session, after))

	r.Status = ReservationStatusCancelled
	assert.False(t, r.CanBeCancelled(session, before))
}

func TestCanRequestOnline(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	session := sessionOn(day, "18:00", "20:00", SessionStatusScheduled)
	window := 6 * time.Hour
	r := Reservation{Status: ReservationStatusConfirmed, Mode: ReservationModeInPerson}

	early := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	assert.True(t, r.CanRequestOnline(session, early, window))
	assert.False(t, r.CanRequestOnline(session, late, window))

	// Exactly on the boundary still qualifies.
	boundary := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.True(t, r.CanRequestOnline(session, boundary, window))

	intensive := session
	intensive.GroupType = "INTENSIVE_JULY"
	assert.False(t, r.CanRequestOnline(intensive, early, window))

	pending := r
	pending.OnlineRequestStatus = ptrOnline(OnlineRequestPending)
	assert.False(t, pending.CanRequestOnline(session, early, window))

	online := r
	online.Mode = ReservationModeOnline
	assert.False(t, online.CanRequestOnline(session, early, window))

	cancelled := r
	cancelled.Status = ReservationStatusCancelled
	assert.False(t, cancelled.CanRequestOnline(session, early, window))

	postponed := session
	postponed.Status = SessionStatusPostponed
	assert.False(t, r.CanRequestOnline(postponed, early, window))
}
