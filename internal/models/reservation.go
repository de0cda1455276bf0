package models

import "time"

// ReservationStatus is the top-level lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// ReservationMode is the attendance mode a reservation currently holds.
type ReservationMode string

const (
	ReservationModeInPerson ReservationMode = "IN_PERSON"
	ReservationModeOnline   ReservationMode = "ONLINE"
)

// Valid returns true when the mode is a supported value.
func (m ReservationMode) Valid() bool {
	return m == ReservationModeInPerson || m == ReservationModeOnline
}

// OnlineRequestStatus tracks the student-initiated remote attendance request.
type OnlineRequestStatus string

const (
	OnlineRequestPending  OnlineRequestStatus = "PENDING"
	OnlineRequestApproved OnlineRequestStatus = "APPROVED"
	OnlineRequestRejected OnlineRequestStatus = "REJECTED"
)

// AttendanceStatus records the final attendance decision for a reservation.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// ReservationState is the tagged union over the wire-level nullable fields.
// Gating logic switches on it instead of inspecting field combinations, so
// illegal states (attendance on a cancelled reservation, online request on
// an online reservation) cannot be expressed.
type ReservationState string

const (
	StateCancelled       ReservationState = "cancelled"
	StateInPerson        ReservationState = "in_person"
	StateOnlineRequested ReservationState = "online_requested"
	StateRequestRejected ReservationState = "request_rejected"
	StateOnline          ReservationState = "online"
)

// Reservation is one student's claim on one session. The wire shape mirrors
// the academy API; State() exposes the tagged view.
type Reservation struct {
	ID           string            `json:"id"`
	StudentID    string            `json:"student_id"`
	SessionID    string            `json:"session_id"`
	EnrollmentID string            `json:"enrollment_id"`
	Mode         ReservationMode   `json:"mode"`
	Status       ReservationStatus `json:"status"`

	OnlineRequestStatus *OnlineRequestStatus `json:"online_request_status,omitempty"`
	OnlineRequestedAt   *time.Time           `json:"online_requested_at,omitempty"`
	OnlineProcessedAt   *time.Time           `json:"online_processed_at,omitempty"`
	OnlineProcessedBy   *string              `json:"online_processed_by,omitempty"`

	AttendanceStatus     *AttendanceStatus `json:"attendance_status,omitempty"`
	AttendanceRecordedAt *time.Time        `json:"attendance_recorded_at,omitempty"`
	AttendanceRecordedBy *string           `json:"attendance_recorded_by,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// RosterEntry enriches a reservation with student identity for teachers.
type RosterEntry struct {
	Reservation
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// State collapses the nullable sub-state fields into the tagged union.
func (r Reservation) State() ReservationState {
	if r.Status == ReservationStatusCancelled {
		return StateCancelled
	}
	if r.Mode == ReservationModeOnline {
		return StateOnline
	}
	if r.OnlineRequestStatus != nil {
		switch *r.OnlineRequestStatus {
		case OnlineRequestPending:
			return StateOnlineRequested
		case OnlineRequestRejected:
			return StateRequestRejected
		case OnlineRequestApproved:
			// Approval flips the mode upstream; an approved request with an
			// in-person mode is a stale read and renders as online.
			return StateOnline
		}
	}
	return StateInPerson
}

// AttendanceRecorded reports whether the attendance ledger already holds a
// decision for this reservation. Recorded entries are immutable.
func (r Reservation) AttendanceRecorded() bool {
	return r.AttendanceStatus != nil
}

// CanBeCancelled reports whether a student may still cancel: the reservation
// is confirmed and its session has not started.
func (r Reservation) CanBeCancelled(session Session, now time.Time) bool {
	if r.Status != ReservationStatusConfirmed {
		return false
	}
	return session.VisualStatus(now) == VisualStatusScheduled
}

// CanRequestOnline is the advisory gate for the remote attendance request:
// in-person mode, no prior request, a regular (non-intensive) group, and at
// least `window` before the session starts. The upstream remains the
// authority on boundary cases.
func (r Reservation) CanRequestOnline(session Session, now time.Time, window time.Duration) bool {
	if r.State() != StateInPerson {
		return false
	}
	if session.IsIntensive() {
		return false
	}
	if session.Status != SessionStatusScheduled {
		return false
	}
	return !now.After(session.StartsAt().Add(-window))
}
