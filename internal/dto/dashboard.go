package dto

import "github.com/frenillazo/acainfo-portal-api/internal/models"

// UpcomingSession pairs a confirmed reservation with its session for the
// overview card.
type UpcomingSession struct {
	Session     models.Session          `json:"session"`
	Reservation models.Reservation      `json:"reservation"`
	State       models.ReservationState `json:"state"`
}

// AttendanceSummary aggregates the student's recorded attendance ledger.
type AttendanceSummary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// StudentOverviewResponse is the dashboard payload for one student.
type StudentOverviewResponse struct {
	ActiveEnrollments     int               `json:"active_enrollments"`
	WaitingListCount      int               `json:"waiting_list_count"`
	UpcomingSessions      []UpcomingSession `json:"upcoming_sessions"`
	PendingOnlineRequests int               `json:"pending_online_requests"`
	Attendance            AttendanceSummary `json:"attendance"`
}
