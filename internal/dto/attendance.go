package dto

import "github.com/frenillazo/acainfo-portal-api/internal/models"

// RosterView is the teacher-facing attendance view of one session: the
// recorded ledger and the entries still awaiting a decision.
type RosterView struct {
	Session    models.Session       `json:"session"`
	Recorded   []models.RosterEntry `json:"recorded"`
	Unrecorded []models.RosterEntry `json:"unrecorded"`
}

// BulkAttendanceRequest carries a batch of attendance decisions keyed by
// reservation ID.
type BulkAttendanceRequest struct {
	Decisions map[string]models.AttendanceStatus `json:"decisions" binding:"required" validate:"dive,oneof=PRESENT ABSENT"`
}

// RecordAttendanceRequest carries a single attendance decision.
type RecordAttendanceRequest struct {
	Status models.AttendanceStatus `json:"status" binding:"required" validate:"oneof=PRESENT ABSENT"`
}

// BulkAttendanceResult reports what a batch write actually touched.
type BulkAttendanceResult struct {
	Recorded int                  `json:"recorded"`
	Skipped  int                  `json:"skipped"`
	Entries  []models.Reservation `json:"entries"`
}
