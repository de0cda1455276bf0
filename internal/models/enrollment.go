package models

// Enrollment is a student's registration to a subject group. The portal
// consumes enrollments read-only as eligibility evidence; their lifecycle is
// owned by the academy API.
type Enrollment struct {
	ID              string `json:"id"`
	StudentID       string `json:"student_id"`
	SubjectID       string `json:"subject_id"`
	GroupID         string `json:"group_id"`
	IsActive        bool   `json:"is_active"`
	IsOnWaitingList bool   `json:"is_on_waiting_list"`
}

// Eligible reports whether the enrollment grants booking rights for its
// subject: active or waitlisted enrollments both qualify.
func (e Enrollment) Eligible() bool {
	return e.IsActive || e.IsOnWaitingList
}
