package upstream

import (
	"context"
	"fmt"
	"net/url"

	"github.com/frenillazo/acainfo-portal-api/internal/models"
)

// ReservationClient round-trips reservation mutations to the academy API.
// Each mutation is a single logical call; the portal never composes partial
// writes (switch-session in particular is one upstream operation).
type ReservationClient struct {
	client *Client
}

// NewReservationClient constructs a ReservationClient.
func NewReservationClient(client *Client) *ReservationClient {
	return &ReservationClient{client: client}
}

// CreateReservationRequest is the booking wire shape.
type CreateReservationRequest struct {
	StudentID    string                 `json:"studentId"`
	SessionID    string                 `json:"sessionId"`
	EnrollmentID string                 `json:"enrollmentId"`
	Mode         models.ReservationMode `json:"mode"`
}

// Create books a session for a student.
func (c *ReservationClient) Create(ctx context.Context, req CreateReservationRequest) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := c.client.post(ctx, "reservations.create", "/reservations", req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindByID loads a single reservation.
func (c *ReservationClient) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := c.client.get(ctx, "reservations.find", fmt.Sprintf("/reservations/%s", url.PathEscape(id)), nil, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByStudent returns all reservations held by a student.
func (c *ReservationClient) ListByStudent(ctx context.Context, studentID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	path := fmt.Sprintf("/students/%s/reservations", url.PathEscape(studentID))
	if err := c.client.get(ctx, "reservations.list_by_student", path, nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListBySession returns all reservations bound to a session.
func (c *ReservationClient) ListBySession(ctx context.Context, sessionID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	path := fmt.Sprintf("/sessions/%s/reservations", url.PathEscape(sessionID))
	if err := c.client.get(ctx, "reservations.list_by_session", path, nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// Cancel marks a reservation cancelled. Cancellation is irreversible; a new
// reservation is required to re-book.
func (c *ReservationClient) Cancel(ctx context.Context, reservationID, studentID string) (*models.Reservation, error) {
	body := map[string]string{"studentId": studentID}
	var reservation models.Reservation
	path := fmt.Sprintf("/reservations/%s/cancel", url.PathEscape(reservationID))
	if err := c.client.post(ctx, "reservations.cancel", path, body, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Switch rebinds a reservation to a new session as one atomic upstream
// operation.
func (c *ReservationClient) Switch(ctx context.Context, reservationID, studentID, newSessionID string) (*models.Reservation, error) {
	body := map[string]string{"studentId": studentID, "newSessionId": newSessionID}
	var reservation models.Reservation
	path := fmt.Sprintf("/reservations/%s/switch", url.PathEscape(reservationID))
	if err := c.client.post(ctx, "reservations.switch", path, body, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// RequestOnline submits the student's remote attendance request.
func (c *ReservationClient) RequestOnline(ctx context.Context, reservationID, studentID string) (*models.Reservation, error) {
	body := map[string]string{"studentId": studentID}
	var reservation models.Reservation
	path := fmt.Sprintf("/reservations/%s/online-request", url.PathEscape(reservationID))
	if err := c.client.post(ctx, "reservations.request_online", path, body, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ProcessOnlineRequest records the teacher's decision on a pending request.
func (c *ReservationClient) ProcessOnlineRequest(ctx context.Context, reservationID, teacherID string, approved bool) (*models.Reservation, error) {
	body := map[string]interface{}{"teacherId": teacherID, "approved": approved}
	var reservation models.Reservation
	path := fmt.Sprintf("/reservations/%s/online-request/decision", url.PathEscape(reservationID))
	if err := c.client.post(ctx, "reservations.process_online", path, body, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Roster returns the session's reservations enriched with student identity.
func (c *ReservationClient) Roster(ctx context.Context, sessionID string) ([]models.RosterEntry, error) {
	var roster []models.RosterEntry
	path := fmt.Sprintf("/sessions/%s/attendance", url.PathEscape(sessionID))
	if err := c.client.get(ctx, "attendance.roster", path, nil, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// RecordAttendance writes a single attendance decision.
func (c *ReservationClient) RecordAttendance(ctx context.Context, reservationID, recordedByID string, status models.AttendanceStatus) (*models.Reservation, error) {
	body := map[string]string{"recordedById": recordedByID, "status": string(status)}
	var reservation models.Reservation
	path := fmt.Sprintf("/attendance/%s", url.PathEscape(reservationID))
	if err := c.client.post(ctx, "attendance.record", path, body, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// BulkRecordAttendance writes a batch of attendance decisions in one call.
func (c *ReservationClient) BulkRecordAttendance(ctx context.Context, sessionID, recordedByID string, decisions map[string]models.AttendanceStatus) ([]models.Reservation, error) {
	body := map[string]interface{}{"recordedById": recordedByID, "attendanceMap": decisions}
	var reservations []models.Reservation
	path := fmt.Sprintf("/sessions/%s/attendance", url.PathEscape(sessionID))
	if err := c.client.post(ctx, "attendance.bulk_record", path, body, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}
