package service

import (
	"context"
	"time"

	"github.com/frenillazo/acainfo-portal-api/internal/cache"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/internal/upstream"
)

type fakeReservationAPI struct {
	createFn        func(ctx context.Context, req upstream.CreateReservationRequest) (*models.Reservation, error)
	findFn          func(ctx context.Context, id string) (*models.Reservation, error)
	listByStudentFn func(ctx context.Context, studentID string) ([]models.Reservation, error)
	listBySessionFn func(ctx context.Context, sessionID string) ([]models.Reservation, error)
	cancelFn        func(ctx context.Context, reservationID, studentID string) (*models.Reservation, error)
	switchFn        func(ctx context.Context, reservationID, studentID, newSessionID string) (*models.Reservation, error)
	requestOnlineFn func(ctx context.Context, reservationID, studentID string) (*models.Reservation, error)
	processFn       func(ctx context.Context, reservationID, teacherID string, approved bool) (*models.Reservation, error)
}

func (f *fakeReservationAPI) Create(ctx context.Context, req upstream.CreateReservationRequest) (*models.Reservation, error) {
	return f.createFn(ctx, req)
}

func (f *fakeReservationAPI) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	return f.findFn(ctx, id)
}

func (f *fakeReservationAPI) ListByStudent(ctx context.Context, studentID string) ([]models.Reservation, error) {
	return f.listByStudentFn(ctx, studentID)
}

func (f *fakeReservationAPI) ListBySession(ctx context.Context, sessionID string) ([]models.Reservation, error) {
	return f.listBySessionFn(ctx, sessionID)
}

func (f *fakeReservationAPI) Cancel(ctx context.Context, reservationID, studentID string) (*models.Reservation, error) {
	return f.cancelFn(ctx, reservationID, studentID)
}

func (f *fakeReservationAPI) Switch(ctx context.Context, reservationID, studentID, newSessionID string) (*models.Reservation, error) {
	return f.switchFn(ctx, reservationID, studentID, newSessionID)
}

func (f *fakeReservationAPI) RequestOnline(ctx context.Context, reservationID, studentID string) (*models.Reservation, error) {
	return f.requestOnlineFn(ctx, reservationID, studentID)
}

func (f *fakeReservationAPI) ProcessOnlineRequest(ctx context.Context, reservationID, teacherID string, approved bool) (*models.Reservation, error) {
	return f.processFn(ctx, reservationID, teacherID, approved)
}

type fakeSessionAPI struct {
	findFn func(ctx context.Context, id string) (*models.Session, error)
	listFn func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

func (f *fakeSessionAPI) FindByID(ctx context.Context, id string) (*models.Session, error) {
	return f.findFn(ctx, id)
}

func (f *fakeSessionAPI) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	return f.listFn(ctx, filter)
}

type fakeEnrollmentAPI struct {
	listFn func(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

func (f *fakeEnrollmentAPI) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return f.listFn(ctx, studentID)
}

type fakeAttendanceAPI struct {
	rosterFn     func(ctx context.Context, sessionID string) ([]models.RosterEntry, error)
	findFn       func(ctx context.Context, id string) (*models.Reservation, error)
	recordFn     func(ctx context.Context, reservationID, recordedByID string, status models.AttendanceStatus) (*models.Reservation, error)
	bulkRecordFn func(ctx context.Context, sessionID, recordedByID string, decisions map[string]models.AttendanceStatus) ([]models.Reservation, error)
}

func (f *fakeAttendanceAPI) Roster(ctx context.Context, sessionID string) ([]models.RosterEntry, error) {
	return f.rosterFn(ctx, sessionID)
}

func (f *fakeAttendanceAPI) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	return f.findFn(ctx, id)
}

func (f *fakeAttendanceAPI) RecordAttendance(ctx context.Context, reservationID, recordedByID string, status models.AttendanceStatus) (*models.Reservation, error) {
	return f.recordFn(ctx, reservationID, recordedByID, status)
}

func (f *fakeAttendanceAPI) BulkRecordAttendance(ctx context.Context, sessionID, recordedByID string, decisions map[string]models.AttendanceStatus) ([]models.Reservation, error) {
	return f.bulkRecordFn(ctx, sessionID, recordedByID, decisions)
}

func nopCache() *CacheService {
	return NewCacheService(nil, nil, nil)
}

func nopInvalidator() *cache.Invalidator {
	return cache.NewInvalidator(nil, nil)
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
}

func scheduledSession(id, subjectID, groupID string, date time.Time, start, end string) *models.Session {
	return &models.Session{
		ID:        id,
		SubjectID: subjectID,
		GroupID:   groupID,
		GroupType: "REGULAR",
		Classroom: models.ClassroomAula1,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    models.SessionStatusScheduled,
		Mode:      models.SessionModeDual,
	}
}

func confirmedReservation(id, studentID, sessionID string, mode models.ReservationMode) *models.Reservation {
	return &models.Reservation{
		ID:           id,
		StudentID:    studentID,
		SessionID:    sessionID,
		EnrollmentID: "enr-1",
		Mode:         mode,
		Status:       models.ReservationStatusConfirmed,
	}
}
