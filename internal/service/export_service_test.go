package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	"github.com/frenillazo/acainfo-portal-api/pkg/storage"
)

func newExportService(t *testing.T, sessions *fakeSessionAPI, enrollments *fakeEnrollmentAPI, reservations *fakeReservationAPI, attendance *fakeAttendanceAPI) *ExportService {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", 30*time.Minute)

	schedule := newScheduleService(sessions, enrollments, reservations)
	att := newAttendanceService(attendance, sessions)

	return NewExportService(schedule, att, store, signer, config.ExportsConfig{Enabled: true}, nil)
}

func TestWeeklySchedulePDFRoundTrip(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	tuesday := weekStart.AddDate(0, 0, 1)

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		return []models.Session{*scheduledSession("ses-1", "sub-1", "grp-1", tuesday, "10:00", "11:30")}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return []models.Reservation{*confirmedReservation("res-1", studentID, "ses-1", models.ReservationModeInPerson)}, nil
	}}

	svc := newExportService(t, sessions, enrollments, reservations, &fakeAttendanceAPI{})

	result, err := svc.WeeklySchedulePDF(context.Background(), "stu-1", fixedNow())
	require.NoError(t, err)
	assert.NotEmpty(t, result.ExportID)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.Contains(t, result.DownloadURL, "token=")

	token := strings.TrimPrefix(result.DownloadURL, "/exports/download?token=")
	buf := &bytes.Buffer{}
	_, err = svc.Download(token, buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRosterCSVContainsEntries(t *testing.T) {
	teacher := models.Actor{ID: "tch-1", Role: models.RoleTeacher}

	present := models.AttendancePresent
	attendance := &fakeAttendanceAPI{rosterFn: func(ctx context.Context, sessionID string) ([]models.RosterEntry, error) {
		return []models.RosterEntry{
			rosterEntry("res-1", "stu-1", &present, models.ReservationStatusConfirmed),
			rosterEntry("res-2", "stu-2", nil, models.ReservationStatusConfirmed),
		}, nil
	}}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return endedSession(id), nil
	}}

	svc := newExportService(t, sessions, &fakeEnrollmentAPI{}, &fakeReservationAPI{}, attendance)

	result, err := svc.RosterCSV(context.Background(), teacher, "ses-1")
	require.NoError(t, err)

	token := strings.TrimPrefix(result.DownloadURL, "/exports/download?token=")
	buf := &bytes.Buffer{}
	_, err = svc.Download(token, buf)
	require.NoError(t, err)

	body := buf.String()
	assert.Contains(t, body, "stu-1@example.com")
	assert.Contains(t, body, "stu-2@example.com")
	assert.Contains(t, body, "PRESENT")
}

func TestDownloadRejectsTamperedToken(t *testing.T) {
	svc := newExportService(t, &fakeSessionAPI{}, &fakeEnrollmentAPI{}, &fakeReservationAPI{}, &fakeAttendanceAPI{})

	buf := &bytes.Buffer{}
	_, err := svc.Download("bogus.token.value.here", buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
