package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

func newScheduleService(sessions *fakeSessionAPI, enrollments *fakeEnrollmentAPI, reservations *fakeReservationAPI) *ScheduleService {
	svc := NewScheduleService(
		sessions,
		enrollments,
		reservations,
		nopCache(),
		config.GridConfig{StartHour: 8, EndHour: 22, HourHeight: 60},
		time.Minute,
		nil,
	)
	svc.now = fixedNow
	return svc
}

func TestWeekStartNormalizesToMonday(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	wednesday := time.Date(2026, time.March, 4, 15, 30, 0, 0, time.UTC)
	monday := WeekStart(wednesday)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, 2, monday.Day())
	assert.Equal(t, 0, monday.Hour())

	// A Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, time.March, 8, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(sunday))

	// Monday maps to itself.
	assert.Equal(t, monday, WeekStart(monday))
}

func TestWeekPlacesSessionsOnGrid(t *testing.T) {
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

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), false)
	require.NoError(t, err)
	assert.Equal(t, weekStart, week.WeekStart)

	require.Len(t, week.Days[1].Blocks, 1)
	block := week.Days[1].Blocks[0]
	assert.Equal(t, 120.0, block.Top)
	assert.Equal(t, 90.0, block.Height)
	assert.True(t, block.IsOwnSession)
	assert.Equal(t, models.VisualStatusScheduled, block.VisualStatus)

	for i, day := range week.Days {
		if i == 1 {
			continue
		}
		assert.Empty(t, day.Blocks)
	}
}

func TestWeekDropsSundaySessions(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	sunday := weekStart.AddDate(0, 0, 6)

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		return []models.Session{*scheduledSession("ses-1", "sub-1", "grp-1", sunday, "10:00", "11:30")}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return nil, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), false)
	require.NoError(t, err)
	for _, day := range week.Days {
		assert.Empty(t, day.Blocks)
	}
}

func TestWeekDedupesOwnSessionWins(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	tuesday := weekStart.AddDate(0, 0, 1)
	shared := *scheduledSession("ses-1", "sub-1", "grp-1", tuesday, "10:00", "11:30")

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		// Both the group fetch and the alternatives fetch return the same session.
		return []models.Session{shared}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return []models.Reservation{*confirmedReservation("res-1", studentID, "ses-1", models.ReservationModeInPerson)}, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), true)
	require.NoError(t, err)
	require.Len(t, week.Days[1].Blocks, 1)
	assert.True(t, week.Days[1].Blocks[0].IsOwnSession)
}

func TestWeekAlternativesDegradeGracefully(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	tuesday := weekStart.AddDate(0, 0, 1)

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		if filter.SubjectID != "" {
			// The widened fetch fails; the student's own week must survive.
			return nil, appErrors.ErrUpstreamUnavailable
		}
		return []models.Session{*scheduledSession("ses-1", "sub-1", "grp-1", tuesday, "10:00", "11:30")}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return []models.Reservation{*confirmedReservation("res-1", studentID, "ses-1", models.ReservationModeInPerson)}, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), true)
	require.NoError(t, err)
	require.Len(t, week.Days[1].Blocks, 1)
}

func TestWeekSortsBlocksByStart(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	tuesday := weekStart.AddDate(0, 0, 1)

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		return []models.Session{
			*scheduledSession("ses-late", "sub-1", "grp-1", tuesday, "18:00", "19:30"),
			*scheduledSession("ses-early", "sub-1", "grp-1", tuesday, "09:00", "10:30"),
		}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return nil, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), false)
	require.NoError(t, err)
	require.Len(t, week.Days[1].Blocks, 2)
	assert.Equal(t, "ses-early", week.Days[1].Blocks[0].Session.ID)
	assert.Equal(t, "ses-late", week.Days[1].Blocks[1].Session.ID)
}

func TestWeekTagsEnrolledGroupSessionsAsOwn(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	tuesday := weekStart.AddDate(0, 0, 1)

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		return []models.Session{*scheduledSession("ses-1", "sub-1", "grp-1", tuesday, "10:00", "11:30")}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	// No reservations at all: the enrolled group alone makes the session own.
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return nil, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), false)
	require.NoError(t, err)
	require.Len(t, week.Days[1].Blocks, 1)
	assert.True(t, week.Days[1].Blocks[0].IsOwnSession)
}

func TestWeekTwoGroupsSameSubjectBothOwn(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	tuesday := weekStart.AddDate(0, 0, 1)
	first := *scheduledSession("ses-1", "sub-1", "grp-1", tuesday, "10:00", "11:30")
	second := *scheduledSession("ses-2", "sub-1", "grp-2", tuesday, "16:00", "17:30")

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		switch filter.GroupID {
		case "grp-1":
			return []models.Session{first}, nil
		case "grp-2":
			return []models.Session{second}, nil
		}
		// Subject-wide alternatives fetch overlaps both group fetches.
		return []models.Session{first, second}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{
			{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true},
			{ID: "enr-2", SubjectID: "sub-1", GroupID: "grp-2", IsActive: true},
		}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return nil, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), true)
	require.NoError(t, err)
	require.Len(t, week.Days[1].Blocks, 2, "each session appears once despite overlapping fetches")
	for _, block := range week.Days[1].Blocks {
		assert.True(t, block.IsOwnSession, "sessions of both enrolled groups are own")
	}
	assert.NotEqual(t, week.Days[1].Blocks[0].Session.ID, week.Days[1].Blocks[1].Session.ID)
}

func TestWeekDropsOutOfWeekSessions(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	nextTuesday := weekStart.AddDate(0, 0, 8)

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		return []models.Session{*scheduledSession("ses-1", "sub-1", "grp-1", nextTuesday, "10:00", "11:30")}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return nil, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), false)
	require.NoError(t, err)
	for _, day := range week.Days {
		assert.Empty(t, day.Blocks, "a date outside the week must not bucket into a weekday column")
	}
}

func TestWeekVisualStatusStampedEachRender(t *testing.T) {
	weekStart := WeekStart(fixedNow())
	wednesday := weekStart.AddDate(0, 0, 2)

	sessions := &fakeSessionAPI{listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
		return []models.Session{*scheduledSession("ses-1", "sub-1", "grp-1", wednesday, "08:30", "10:00")}, nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}
	reservations := &fakeReservationAPI{listByStudentFn: func(ctx context.Context, studentID string) ([]models.Reservation, error) {
		return nil, nil
	}}

	svc := newScheduleService(sessions, enrollments, reservations)

	week, err := svc.Week(context.Background(), "stu-1", fixedNow(), false)
	require.NoError(t, err)
	require.Len(t, week.Days[2].Blocks, 1)
	assert.Equal(t, models.VisualStatusInProgress, week.Days[2].Blocks[0].VisualStatus)

	// A cached week stores no status; re-stamping after the clock moves past
	// the end must flip it, never replay the stale value.
	svc.now = func() time.Time { return fixedNow().Add(2 * time.Hour) }
	svc.stampStatuses(week)
	assert.Equal(t, models.VisualStatusCompleted, week.Days[2].Blocks[0].VisualStatus)
}
