package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/internal/upstream"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

func newReservationService(reservations *fakeReservationAPI, sessions *fakeSessionAPI, enrollments *fakeEnrollmentAPI) *ReservationService {
	svc := NewReservationService(
		reservations,
		sessions,
		enrollments,
		nopInvalidator(),
		nopCache(),
		NewInflightGuard(),
		config.ReservationsConfig{InPersonSeatCap: 24, OnlineRequestWindow: 6 * time.Hour},
		time.Minute,
		nil,
	)
	svc.now = fixedNow
	return svc
}

func tomorrowSession(id string) *models.Session {
	return scheduledSession(id, "sub-1", "grp-1", fixedNow().AddDate(0, 0, 1), "10:00", "11:30")
}

func TestCreateReservationHappyPath(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	var createdReq upstream.CreateReservationRequest
	reservations := &fakeReservationAPI{
		listBySessionFn: func(ctx context.Context, sessionID string) ([]models.Reservation, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, req upstream.CreateReservationRequest) (*models.Reservation, error) {
			createdReq = req
			return confirmedReservation("res-1", req.StudentID, req.SessionID, req.Mode), nil
		},
	}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return tomorrowSession(id), nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-9", StudentID: studentID, SubjectID: "sub-1", GroupID: "grp-1", IsActive: true}}, nil
	}}

	svc := newReservationService(reservations, sessions, enrollments)

	reservation, err := svc.Create(context.Background(), actor, "ses-1", models.ReservationModeInPerson)
	require.NoError(t, err)
	assert.Equal(t, "res-1", reservation.ID)
	assert.Equal(t, "enr-9", createdReq.EnrollmentID)
	assert.Equal(t, "stu-1", createdReq.StudentID)
}

func TestCreateReservationRejectsWithoutEnrollment(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return tomorrowSession(id), nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "other-subject", IsActive: true}}, nil
	}}

	svc := newReservationService(&fakeReservationAPI{}, sessions, enrollments)

	_, err := svc.Create(context.Background(), actor, "ses-1", models.ReservationModeInPerson)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCreateReservationShortCircuitsWhenFull(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	full := make([]models.Reservation, 24)
	for i := range full {
		full[i] = models.Reservation{Status: models.ReservationStatusConfirmed, Mode: models.ReservationModeInPerson}
	}

	upstreamCalled := false
	reservations := &fakeReservationAPI{
		listBySessionFn: func(ctx context.Context, sessionID string) ([]models.Reservation, error) {
			return full, nil
		},
		createFn: func(ctx context.Context, req upstream.CreateReservationRequest) (*models.Reservation, error) {
			upstreamCalled = true
			return nil, nil
		},
	}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return tomorrowSession(id), nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", IsActive: true}}, nil
	}}

	svc := newReservationService(reservations, sessions, enrollments)

	_, err := svc.Create(context.Background(), actor, "ses-1", models.ReservationModeInPerson)
	assert.ErrorIs(t, err, appErrors.ErrSeatsExhausted)
	assert.False(t, upstreamCalled, "seat ceiling must fail before the remote call")
}

func TestCreateOnlineSkipsSeatCheck(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	reservations := &fakeReservationAPI{
		listBySessionFn: func(ctx context.Context, sessionID string) ([]models.Reservation, error) {
			t.Fatal("online reservations must not count seats")
			return nil, nil
		},
		createFn: func(ctx context.Context, req upstream.CreateReservationRequest) (*models.Reservation, error) {
			return confirmedReservation("res-1", req.StudentID, req.SessionID, req.Mode), nil
		},
	}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return tomorrowSession(id), nil
	}}
	enrollments := &fakeEnrollmentAPI{listFn: func(ctx context.Context, studentID string) ([]models.Enrollment, error) {
		return []models.Enrollment{{ID: "enr-1", SubjectID: "sub-1", IsActive: true}}, nil
	}}

	svc := newReservationService(reservations, sessions, enrollments)

	reservation, err := svc.Create(context.Background(), actor, "ses-1", models.ReservationModeOnline)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationModeOnline, reservation.Mode)
}

func TestCreateRejectsStartedSession(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		// 08:00-09:30 today, now is 09:00.
		return scheduledSession(id, "sub-1", "grp-1", fixedNow(), "08:00", "09:30"), nil
	}}

	svc := newReservationService(&fakeReservationAPI{}, sessions, &fakeEnrollmentAPI{})

	_, err := svc.Create(context.Background(), actor, "ses-1", models.ReservationModeInPerson)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCancelRejectsForeignReservation(t *testing.T) {
	actor := models.Actor{ID: "stu-2", Role: models.RoleStudent}

	reservations := &fakeReservationAPI{findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
		return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
	}}

	svc := newReservationService(reservations, &fakeSessionAPI{}, &fakeEnrollmentAPI{})

	_, err := svc.Cancel(context.Background(), actor, "res-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCancelRejectsAfterSessionStart(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	reservations := &fakeReservationAPI{findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
		return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
	}}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return scheduledSession(id, "sub-1", "grp-1", fixedNow(), "08:00", "09:30"), nil
	}}

	svc := newReservationService(reservations, sessions, &fakeEnrollmentAPI{})

	_, err := svc.Cancel(context.Background(), actor, "res-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestSwitchIsSingleUpstreamCall(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	cancelCalled := false
	createCalled := false
	reservations := &fakeReservationAPI{
		findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
			return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
		},
		listBySessionFn: func(ctx context.Context, sessionID string) ([]models.Reservation, error) {
			return nil, nil
		},
		switchFn: func(ctx context.Context, reservationID, studentID, newSessionID string) (*models.Reservation, error) {
			return confirmedReservation(reservationID, studentID, newSessionID, models.ReservationModeInPerson), nil
		},
		cancelFn: func(ctx context.Context, reservationID, studentID string) (*models.Reservation, error) {
			cancelCalled = true
			return nil, nil
		},
		createFn: func(ctx context.Context, req upstream.CreateReservationRequest) (*models.Reservation, error) {
			createCalled = true
			return nil, nil
		},
	}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return tomorrowSession(id), nil
	}}

	svc := newReservationService(reservations, sessions, &fakeEnrollmentAPI{})

	switched, err := svc.Switch(context.Background(), actor, "res-1", "ses-2")
	require.NoError(t, err)
	assert.Equal(t, "ses-2", switched.SessionID)
	assert.False(t, cancelCalled, "switch must never decompose into cancel")
	assert.False(t, createCalled, "switch must never decompose into create")
}

func TestSwitchRejectsFullTarget(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	full := make([]models.Reservation, 24)
	for i := range full {
		full[i] = models.Reservation{Status: models.ReservationStatusConfirmed, Mode: models.ReservationModeInPerson}
	}

	reservations := &fakeReservationAPI{
		findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
			return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
		},
		listBySessionFn: func(ctx context.Context, sessionID string) ([]models.Reservation, error) {
			return full, nil
		},
	}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return tomorrowSession(id), nil
	}}

	svc := newReservationService(reservations, sessions, &fakeEnrollmentAPI{})

	_, err := svc.Switch(context.Background(), actor, "res-1", "ses-2")
	assert.ErrorIs(t, err, appErrors.ErrSeatsExhausted)
}

func TestSwitchCandidatesExcludeCurrentSession(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	reservations := &fakeReservationAPI{
		findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
			return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
		},
		listBySessionFn: func(ctx context.Context, sessionID string) ([]models.Reservation, error) {
			return []models.Reservation{{Status: models.ReservationStatusConfirmed, Mode: models.ReservationModeInPerson}}, nil
		},
	}
	sessions := &fakeSessionAPI{
		findFn: func(ctx context.Context, id string) (*models.Session, error) {
			return tomorrowSession(id), nil
		},
		listFn: func(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
			return []models.Session{
				*tomorrowSession("ses-1"),
				*tomorrowSession("ses-2"),
			}, nil
		},
	}

	svc := newReservationService(reservations, sessions, &fakeEnrollmentAPI{})

	candidates, err := svc.SwitchCandidates(context.Background(), actor, "res-1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ses-2", candidates[0].Session.ID)
	require.NotNil(t, candidates[0].SeatsLeft)
	assert.Equal(t, 23, *candidates[0].SeatsLeft)
}

func TestRequestOnlineHonoursWindow(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	reservations := &fakeReservationAPI{
		findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
			return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
		},
		requestOnlineFn: func(ctx context.Context, reservationID, studentID string) (*models.Reservation, error) {
			pending := models.OnlineRequestPending
			r := confirmedReservation(reservationID, studentID, "ses-1", models.ReservationModeInPerson)
			r.OnlineRequestStatus = &pending
			return r, nil
		},
	}

	// Exactly six hours before start qualifies.
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		return scheduledSession(id, "sub-1", "grp-1", fixedNow(), "15:00", "16:30"), nil
	}}

	svc := newReservationService(reservations, sessions, &fakeEnrollmentAPI{})

	updated, err := svc.RequestOnline(context.Background(), actor, "res-1")
	require.NoError(t, err)
	assert.Equal(t, models.StateOnlineRequested, updated.State())

	// Less than six hours before start does not.
	sessions.findFn = func(ctx context.Context, id string) (*models.Session, error) {
		return scheduledSession(id, "sub-1", "grp-1", fixedNow(), "14:00", "15:30"), nil
	}

	_, err = svc.RequestOnline(context.Background(), actor, "res-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRequestOnlineRejectedForIntensiveGroups(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	reservations := &fakeReservationAPI{findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
		return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
	}}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		session := tomorrowSession(id)
		session.GroupType = "INTENSIVE_SUMMER"
		return session, nil
	}}

	svc := newReservationService(reservations, sessions, &fakeEnrollmentAPI{})

	_, err := svc.RequestOnline(context.Background(), actor, "res-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestProcessOnlineRequestRequiresStaff(t *testing.T) {
	student := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	svc := newReservationService(&fakeReservationAPI{}, &fakeSessionAPI{}, &fakeEnrollmentAPI{})

	_, err := svc.ProcessOnlineRequest(context.Background(), student, "res-1", true)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestProcessOnlineRequestRequiresPendingState(t *testing.T) {
	teacher := models.Actor{ID: "tch-1", Role: models.RoleTeacher}

	reservations := &fakeReservationAPI{findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
		return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
	}}

	svc := newReservationService(reservations, &fakeSessionAPI{}, &fakeEnrollmentAPI{})

	_, err := svc.ProcessOnlineRequest(context.Background(), teacher, "res-1", true)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestSwitchRejectsDifferentDayTarget(t *testing.T) {
	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}

	reservations := &fakeReservationAPI{findFn: func(ctx context.Context, id string) (*models.Reservation, error) {
		return confirmedReservation(id, "stu-1", "ses-1", models.ReservationModeInPerson), nil
	}}
	sessions := &fakeSessionAPI{findFn: func(ctx context.Context, id string) (*models.Session, error) {
		if id == "ses-2" {
			return scheduledSession(id, "sub-1", "grp-2", fixedNow().AddDate(0, 0, 2), "10:00", "11:30"), nil
		}
		return tomorrowSession(id), nil
	}}

	svc := newReservationService(reservations, sessions, &fakeEnrollmentAPI{})

	_, err := svc.Switch(context.Background(), actor, "res-1", "ses-2")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
