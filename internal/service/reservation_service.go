package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/frenillazo/acainfo-portal-api/internal/cache"
	"github.com/frenillazo/acainfo-portal-api/internal/dto"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/internal/upstream"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

type reservationAPI interface {
	Create(ctx context.Context, req upstream.CreateReservationRequest) (*models.Reservation, error)
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Reservation, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Reservation, error)
	Cancel(ctx context.Context, reservationID, studentID string) (*models.Reservation, error)
	Switch(ctx context.Context, reservationID, studentID, newSessionID string) (*models.Reservation, error)
	RequestOnline(ctx context.Context, reservationID, studentID string) (*models.Reservation, error)
	ProcessOnlineRequest(ctx context.Context, reservationID, teacherID string, approved bool) (*models.Reservation, error)
}

type sessionAPI interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

type enrollmentAPI interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

// ReservationService implements the booking workflows. All gates here are
// advisory fast-fails; the academy API remains the authority and its verdict
// is returned unchanged when it disagrees.
type ReservationService struct {
	reservations reservationAPI
	sessions     sessionAPI
	enrollments  enrollmentAPI
	invalidator  *cache.Invalidator
	cacheSvc     *CacheService
	guard        *InflightGuard
	cfg          config.ReservationsConfig
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewReservationService wires the reservation workflows.
func NewReservationService(
	reservations reservationAPI,
	sessions sessionAPI,
	enrollments enrollmentAPI,
	invalidator *cache.Invalidator,
	cacheSvc *CacheService,
	guard *InflightGuard,
	cfg config.ReservationsConfig,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = NewInflightGuard()
	}
	return &ReservationService{
		reservations: reservations,
		sessions:     sessions,
		enrollments:  enrollments,
		invalidator:  invalidator,
		cacheSvc:     cacheSvc,
		guard:        guard,
		cfg:          cfg,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// Create books a session for the acting student.
func (s *ReservationService) Create(ctx context.Context, actor models.Actor, sessionID string, mode models.ReservationMode) (*models.Reservation, error) {
	if !mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported reservation mode")
	}

	release, err := s.guard.Acquire(actor.ID, "reservation.create", sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.VisualStatus(s.now()) != models.VisualStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "session is no longer open for booking")
	}
	if mode == models.ReservationModeOnline && session.Mode == models.SessionModeInPerson {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session does not support online attendance")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	enrollment, ok := BuildEligibilityIndex(enrollments).Lookup(session.SubjectID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no eligible enrollment for this subject")
	}

	if mode == models.ReservationModeInPerson {
		existing, err := s.reservations.ListBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if IsFull(existing, s.cfg.InPersonSeatCap) {
			return nil, appErrors.ErrSeatsExhausted
		}
	}

	reservation, err := s.reservations.Create(ctx, upstream.CreateReservationRequest{
		StudentID:    actor.ID,
		SessionID:    sessionID,
		EnrollmentID: enrollment.ID,
		Mode:         mode,
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.MutationReservationCreate, cache.Scope{StudentIDs: []string{actor.ID}, SessionIDs: []string{sessionID}})

	s.logger.Info("reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("session_id", sessionID),
		zap.String("student_id", actor.ID),
		zap.String("mode", string(mode)),
	)
	return reservation, nil
}

// Cancel releases the student's reservation. Cancellation is final; booking
// again requires a fresh reservation.
func (s *ReservationService) Cancel(ctx context.Context, actor models.Actor, reservationID string) (*models.Reservation, error) {
	release, err := s.guard.Acquire(actor.ID, "reservation.cancel", reservationID)
	if err != nil {
		return nil, err
	}
	defer release()

	reservation, session, err := s.loadOwned(ctx, actor, reservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.CanBeCancelled(*session, s.now()) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reservation can no longer be cancelled")
	}

	cancelled, err := s.reservations.Cancel(ctx, reservationID, reservation.StudentID)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.MutationReservationCancel, cache.Scope{StudentIDs: []string{reservation.StudentID}, SessionIDs: []string{reservation.SessionID}})

	s.logger.Info("reservation cancelled",
		zap.String("reservation_id", reservationID),
		zap.String("student_id", reservation.StudentID),
	)
	return cancelled, nil
}

// SwitchCandidates lists the other same-subject sessions on the same
// calendar day that the reservation could move to, with remaining seats
// where that is knowable.
func (s *ReservationService) SwitchCandidates(ctx context.Context, actor models.Actor, reservationID string) ([]dto.SwitchCandidate, error) {
	reservation, session, err := s.loadOwned(ctx, actor, reservationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day := session.Date
	sessions, err := s.sessions.List(ctx, models.SessionFilter{
		SubjectID: session.SubjectID,
		Status:    models.SessionStatusScheduled,
		DateFrom:  &day,
		DateTo:    &day,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]dto.SwitchCandidate, 0, len(sessions))
	for _, candidate := range sessions {
		if candidate.ID == reservation.SessionID {
			continue
		}
		if !sameDay(candidate.Date, session.Date) {
			continue
		}
		if candidate.VisualStatus(now) != models.VisualStatusScheduled {
			continue
		}

		entry := dto.SwitchCandidate{Session: candidate}
		if reservation.Mode == models.ReservationModeInPerson {
			taken, err := s.reservations.ListBySession(ctx, candidate.ID)
			if err != nil {
				// Seat counts are decoration here; the switch itself re-checks.
				s.logger.Warn("seat count unavailable for candidate",
					zap.String("session_id", candidate.ID), zap.Error(err))
			} else {
				left := SeatsLeft(taken, s.cfg.InPersonSeatCap)
				entry.SeatsLeft = &left
			}
		}
		candidates = append(candidates, entry)
	}
	return candidates, nil
}

// Switch moves the reservation to a new session of the same subject in one
// upstream operation, so no intermediate cancelled-but-not-rebooked state can
// be observed.
func (s *ReservationService) Switch(ctx context.Context, actor models.Actor, reservationID, newSessionID string) (*models.Reservation, error) {
	release, err := s.guard.Acquire(actor.ID, "reservation.switch", reservationID)
	if err != nil {
		return nil, err
	}
	defer release()

	reservation, session, err := s.loadOwned(ctx, actor, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationStatusConfirmed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only confirmed reservations can switch sessions")
	}
	if newSessionID == reservation.SessionID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reservation already points at this session")
	}

	target, err := s.sessions.FindByID(ctx, newSessionID)
	if err != nil {
		return nil, err
	}
	if target.SubjectID != session.SubjectID || !sameDay(target.Date, session.Date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target session must share the subject and calendar date")
	}
	if target.VisualStatus(s.now()) != models.VisualStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "target session is no longer open for booking")
	}

	if reservation.Mode == models.ReservationModeInPerson {
		taken, err := s.reservations.ListBySession(ctx, newSessionID)
		if err != nil {
			return nil, err
		}
		if IsFull(taken, s.cfg.InPersonSeatCap) {
			return nil, appErrors.ErrSeatsExhausted
		}
	}

	switched, err := s.reservations.Switch(ctx, reservationID, reservation.StudentID, newSessionID)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.MutationReservationSwitch, cache.Scope{
		StudentIDs: []string{reservation.StudentID},
		SessionIDs: []string{reservation.SessionID, newSessionID},
	})

	s.logger.Info("reservation switched",
		zap.String("reservation_id", reservationID),
		zap.String("from_session", reservation.SessionID),
		zap.String("to_session", newSessionID),
	)
	return switched, nil
}

// RequestOnline submits the student's remote attendance request for an
// in-person reservation.
func (s *ReservationService) RequestOnline(ctx context.Context, actor models.Actor, reservationID string) (*models.Reservation, error) {
	release, err := s.guard.Acquire(actor.ID, "reservation.online_request", reservationID)
	if err != nil {
		return nil, err
	}
	defer release()

	reservation, session, err := s.loadOwned(ctx, actor, reservationID)
	if err != nil {
		return nil, err
	}
	if session.IsIntensive() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "intensive groups do not allow online attendance requests")
	}
	if !reservation.CanRequestOnline(*session, s.now(), s.cfg.OnlineRequestWindow) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "online attendance can no longer be requested for this reservation")
	}

	updated, err := s.reservations.RequestOnline(ctx, reservationID, reservation.StudentID)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.MutationOnlineRequest, cache.Scope{StudentIDs: []string{reservation.StudentID}, SessionIDs: []string{reservation.SessionID}})
	return updated, nil
}

// ProcessOnlineRequest records the staff decision on a pending request.
// Approval flips the reservation to online mode and frees the seat.
func (s *ReservationService) ProcessOnlineRequest(ctx context.Context, actor models.Actor, reservationID string, approved bool) (*models.Reservation, error) {
	if !actor.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can process online requests")
	}

	release, err := s.guard.Acquire(actor.ID, "reservation.online_process", reservationID)
	if err != nil {
		return nil, err
	}
	defer release()

	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.State() != models.StateOnlineRequested {
		return nil, appErrors.Clone(appErrors.ErrConflict, "reservation has no pending online request")
	}

	updated, err := s.reservations.ProcessOnlineRequest(ctx, reservationID, actor.ID, approved)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.MutationOnlineProcess, cache.Scope{StudentIDs: []string{reservation.StudentID}, SessionIDs: []string{reservation.SessionID}})
	return updated, nil
}

// ListMine returns the acting student's reservations, cached briefly.
func (s *ReservationService) ListMine(ctx context.Context, actor models.Actor) ([]models.Reservation, error) {
	key := cache.StudentListKey(actor.ID)

	var cached []models.Reservation
	if err := s.cacheSvc.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	reservations, err := s.reservations.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	s.cacheSvc.Set(ctx, key, reservations, s.cacheTTL)
	return reservations, nil
}

// loadOwned fetches the reservation plus its session and enforces that the
// actor owns the reservation unless they are staff.
func (s *ReservationService) loadOwned(ctx context.Context, actor models.Actor, reservationID string) (*models.Reservation, *models.Session, error) {
	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if reservation.StudentID != actor.ID && !actor.IsStaff() {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "reservation belongs to another student")
	}

	session, err := s.sessions.FindByID(ctx, reservation.SessionID)
	if err != nil {
		return nil, nil, err
	}
	return reservation, session, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
