package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/frenillazo/acainfo-portal-api/internal/cache"
	"github.com/frenillazo/acainfo-portal-api/internal/dto"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

type attendanceAPI interface {
	Roster(ctx context.Context, sessionID string) ([]models.RosterEntry, error)
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	RecordAttendance(ctx context.Context, reservationID, recordedByID string, status models.AttendanceStatus) (*models.Reservation, error)
	BulkRecordAttendance(ctx context.Context, sessionID, recordedByID string, decisions map[string]models.AttendanceStatus) ([]models.Reservation, error)
}

// AttendanceService serves the teacher roster view and writes attendance
// decisions. Recorded decisions are immutable; the service filters anything
// already settled before the batch leaves the portal.
type AttendanceService struct {
	attendance  attendanceAPI
	sessions    sessionAPI
	invalidator *cache.Invalidator
	cacheSvc    *CacheService
	cacheCfg    config.CacheConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceService wires the attendance workflows.
func NewAttendanceService(
	attendance attendanceAPI,
	sessions sessionAPI,
	invalidator *cache.Invalidator,
	cacheSvc *CacheService,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance:  attendance,
		sessions:    sessions,
		invalidator: invalidator,
		cacheSvc:    cacheSvc,
		cacheCfg:    cacheCfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Roster returns the session's attendance view split into recorded and
// pending entries. Cancelled reservations never appear.
func (s *AttendanceService) Roster(ctx context.Context, actor models.Actor, sessionID string) (*dto.RosterView, error) {
	if !actor.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can view attendance rosters")
	}

	key := cache.RosterKey(sessionID)
	var cached dto.RosterView
	if err := s.cacheSvc.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entries, err := s.attendance.Roster(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &dto.RosterView{
		Session:    *session,
		Recorded:   make([]models.RosterEntry, 0, len(entries)),
		Unrecorded: make([]models.RosterEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		if entry.State() == models.StateCancelled {
			continue
		}
		if entry.AttendanceRecorded() {
			view.Recorded = append(view.Recorded, entry)
		} else {
			view.Unrecorded = append(view.Unrecorded, entry)
		}
	}

	s.cacheSvc.Set(ctx, key, view, s.cacheCfg.RosterTTL)
	return view, nil
}

// Record writes one attendance decision.
func (s *AttendanceService) Record(ctx context.Context, actor models.Actor, reservationID string, status models.AttendanceStatus) (*models.Reservation, error) {
	if !actor.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can record attendance")
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
	}

	reservation, err := s.attendance.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.State() == models.StateCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot record attendance on a cancelled reservation")
	}
	if reservation.AttendanceRecorded() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this reservation")
	}

	session, err := s.sessions.FindByID(ctx, reservation.SessionID)
	if err != nil {
		return nil, err
	}
	if !s.recordable(session) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance opens once the session ends")
	}

	updated, err := s.attendance.RecordAttendance(ctx, reservationID, actor.ID, status)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.MutationAttendanceRecorded, cache.Scope{
		StudentIDs: []string{reservation.StudentID},
		SessionIDs: []string{reservation.SessionID},
	})
	return updated, nil
}

// BulkRecord writes a batch of decisions in one upstream call. Entries that
// are cancelled, already recorded, or unknown to the roster are dropped
// before the call, not failed.
func (s *AttendanceService) BulkRecord(ctx context.Context, actor models.Actor, sessionID string, decisions map[string]models.AttendanceStatus) (*dto.BulkAttendanceResult, error) {
	if !actor.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can record attendance")
	}
	if len(decisions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no attendance decisions provided")
	}
	for _, status := range decisions {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
		}
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.recordable(session) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance opens once the session ends")
	}

	entries, err := s.attendance.Roster(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	writable := make(map[string]models.AttendanceStatus, len(decisions))
	for _, entry := range entries {
		status, wanted := decisions[entry.ID]
		if !wanted {
			continue
		}
		if entry.State() == models.StateCancelled || entry.AttendanceRecorded() {
			continue
		}
		writable[entry.ID] = status
	}
	// Decisions filtered out (settled, cancelled, or not on the roster) are
	// skipped, not failed.
	skipped := len(decisions) - len(writable)

	if len(writable) == 0 {
		return &dto.BulkAttendanceResult{Skipped: skipped}, nil
	}

	updated, err := s.attendance.BulkRecordAttendance(ctx, sessionID, actor.ID, writable)
	if err != nil {
		return nil, err
	}

	// Attendance lands on each student's reservation list and schedule too.
	students := make([]string, 0, len(updated))
	seenStudents := make(map[string]struct{}, len(updated))
	for _, r := range updated {
		if _, ok := seenStudents[r.StudentID]; ok {
			continue
		}
		seenStudents[r.StudentID] = struct{}{}
		students = append(students, r.StudentID)
	}
	s.invalidator.Apply(ctx, cache.MutationAttendanceRecorded, cache.Scope{StudentIDs: students, SessionIDs: []string{sessionID}})

	s.logger.Info("attendance recorded",
		zap.String("session_id", sessionID),
		zap.Int("recorded", len(updated)),
		zap.Int("skipped", skipped),
	)
	return &dto.BulkAttendanceResult{Recorded: len(updated), Skipped: skipped, Entries: updated}, nil
}

// MarkRemainingAbsent closes the roster by recording every unrecorded entry
// as absent.
func (s *AttendanceService) MarkRemainingAbsent(ctx context.Context, actor models.Actor, sessionID string) (*dto.BulkAttendanceResult, error) {
	if !actor.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can record attendance")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasEnded(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "remaining students can be marked absent once the session ends")
	}

	entries, err := s.attendance.Roster(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	decisions := FillUnrecorded(entries, models.AttendanceAbsent)
	if len(decisions) == 0 {
		return &dto.BulkAttendanceResult{}, nil
	}

	return s.BulkRecord(ctx, actor, sessionID, decisions)
}

// recordable holds once the session's scheduled end has passed, or upstream
// has already marked it completed.
func (s *AttendanceService) recordable(session *models.Session) bool {
	return session.Status == models.SessionStatusCompleted || session.HasEnded(s.now())
}

// FillUnrecorded builds a bulk decision map assigning status to every entry
// that still awaits one. Recorded and cancelled entries are never touched.
func FillUnrecorded(entries []models.RosterEntry, status models.AttendanceStatus) map[string]models.AttendanceStatus {
	decisions := make(map[string]models.AttendanceStatus)
	for _, entry := range entries {
		if entry.State() == models.StateCancelled || entry.AttendanceRecorded() {
			continue
		}
		decisions[entry.ID] = status
	}
	return decisions
}
