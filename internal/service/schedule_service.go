package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/frenillazo/acainfo-portal-api/internal/cache"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	"github.com/frenillazo/acainfo-portal-api/pkg/timegrid"
)

type scheduleReservationAPI interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Reservation, error)
}

// ScheduleService composes the student's weekly calendar: own sessions from
// confirmed reservations, optionally widened with alternative sessions of the
// enrolled subjects.
type ScheduleService struct {
	sessions     sessionAPI
	enrollments  enrollmentAPI
	reservations scheduleReservationAPI
	cacheSvc     *CacheService
	grid         timegrid.Grid
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduleService wires the weekly schedule composer.
func NewScheduleService(
	sessions sessionAPI,
	enrollments enrollmentAPI,
	reservations scheduleReservationAPI,
	cacheSvc *CacheService,
	gridCfg config.GridConfig,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		sessions:     sessions,
		enrollments:  enrollments,
		reservations: reservations,
		cacheSvc:     cacheSvc,
		grid:         timegrid.New(gridCfg.StartHour, gridCfg.EndHour, gridCfg.HourHeight),
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// WeekStart normalizes any instant to the Monday of its week at midnight.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Week composes the student's schedule for the week containing weekOf.
// Alternatives widen the grid with bookable sessions of the same subjects;
// their fetch degrades gracefully so a partial upstream outage still renders
// the student's own week.
func (s *ScheduleService) Week(ctx context.Context, studentID string, weekOf time.Time, includeAlternatives bool) (*models.WeekSchedule, error) {
	weekStart := WeekStart(weekOf)
	weekEnd := weekStart.AddDate(0, 0, 6)

	key := cache.ScheduleKey(studentID, weekStart.Format("2006-01-02"), includeAlternatives)
	var cached models.WeekSchedule
	if err := s.cacheSvc.Get(ctx, key, &cached); err == nil {
		s.stampStatuses(&cached)
		return &cached, nil
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	index := BuildEligibilityIndex(enrollments)

	// A session is the student's own when its group is one they are enrolled
	// in, or when they hold a confirmed reservation for it (a booked session
	// of another group stays theirs).
	ownGroups := make(map[string]struct{}, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.Eligible() {
			ownGroups[enrollment.GroupID] = struct{}{}
		}
	}

	reservations, err := s.reservations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]struct{}, len(reservations))
	for _, r := range reservations {
		if r.Status == models.ReservationStatusConfirmed {
			booked[r.SessionID] = struct{}{}
		}
	}

	isOwn := func(session models.Session) bool {
		if _, ok := booked[session.ID]; ok {
			return true
		}
		_, ok := ownGroups[session.GroupID]
		return ok
	}

	// Own-session tags win the dedupe, so group sessions load first.
	type tagged struct {
		session models.Session
		own     bool
	}
	seen := make(map[string]tagged)
	order := make([]string, 0)

	collect := func(sessions []models.Session) {
		for _, session := range sessions {
			own := isOwn(session)
			if existing, ok := seen[session.ID]; ok {
				if own && !existing.own {
					existing.own = true
					seen[session.ID] = existing
				}
				continue
			}
			seen[session.ID] = tagged{session: session, own: own}
			order = append(order, session.ID)
		}
	}

	for _, enrollment := range enrollments {
		if !enrollment.Eligible() {
			continue
		}
		groupSessions, err := s.sessions.List(ctx, models.SessionFilter{
			GroupID:  enrollment.GroupID,
			DateFrom: &weekStart,
			DateTo:   &weekEnd,
		})
		if err != nil {
			return nil, err
		}
		collect(groupSessions)
	}

	if includeAlternatives {
		for subjectID := range index.bySubject {
			alternatives, err := s.sessions.List(ctx, models.SessionFilter{
				SubjectID: subjectID,
				DateFrom:  &weekStart,
				DateTo:    &weekEnd,
			})
			if err != nil {
				s.logger.Warn("alternative sessions unavailable",
					zap.String("subject_id", subjectID), zap.Error(err))
				continue
			}
			collect(alternatives)
		}
	}

	schedule := &models.WeekSchedule{WeekStart: weekStart}
	for i := range schedule.Days {
		date := weekStart.AddDate(0, 0, i)
		schedule.Days[i] = models.DayColumn{
			Weekday: date.Weekday(),
			Date:    date,
			Blocks:  make([]models.ScheduleBlock, 0),
		}
	}

	for _, id := range order {
		entry := seen[id]
		session := entry.session

		// A permissive upstream may return dates outside the requested range.
		if session.Date.Before(weekStart) || session.Date.After(weekEnd) {
			continue
		}

		// Monday is day zero; Sundays carry no classes and are dropped.
		dayIndex := (int(session.Date.Weekday()) + 6) % 7
		if dayIndex >= len(schedule.Days) {
			continue
		}

		top, height, err := s.grid.Place(session.StartTime, session.EndTime)
		if err != nil {
			s.logger.Warn("session does not fit the grid",
				zap.String("session_id", session.ID), zap.Error(err))
			continue
		}

		schedule.Days[dayIndex].Blocks = append(schedule.Days[dayIndex].Blocks, models.ScheduleBlock{
			Session:      session,
			Top:          top,
			Height:       height,
			IsOwnSession: entry.own,
		})
	}

	for i := range schedule.Days {
		blocks := schedule.Days[i].Blocks
		sort.SliceStable(blocks, func(a, b int) bool {
			if blocks[a].Top != blocks[b].Top {
				return blocks[a].Top < blocks[b].Top
			}
			return blocks[a].Session.ID < blocks[b].Session.ID
		})
	}

	// The cached copy carries no visual status; it is a function of the wall
	// clock and is stamped on every render, cache hit or not.
	s.cacheSvc.Set(ctx, key, schedule, s.cacheTTL)
	s.stampStatuses(schedule)
	return schedule, nil
}

func (s *ScheduleService) stampStatuses(week *models.WeekSchedule) {
	now := s.now()
	for i := range week.Days {
		blocks := week.Days[i].Blocks
		for j := range blocks {
			blocks[j].VisualStatus = blocks[j].Session.VisualStatus(now)
		}
	}
}
