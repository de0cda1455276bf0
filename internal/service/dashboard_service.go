package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/frenillazo/acainfo-portal-api/internal/cache"
	"github.com/frenillazo/acainfo-portal-api/internal/dto"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
)

const upcomingSessionLimit = 5

// DashboardService aggregates the student's overview card: enrollment
// counts, the next few sessions, pending online requests, and the attendance
// ledger summary.
type DashboardService struct {
	reservations reservationAPI
	sessions     sessionAPI
	enrollments  enrollmentAPI
	cacheSvc     *CacheService
	cfg          config.DashboardConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService wires the overview aggregation.
func NewDashboardService(
	reservations reservationAPI,
	sessions sessionAPI,
	enrollments enrollmentAPI,
	cacheSvc *CacheService,
	cfg config.DashboardConfig,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		reservations: reservations,
		sessions:     sessions,
		enrollments:  enrollments,
		cacheSvc:     cacheSvc,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// overviewSnapshot is what the cache holds: aggregated counters plus every
// non-cancelled reservation with its session, sorted by start. Which of the
// candidates count as upcoming depends on the wall clock and is decided on
// every render, never cached.
type overviewSnapshot struct {
	ActiveEnrollments     int                   `json:"active_enrollments"`
	WaitingListCount      int                   `json:"waiting_list_count"`
	PendingOnlineRequests int                   `json:"pending_online_requests"`
	Attendance            dto.AttendanceSummary `json:"attendance"`
	Candidates            []dto.UpcomingSession `json:"candidates"`
}

// Overview builds the student's dashboard payload, cached per student.
func (s *DashboardService) Overview(ctx context.Context, studentID string) (*dto.StudentOverviewResponse, error) {
	key := cache.DashboardKey(studentID)
	var cached overviewSnapshot
	if err := s.cacheSvc.Get(ctx, key, &cached); err == nil {
		return s.render(&cached), nil
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	snapshot := &overviewSnapshot{Candidates: make([]dto.UpcomingSession, 0, len(reservations))}
	for _, e := range enrollments {
		if e.IsOnWaitingList {
			snapshot.WaitingListCount++
		} else if e.IsActive {
			snapshot.ActiveEnrollments++
		}
	}

	for _, r := range reservations {
		state := r.State()
		switch state {
		case models.StateCancelled:
			continue
		case models.StateOnlineRequested:
			snapshot.PendingOnlineRequests++
		}

		if r.AttendanceStatus != nil {
			switch *r.AttendanceStatus {
			case models.AttendancePresent:
				snapshot.Attendance.Present++
			case models.AttendanceAbsent:
				snapshot.Attendance.Absent++
			}
		}

		session, err := s.sessions.FindByID(ctx, r.SessionID)
		if err != nil {
			// A stale session reference must not take the whole card down.
			s.logger.Warn("dashboard session lookup failed",
				zap.String("session_id", r.SessionID), zap.Error(err))
			continue
		}
		snapshot.Candidates = append(snapshot.Candidates, dto.UpcomingSession{Session: *session, Reservation: r, State: state})
	}

	sort.SliceStable(snapshot.Candidates, func(a, b int) bool {
		return snapshot.Candidates[a].Session.StartsAt().Before(snapshot.Candidates[b].Session.StartsAt())
	})

	s.cacheSvc.Set(ctx, key, snapshot, s.cfg.CacheTTL)
	return s.render(snapshot), nil
}

// render picks the upcoming sessions out of the snapshot against the current
// wall clock. Candidates are pre-sorted, so the first matches are the next
// sessions.
func (s *DashboardService) render(snapshot *overviewSnapshot) *dto.StudentOverviewResponse {
	now := s.now()
	upcoming := make([]dto.UpcomingSession, 0, upcomingSessionLimit)
	for _, candidate := range snapshot.Candidates {
		if candidate.Session.VisualStatus(now) != models.VisualStatusScheduled {
			continue
		}
		upcoming = append(upcoming, candidate)
		if len(upcoming) == upcomingSessionLimit {
			break
		}
	}

	return &dto.StudentOverviewResponse{
		ActiveEnrollments:     snapshot.ActiveEnrollments,
		WaitingListCount:      snapshot.WaitingListCount,
		UpcomingSessions:      upcoming,
		PendingOnlineRequests: snapshot.PendingOnlineRequests,
		Attendance:            snapshot.Attendance,
	}
}
