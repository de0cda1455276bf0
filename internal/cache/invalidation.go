package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Mutation identifies a state-changing operation whose completion makes a
// known set of cached reads stale.
type Mutation string

const (
	MutationReservationCreate  Mutation = "reservation.create"
	MutationReservationCancel  Mutation = "reservation.cancel"
	MutationReservationSwitch  Mutation = "reservation.switch"
	MutationOnlineRequest      Mutation = "reservation.online_request"
	MutationOnlineProcess      Mutation = "reservation.online_process"
	MutationAttendanceRecorded Mutation = "attendance.record"
)

// Scope names the entities a mutation touched. SessionIDs carries both
// sessions for a switch; StudentIDs carries every student of a bulk
// attendance write.
type Scope struct {
	StudentIDs []string
	SessionIDs []string
}

// Key builders shared by readers and the invalidation table. Readers must
// key their cache entries through these so the table stays authoritative.
func RosterKey(sessionID string) string      { return fmt.Sprintf("roster:session:%s", sessionID) }
func StudentListKey(studentID string) string { return fmt.Sprintf("reservations:student:%s", studentID) }
func SchedulePattern(studentID string) string {
	return fmt.Sprintf("schedule:student:%s:*", studentID)
}
func ScheduleKey(studentID, weekStart string, alternatives bool) string {
	return fmt.Sprintf("schedule:student:%s:week:%s:alt:%t", studentID, weekStart, alternatives)
}
func DashboardKey(studentID string) string { return fmt.Sprintf("dashboard:student:%s", studentID) }

// Invalidator applies the mutation→query dependency table. The table is the
// single place that knows which reads a write can stale; services never
// enumerate keys ad hoc.
type Invalidator struct {
	store  *Store
	logger *zap.Logger
}

// NewInvalidator constructs an Invalidator over the store.
func NewInvalidator(store *Store, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{store: store, logger: logger}
}

// Patterns returns the cache key patterns staled by the mutation.
func Patterns(mutation Mutation, scope Scope) []string {
	patterns := make([]string, 0, len(scope.SessionIDs)+3*len(scope.StudentIDs))

	for _, sessionID := range scope.SessionIDs {
		patterns = append(patterns, RosterKey(sessionID))
	}
	for _, studentID := range scope.StudentIDs {
		patterns = append(patterns, StudentListKey(studentID), SchedulePattern(studentID))
	}

	switch mutation {
	case MutationReservationCreate, MutationReservationCancel, MutationReservationSwitch:
		// Seat counts and upcoming-session summaries depend on these.
		for _, studentID := range scope.StudentIDs {
			patterns = append(patterns, DashboardKey(studentID))
		}
	}

	return patterns
}

// Apply flushes every read staled by the mutation before returning, so a
// read issued after the mutation's completion observes fresh state.
func (i *Invalidator) Apply(ctx context.Context, mutation Mutation, scope Scope) {
	if i == nil || i.store == nil {
		return
	}
	for _, pattern := range Patterns(mutation, scope) {
		if err := i.store.DeleteByPattern(ctx, pattern); err != nil {
			i.logger.Warn("cache invalidation failed",
				zap.String("mutation", string(mutation)),
				zap.String("pattern", pattern),
				zap.Error(err),
			)
		}
	}
}
