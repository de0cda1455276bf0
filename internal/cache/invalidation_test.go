package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatePatternsIncludeDashboard(t *testing.T) {
	patterns := Patterns(MutationReservationCreate, Scope{StudentIDs: []string{"stu-1"}, SessionIDs: []string{"ses-1"}})

	assert.Contains(t, patterns, "roster:session:ses-1")
	assert.Contains(t, patterns, "reservations:student:stu-1")
	assert.Contains(t, patterns, "schedule:student:stu-1:*")
	assert.Contains(t, patterns, "dashboard:student:stu-1")
}

func TestSwitchPatternsCoverBothSessions(t *testing.T) {
	patterns := Patterns(MutationReservationSwitch, Scope{StudentIDs: []string{"stu-1"}, SessionIDs: []string{"ses-a", "ses-b"}})

	assert.Contains(t, patterns, "roster:session:ses-a")
	assert.Contains(t, patterns, "roster:session:ses-b")
	assert.Contains(t, patterns, "dashboard:student:stu-1")
}

func TestOnlineRequestDoesNotTouchDashboard(t *testing.T) {
	patterns := Patterns(MutationOnlineRequest, Scope{StudentIDs: []string{"stu-1"}, SessionIDs: []string{"ses-1"}})

	assert.NotContains(t, patterns, "dashboard:student:stu-1")
	assert.Contains(t, patterns, "reservations:student:stu-1")
}

func TestAttendancePatternsCoverEveryStudent(t *testing.T) {
	patterns := Patterns(MutationAttendanceRecorded, Scope{
		StudentIDs: []string{"stu-1", "stu-2"},
		SessionIDs: []string{"ses-1"},
	})

	assert.Contains(t, patterns, "roster:session:ses-1")
	assert.Contains(t, patterns, "reservations:student:stu-1")
	assert.Contains(t, patterns, "reservations:student:stu-2")
	assert.Contains(t, patterns, "schedule:student:stu-1:*")
	assert.Contains(t, patterns, "schedule:student:stu-2:*")
	assert.NotContains(t, patterns, "dashboard:student:stu-1")
}

func TestScheduleKeyMatchesPattern(t *testing.T) {
	key := ScheduleKey("stu-1", "2026-08-31", true)
	assert.Equal(t, "schedule:student:stu-1:week:2026-08-31:alt:true", key)
}
