package models

import (
	"strings"
	"time"
)

// SessionStatus is the stored lifecycle state of a session, owned upstream.
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "SCHEDULED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
	SessionStatusPostponed  SessionStatus = "POSTPONED"
)

// Valid returns true when the status is a supported value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusInProgress, SessionStatusCompleted, SessionStatusCancelled, SessionStatusPostponed:
		return true
	default:
		return false
	}
}

// SessionMode describes how a session can be attended.
type SessionMode string

const (
	SessionModeInPerson SessionMode = "IN_PERSON"
	SessionModeOnline   SessionMode = "ONLINE"
	SessionModeDual     SessionMode = "DUAL"
)

// Valid returns true when the mode is a supported value.
func (m SessionMode) Valid() bool {
	switch m {
	case SessionModeInPerson, SessionModeOnline, SessionModeDual:
		return true
	default:
		return false
	}
}

// Classroom enumerates the academy's physical and virtual rooms.
type Classroom string

const (
	ClassroomAula1   Classroom = "AULA_1"
	ClassroomAula2   Classroom = "AULA_2"
	ClassroomAula3   Classroom = "AULA_3"
	ClassroomVirtual Classroom = "VIRTUAL"
)

// VisualStatus is the presentation-only session state derived from the stored
// status plus wall-clock time. It is recomputed on every read, never cached.
type VisualStatus string

const (
	VisualStatusScheduled  VisualStatus = "scheduled"
	VisualStatusInProgress VisualStatus = "in_progress"
	VisualStatusCompleted  VisualStatus = "completed"
)

// intensiveGroupPrefix marks group types whose reservations never expose the
// online-request workflow.
const intensiveGroupPrefix = "INTENSIVE"

// Session is one scheduled occurrence of a group's class. The portal reads
// sessions from the academy API and never mutates them.
type Session struct {
	ID          string        `json:"id"`
	SubjectID   string        `json:"subject_id"`
	GroupID     string        `json:"group_id"`
	GroupType   string        `json:"group_type"`
	Classroom   Classroom     `json:"classroom"`
	Date        time.Time     `json:"date"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Status      SessionStatus `json:"status"`
	Mode        SessionMode   `json:"mode"`
	PostponedTo *time.Time    `json:"postponed_to,omitempty"`
}

// SessionFilter describes query params for listing sessions upstream.
type SessionFilter struct {
	GroupID   string
	SubjectID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    SessionStatus
}

// StartsAt combines the session date with its start clock time.
func (s Session) StartsAt() time.Time {
	return combineClock(s.Date, s.StartTime)
}

// EndsAt combines the session date with its end clock time.
func (s Session) EndsAt() time.Time {
	return combineClock(s.Date, s.EndTime)
}

// IsIntensive reports whether the session belongs to an intensive group,
// which never exposes the online-request action.
func (s Session) IsIntensive() bool {
	return strings.HasPrefix(strings.ToUpper(s.GroupType), intensiveGroupPrefix)
}

// VisualStatus derives the presentational state from the stored status and
// the provided wall-clock instant. A SCHEDULED session whose end has elapsed
// reads as completed even before the upstream transitions it.
func (s Session) VisualStatus(now time.Time) VisualStatus {
	if s.Status != SessionStatusScheduled {
		return VisualStatusCompleted
	}
	switch {
	case now.Before(s.StartsAt()):
		return VisualStatusScheduled
	case now.After(s.EndsAt()):
		return VisualStatusCompleted
	default:
		return VisualStatusInProgress
	}
}

// HasEnded reports whether the session's scheduled end has passed.
func (s Session) HasEnded(now time.Time) bool {
	return now.After(s.EndsAt())
}

func combineClock(date time.Time, clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
}
