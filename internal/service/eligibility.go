package service

import (
	"github.com/frenillazo/acainfo-portal-api/internal/models"
)

// EligibilityIndex answers "may this student book sessions of subject X" from
// one enrollment fetch. Active and waitlisted enrollments both qualify.
type EligibilityIndex struct {
	bySubject map[string]models.Enrollment
}

// BuildEligibilityIndex keeps only eligible enrollments, keyed by subject.
// An active enrollment wins over a waitlisted one for the same subject.
func BuildEligibilityIndex(enrollments []models.Enrollment) EligibilityIndex {
	bySubject := make(map[string]models.Enrollment, len(enrollments))
	for _, e := range enrollments {
		if !e.Eligible() {
			continue
		}
		if existing, ok := bySubject[e.SubjectID]; ok && existing.IsActive {
			continue
		}
		bySubject[e.SubjectID] = e
	}
	return EligibilityIndex{bySubject: bySubject}
}

// Lookup returns the eligible enrollment covering the subject, if any.
func (idx EligibilityIndex) Lookup(subjectID string) (models.Enrollment, bool) {
	e, ok := idx.bySubject[subjectID]
	return e, ok
}

// InPersonCount counts the reservations that hold a physical seat. Cancelled
// and online reservations do not consume seats; a pending or rejected online
// request still does.
func InPersonCount(reservations []models.Reservation) int {
	count := 0
	for _, r := range reservations {
		switch r.State() {
		case models.StateInPerson, models.StateOnlineRequested, models.StateRequestRejected:
			count++
		}
	}
	return count
}

// SeatsLeft returns the remaining physical seats, never negative.
func SeatsLeft(reservations []models.Reservation, seatCap int) int {
	left := seatCap - InPersonCount(reservations)
	if left < 0 {
		return 0
	}
	return left
}

// IsFull reports whether the in-person seat ceiling is reached.
func IsFull(reservations []models.Reservation, seatCap int) bool {
	return InPersonCount(reservations) >= seatCap
}
