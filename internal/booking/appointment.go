package booking

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an appointment. Transitions are owned by
// the appointment handlers; the engine only reads statuses to decide whether
// an appointment still holds its slot.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// ParseStatus validates a raw status string from storage or a request.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown appointment status: %q", raw)
}

// Blocks reports whether an appointment in this status still occupies its
// time range. Keeping the predicate in one place means a new terminal status
// only has to be added here.
func (s Status) Blocks() bool {
	switch s {
	case StatusCancelled, StatusNoShow:
		return false
	}
	return true
}

// Appointment is a read-only projection of a stored appointment, just enough
// for conflict checks.
type Appointment struct {
	ScheduledAt time.Time
	Duration    time.Duration
	Status      Status
}

// End returns the instant the appointment's half-open interval ends.
func (a Appointment) End() time.Time {
	return a.ScheduledAt.Add(a.Duration)
}

// HasConflict reports whether a candidate interval [start, start+duration)
// overlaps any existing appointment that still blocks its slot. Intervals are
// half-open: an appointment ending at 10:00 does not conflict with one
// starting at 10:00, so back-to-back bookings stay legal. Returns on the
// first conflict found.
func HasConflict(start time.Time, duration time.Duration, existing []Appointment) bool {
	end := start.Add(duration)
	for _, appt := range existing {
		if !appt.Status.Blocks() {
			continue
		}
		if start.Before(appt.End()) && end.After(appt.ScheduledAt) {
			return true
		}
	}
	return false
}
