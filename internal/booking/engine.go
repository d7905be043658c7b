// Package booking implements the appointment availability and slot-allocation
// engine: given business hours, blackout dates, booking-window policy, and a
// snapshot of existing appointments, it computes bookable time slots and
// decides whether a proposed appointment collides with another.
//
// The engine is a pure function library. It performs no I/O, keeps no state
// between calls, and is safe for concurrent use; callers supply configuration
// and appointment snapshots and receive values back.
package booking

import (
	"errors"
	"fmt"
	"time"
)

// ErrSlotTaken signals that the write-time recheck found the requested slot
// occupied. It is an expected runtime outcome, not a bug: callers should
// re-query availability and offer another slot.
var ErrSlotTaken = errors.New("slot already taken")

// TimeSlot is one candidate start time in an availability response.
type TimeSlot struct {
	Time      TimeOfDay `json:"time"`
	Available bool      `json:"available"`
}

// Engine answers availability queries for a single business. The location is
// the business's fixed IANA timezone; all date arithmetic happens there. The
// clock is injected so tests can pin "now" exactly.
type Engine struct {
	loc   *time.Location
	clock Clock
}

// NewEngine creates an engine for the given business location. A nil clock
// uses the system time.
func NewEngine(loc *time.Location, clock Clock) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Engine{loc: loc, clock: clock}
}

// Location returns the business timezone the engine evaluates in.
func (e *Engine) Location() *time.Location { return e.loc }

// AvailableSlots computes the chronological list of candidate slots for a
// service on a date. A closed weekday, a blacked-out date, or a date outside
// the booking window all yield an empty list, never an error; errors are
// reserved for defective inputs.
func (e *Engine) AvailableSlots(date Date, serviceDuration time.Duration, cal BusinessCalendar, policy Policy, blackouts BlackoutSet, existing []Appointment) ([]TimeSlot, error) {
	if serviceDuration <= 0 {
		return nil, fmt.Errorf("service duration must be positive")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}

	hours := cal.Hours(date.Weekday())
	if !hours.IsOpen || blackouts.Blocks(date) {
		return []TimeSlot{}, nil
	}

	now := e.clock.Now().In(e.loc)
	today := DateOf(now)
	closeAt := date.At(hours.Close, e.loc)
	// The buffer occupies the lane just like the service itself does.
	blocked := serviceDuration + policy.Buffer

	slots := make([]TimeSlot, 0, (hours.Close-hours.Open).Minutes()/int(policy.SlotInterval/time.Minute)+1)
	for t := hours.Open; t < hours.Close; t = t.Add(policy.SlotInterval) {
		start := date.At(t, e.loc)
		if !policy.WithinWindow(start, now) {
			continue
		}
		// The whole appointment, buffer included, must fit before closing.
		if start.Add(blocked).After(closeAt) {
			continue
		}
		// Today's cutoff moves with the clock, so it is checked explicitly
		// even though WithinWindow already covers it for this call.
		if date == today && !start.After(now.Add(policy.MinAdvance)) {
			continue
		}
		slots = append(slots, TimeSlot{
			Time:      t,
			Available: !HasConflict(start, blocked, existing),
		})
	}
	return slots, nil
}

// SlotFree reports whether a single (date, time) slot is currently bookable
// for a service: inside business hours, not blacked out, inside the booking
// window, fits before close, and free of conflicts. This is the check the
// write path re-runs inside its transaction before inserting.
func (e *Engine) SlotFree(date Date, at TimeOfDay, serviceDuration time.Duration, cal BusinessCalendar, policy Policy, blackouts BlackoutSet, existing []Appointment) (bool, error) {
	if serviceDuration <= 0 {
		return false, fmt.Errorf("service duration must be positive")
	}
	if err := policy.Validate(); err != nil {
		return false, err
	}

	hours := cal.Hours(date.Weekday())
	if !hours.IsOpen || blackouts.Blocks(date) {
		return false, nil
	}
	if at < hours.Open || at >= hours.Close {
		return false, nil
	}

	now := e.clock.Now().In(e.loc)
	start := date.At(at, e.loc)
	if !policy.WithinWindow(start, now) {
		return false, nil
	}

	blocked := serviceDuration + policy.Buffer
	if start.Add(blocked).After(date.At(hours.Close, e.loc)) {
		return false, nil
	}
	return !HasConflict(start, blocked, existing), nil
}

// DisabledDates enumerates every date in [start, end] that a booking calendar
// widget should grey out: already past, beyond the max-advance horizon,
// closed by weekday, or blacked out. It is a convenience view over the same
// rules AvailableSlots applies, not a separate policy.
//
// The horizon is applied at day granularity here, while WithinWindow clips at
// the exact instant now+days*24h. The last enabled day may therefore be only
// partially bookable: slots on it later than now's wall-clock time come back
// empty from AvailableSlots.
func (e *Engine) DisabledDates(start, end Date, cal BusinessCalendar, policy Policy, blackouts BlackoutSet) ([]Date, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date must not be before start date")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	now := e.clock.Now().In(e.loc)
	today := DateOf(now)
	horizon := today.AddDays(policy.MaxAdvanceDays)

	disabled := make([]Date, 0)
	for d := start; !d.After(end); d = d.AddDays(1) {
		if d.Before(today) || d.After(horizon) || !cal.Hours(d.Weekday()).IsOpen || blackouts.Blocks(d) {
			disabled = append(disabled, d)
		}
	}
	return disabled, nil
}
