package booking

import (
	"fmt"
	"time"
)

const (
	defaultMinAdvance     = 30 * time.Minute
	defaultMaxAdvanceDays = 60
	defaultSlotInterval   = 30 * time.Minute
)

// Policy drives booking-window validation and buffer padding.
type Policy struct {
	// MinAdvance is the minimum notice before a slot may start. A candidate
	// exactly at now+MinAdvance is rejected; one past it is accepted.
	MinAdvance time.Duration
	// MaxAdvanceDays bounds how far out a slot may be booked. A candidate
	// exactly at the horizon is still accepted.
	MaxAdvanceDays int
	// Buffer is idle time required after an appointment before the next
	// one may start.
	Buffer time.Duration
	// SlotInterval is the spacing of the candidate grid.
	SlotInterval time.Duration
}

// DefaultPolicy returns the policy used when no settings row exists:
// 30 minutes notice, 60 days horizon, no buffer, 30-minute grid.
func DefaultPolicy() Policy {
	return Policy{
		MinAdvance:     defaultMinAdvance,
		MaxAdvanceDays: defaultMaxAdvanceDays,
		Buffer:         0,
		SlotInterval:   defaultSlotInterval,
	}
}

// Validate rejects policies that cannot drive slot generation.
func (p Policy) Validate() error {
	if p.MinAdvance < 0 {
		return fmt.Errorf("min advance must be 0 or greater")
	}
	if p.MaxAdvanceDays <= 0 {
		return fmt.Errorf("max advance days must be greater than 0")
	}
	if p.Buffer < 0 {
		return fmt.Errorf("buffer must be 0 or greater")
	}
	// The slot grid steps in whole minutes; a finer interval would stall it.
	if p.SlotInterval < time.Minute || p.SlotInterval%time.Minute != 0 {
		return fmt.Errorf("slot interval must be a whole number of minutes greater than 0")
	}
	return nil
}

// WithinWindow reports whether an instant falls inside the booking window as
// seen from now. The boundaries are asymmetric on purpose: the minimum is
// strict (a slot exactly MinAdvance away is too soon) while the maximum is
// inclusive (a slot exactly at the horizon is still bookable).
func (p Policy) WithinWindow(at, now time.Time) bool {
	if !at.After(now.Add(p.MinAdvance)) {
		return false
	}
	horizon := now.Add(time.Duration(p.MaxAdvanceDays) * 24 * time.Hour)
	return !at.After(horizon)
}
