package booking

import "time"

// BlackoutSet holds dates on which no bookings are permitted: one-off
// calendar dates plus recurring weekday patterns.
type BlackoutSet struct {
	dates    map[Date]struct{}
	weekdays map[time.Weekday]struct{}
}

// NewBlackoutSet builds a BlackoutSet from explicit dates and recurring weekdays.
func NewBlackoutSet(dates []Date, weekdays []time.Weekday) BlackoutSet {
	set := BlackoutSet{
		dates:    make(map[Date]struct{}, len(dates)),
		weekdays: make(map[time.Weekday]struct{}, len(weekdays)),
	}
	for _, d := range dates {
		set.dates[d] = struct{}{}
	}
	for _, wd := range weekdays {
		set.weekdays[wd] = struct{}{}
	}
	return set
}

// Blocks reports whether the date is wholly blocked, either as an explicit
// blackout date or because its weekday recurs in the set.
func (b BlackoutSet) Blocks(date Date) bool {
	if _, ok := b.dates[date]; ok {
		return true
	}
	_, ok := b.weekdays[date.Weekday()]
	return ok
}
