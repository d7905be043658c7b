package booking

import (
	"fmt"
	"time"
)

// WeekdayHours holds one weekday's opening window. A closed day keeps
// IsOpen false and ignores Open/Close.
type WeekdayHours struct {
	Open   TimeOfDay
	Close  TimeOfDay
	IsOpen bool
}

// BusinessCalendar maps the seven weekdays (Sunday = 0) to their hours.
// It is configuration: loaded once per query and never mutated by the engine.
type BusinessCalendar [7]WeekdayHours

// Hours returns the configured hours for a weekday.
func (c BusinessCalendar) Hours(weekday time.Weekday) WeekdayHours {
	return c[int(weekday)%7]
}

// SetHours marks a weekday open between open and close.
func (c *BusinessCalendar) SetHours(weekday time.Weekday, open, close TimeOfDay) {
	c[int(weekday)%7] = WeekdayHours{Open: open, Close: close, IsOpen: true}
}

// SetClosed marks a weekday closed.
func (c *BusinessCalendar) SetClosed(weekday time.Weekday) {
	c[int(weekday)%7] = WeekdayHours{}
}

// Validate checks that every open day opens before it closes.
func (c BusinessCalendar) Validate() error {
	for day, hours := range c {
		if hours.IsOpen && hours.Open >= hours.Close {
			return fmt.Errorf("open time must be before close time for day %d", day)
		}
	}
	return nil
}
