package booking

import (
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// weekHours returns the reference calendar: Monday through Saturday
// 09:00-17:00, Sunday closed.
func weekHours(t *testing.T) BusinessCalendar {
	t.Helper()
	open := mustTimeOfDay(t, "09:00")
	close := mustTimeOfDay(t, "17:00")

	var cal BusinessCalendar
	for wd := time.Monday; wd <= time.Saturday; wd++ {
		cal.SetHours(wd, open, close)
	}
	return cal
}

func mustTimeOfDay(t *testing.T, raw string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(raw)
	if err != nil {
		t.Fatalf("parse time of day %q: %v", raw, err)
	}
	return tod
}

func mustDate(t *testing.T, raw string) Date {
	t.Helper()
	date, err := ParseDate(raw)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return date
}

// 2026-01-05 is a Monday.
func mondayEngine(t *testing.T) (*Engine, Date) {
	t.Helper()
	clock := fixedClock{now: time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)}
	return NewEngine(time.UTC, clock), mustDate(t, "2026-01-05")
}

func TestAvailableSlots_ReferenceDay(t *testing.T) {
	engine, monday := mondayEngine(t)

	slots, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}

	// 09:00 through 16:00 on the half hour; 16:30+60 would overrun close.
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots, got %d", len(slots))
	}
	if slots[0].Time.String() != "09:00" {
		t.Fatalf("first slot: %s", slots[0].Time)
	}
	if slots[len(slots)-1].Time.String() != "16:00" {
		t.Fatalf("last slot: %s", slots[len(slots)-1].Time)
	}
	for i, slot := range slots {
		if !slot.Available {
			t.Fatalf("slot %s should be available", slot.Time)
		}
		if i > 0 && slots[i-1].Time >= slot.Time {
			t.Fatalf("slots out of order at %d", i)
		}
	}
}

func TestAvailableSlots_ClosedWeekday(t *testing.T) {
	engine, _ := mondayEngine(t)
	sunday := mustDate(t, "2026-01-11")

	slots, err := engine.AvailableSlots(sunday, time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("closed day should yield no slots, got %d", len(slots))
	}
}

func TestAvailableSlots_BlackoutDate(t *testing.T) {
	engine, monday := mondayEngine(t)
	blackouts := NewBlackoutSet([]Date{monday}, nil)

	slots, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), DefaultPolicy(), blackouts, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("blacked-out date should yield no slots, got %d", len(slots))
	}
}

func TestAvailableSlots_RecurringBlackoutWeekday(t *testing.T) {
	engine, monday := mondayEngine(t)
	blackouts := NewBlackoutSet(nil, []time.Weekday{time.Monday})

	slots, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), DefaultPolicy(), blackouts, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("recurring weekday blackout should yield no slots, got %d", len(slots))
	}
}

func TestAvailableSlots_BeyondHorizon(t *testing.T) {
	engine, monday := mondayEngine(t)
	farOut := monday.AddDays(61)

	slots, err := engine.AvailableSlots(farOut, time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("date past the booking horizon should yield no slots, got %d", len(slots))
	}
}

func TestAvailableSlots_ExistingAppointmentMarksConflicts(t *testing.T) {
	engine, monday := mondayEngine(t)
	existing := []Appointment{{
		ScheduledAt: monday.At(mustTimeOfDay(t, "10:00"), time.UTC),
		Duration:    time.Hour,
		Status:      StatusConfirmed,
	}}

	slots, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, existing)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}

	byTime := make(map[string]bool, len(slots))
	for _, slot := range slots {
		byTime[slot.Time.String()] = slot.Available
	}

	// 09:30 ends at 10:30, inside the existing booking.
	for _, taken := range []string{"09:30", "10:00", "10:30"} {
		if byTime[taken] {
			t.Fatalf("slot %s should be unavailable", taken)
		}
	}
	// 09:00 ends exactly at the existing start; 11:00 starts exactly at its end.
	for _, free := range []string{"09:00", "11:00"} {
		if !byTime[free] {
			t.Fatalf("slot %s should be available", free)
		}
	}
}

func TestAvailableSlots_BufferShortensTheDay(t *testing.T) {
	engine, monday := mondayEngine(t)
	policy := DefaultPolicy()
	policy.Buffer = 30 * time.Minute

	slots, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), policy, BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	// 16:00+60+30 overruns 17:00, so the day now ends at 15:30.
	if last := slots[len(slots)-1].Time.String(); last != "15:30" {
		t.Fatalf("last slot with buffer: %s", last)
	}
}

func TestAvailableSlots_SameDayCutoff(t *testing.T) {
	// Clock at 09:40 with 30 minutes notice: 10:00 is too soon, 10:30 is not.
	clock := fixedClock{now: time.Date(2026, time.January, 5, 9, 40, 0, 0, time.UTC)}
	engine := NewEngine(time.UTC, clock)
	monday := mustDate(t, "2026-01-05")

	slots, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) == 0 {
		t.Fatalf("expected afternoon slots")
	}
	if first := slots[0].Time.String(); first != "10:30" {
		t.Fatalf("first same-day slot: %s", first)
	}
}

func TestAvailableSlots_SameDayCutoffUsesPolicy(t *testing.T) {
	// The cutoff follows the configured notice, not a hardcoded 30 minutes.
	clock := fixedClock{now: time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)}
	engine := NewEngine(time.UTC, clock)
	monday := mustDate(t, "2026-01-05")
	policy := DefaultPolicy()
	policy.MinAdvance = 2 * time.Hour

	slots, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), policy, BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	// 11:00 is exactly now+MinAdvance and the boundary is strict.
	if first := slots[0].Time.String(); first != "11:30" {
		t.Fatalf("first slot with 2h notice: %s", first)
	}
}

func TestAvailableSlots_ServiceLongerThanDay(t *testing.T) {
	engine, _ := mondayEngine(t)
	var cal BusinessCalendar
	cal.SetHours(time.Monday, mustTimeOfDay(t, "09:00"), mustTimeOfDay(t, "10:00"))
	monday := mustDate(t, "2026-01-05")

	slots, err := engine.AvailableSlots(monday, 2*time.Hour, cal, DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("day shorter than the service should yield no slots, got %d", len(slots))
	}
}

func TestAvailableSlots_UnevenIntervalNeverOverruns(t *testing.T) {
	engine, monday := mondayEngine(t)
	var cal BusinessCalendar
	// 50-minute window on a 30-minute grid: only 09:00 fits a 30m service.
	cal.SetHours(time.Monday, mustTimeOfDay(t, "09:00"), mustTimeOfDay(t, "09:50"))

	slots, err := engine.AvailableSlots(monday, 30*time.Minute, cal, DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 1 || slots[0].Time.String() != "09:00" {
		t.Fatalf("expected single 09:00 slot, got %v", slots)
	}
}

func TestAvailableSlots_Idempotent(t *testing.T) {
	engine, monday := mondayEngine(t)

	first, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	second, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slot %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestAvailableSlots_DefectiveInputs(t *testing.T) {
	engine, monday := mondayEngine(t)

	if _, err := engine.AvailableSlots(monday, -time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil); err == nil {
		t.Fatalf("negative duration should be rejected")
	}

	policy := DefaultPolicy()
	policy.SlotInterval = 0
	if _, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), policy, BlackoutSet{}, nil); err == nil {
		t.Fatalf("zero interval should be rejected")
	}

	// A sub-minute interval must come back as an error, never divide by zero
	// or stall the grid walk.
	policy = DefaultPolicy()
	policy.SlotInterval = 30 * time.Second
	if _, err := engine.AvailableSlots(monday, time.Hour, weekHours(t), policy, BlackoutSet{}, nil); err == nil {
		t.Fatalf("sub-minute interval should be rejected")
	}

	var cal BusinessCalendar
	cal.SetHours(time.Monday, mustTimeOfDay(t, "17:00"), mustTimeOfDay(t, "09:00"))
	if _, err := engine.AvailableSlots(monday, time.Hour, cal, DefaultPolicy(), BlackoutSet{}, nil); err == nil {
		t.Fatalf("inverted hours should be rejected")
	}
}

func TestSlotFree(t *testing.T) {
	engine, monday := mondayEngine(t)
	existing := []Appointment{{
		ScheduledAt: monday.At(mustTimeOfDay(t, "10:00"), time.UTC),
		Duration:    time.Hour,
		Status:      StatusConfirmed,
	}}

	tests := []struct {
		name string
		at   string
		want bool
	}{
		{"free slot", "09:00", true},
		{"conflicting slot", "10:30", false},
		{"back-to-back after existing", "11:00", true},
		{"before opening", "08:00", false},
		{"overruns close", "16:30", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			free, err := engine.SlotFree(monday, mustTimeOfDay(t, tc.at), time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, existing)
			if err != nil {
				t.Fatalf("slot free: %v", err)
			}
			if free != tc.want {
				t.Fatalf("slot %s free = %v, want %v", tc.at, free, tc.want)
			}
		})
	}
}

func TestSlotFree_BlackoutAndClosed(t *testing.T) {
	engine, monday := mondayEngine(t)

	blackouts := NewBlackoutSet([]Date{monday}, nil)
	free, err := engine.SlotFree(monday, mustTimeOfDay(t, "09:00"), time.Hour, weekHours(t), DefaultPolicy(), blackouts, nil)
	if err != nil {
		t.Fatalf("slot free: %v", err)
	}
	if free {
		t.Fatalf("blacked-out date should not be bookable")
	}

	sunday := mustDate(t, "2026-01-11")
	free, err = engine.SlotFree(sunday, mustTimeOfDay(t, "09:00"), time.Hour, weekHours(t), DefaultPolicy(), BlackoutSet{}, nil)
	if err != nil {
		t.Fatalf("slot free: %v", err)
	}
	if free {
		t.Fatalf("closed day should not be bookable")
	}
}

func TestDisabledDates(t *testing.T) {
	engine, monday := mondayEngine(t)
	blackouts := NewBlackoutSet([]Date{mustDate(t, "2026-01-07")}, nil)

	start := mustDate(t, "2026-01-04") // the Sunday before "today"
	end := mustDate(t, "2026-01-10")
	disabled, err := engine.DisabledDates(start, end, weekHours(t), DefaultPolicy(), blackouts)
	if err != nil {
		t.Fatalf("disabled dates: %v", err)
	}

	want := map[string]bool{
		"2026-01-04": true, // past and closed Sunday
		"2026-01-07": true, // explicit blackout
	}
	if len(disabled) != len(want) {
		t.Fatalf("disabled dates: %v", disabled)
	}
	for _, d := range disabled {
		if !want[d.String()] {
			t.Fatalf("unexpected disabled date %s", d)
		}
	}

	// And the horizon: 61 days out is disabled, 60 is not.
	farStart := monday.AddDays(60)
	farEnd := monday.AddDays(61)
	disabled, err = engine.DisabledDates(farStart, farEnd, weekHours(t), DefaultPolicy(), blackouts)
	if err != nil {
		t.Fatalf("disabled dates: %v", err)
	}
	if len(disabled) != 1 || disabled[0] != farEnd {
		t.Fatalf("horizon: %v", disabled)
	}
}

func TestDisabledDates_InvertedRange(t *testing.T) {
	engine, monday := mondayEngine(t)
	if _, err := engine.DisabledDates(monday, monday.AddDays(-1), weekHours(t), DefaultPolicy(), BlackoutSet{}); err == nil {
		t.Fatalf("inverted range should be rejected")
	}
}
