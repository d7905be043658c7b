// Package settings loads booking configuration from storage and converts it
// into the engine's value types. A snapshot is loaded once per request; an
// optional TTL cache keeps repeat availability queries from hitting the
// database for configuration that rarely changes.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/groomdesk/groomdesk/internal/booking"
	"github.com/groomdesk/groomdesk/internal/db"
)

const snapshotCacheKey = "booking-settings-snapshot"

// Store is the subset of queries a snapshot load needs.
type Store interface {
	GetBookingSettings(ctx context.Context) (db.BookingSettings, error)
	ListBusinessHours(ctx context.Context) ([]db.BusinessHour, error)
	ListBlackoutDates(ctx context.Context) ([]db.BlackoutDate, error)
	ListBlackoutWeekdays(ctx context.Context) ([]int64, error)
}

// Cache is the capability the loader uses between requests. It matches
// internal/cache but any get/set store will do; nil disables caching.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// Snapshot is everything the engine needs to answer one query, immutable for
// the duration of that query.
type Snapshot struct {
	Calendar  booking.BusinessCalendar
	Policy    booking.Policy
	Blackouts booking.BlackoutSet
}

// Load reads a snapshot from the store, consulting the cache first when one
// is supplied with a positive ttl.
func Load(ctx context.Context, store Store, c Cache, ttl time.Duration) (Snapshot, error) {
	if c != nil && ttl > 0 {
		if cached, ok := c.Get(snapshotCacheKey); ok {
			if snap, ok := cached.(Snapshot); ok {
				return snap, nil
			}
		}
	}

	snap, err := load(ctx, store)
	if err != nil {
		return Snapshot{}, err
	}

	if c != nil && ttl > 0 {
		c.Set(snapshotCacheKey, snap, ttl)
	}
	return snap, nil
}

// Invalidator is the capability admin handlers use to drop a cached snapshot
// after changing hours, blackouts, or policy.
type Invalidator interface {
	Delete(key string)
}

// Invalidate drops the cached snapshot after an admin change.
func Invalidate(c Invalidator) {
	if c != nil {
		c.Delete(snapshotCacheKey)
	}
}

func load(ctx context.Context, store Store) (Snapshot, error) {
	stored, err := store.GetBookingSettings(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load booking settings: %w", err)
	}
	policy := policyFromRow(stored)
	if err := policy.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("stored booking settings invalid: %w", err)
	}

	hours, err := store.ListBusinessHours(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load business hours: %w", err)
	}
	calendar, err := calendarFromRows(hours)
	if err != nil {
		return Snapshot{}, err
	}

	blackouts, err := blackoutsFromStore(ctx, store)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Calendar: calendar, Policy: policy, Blackouts: blackouts}, nil
}

func policyFromRow(row db.BookingSettings) booking.Policy {
	policy := booking.DefaultPolicy()
	if row.MinAdvanceMinutes > 0 {
		policy.MinAdvance = time.Duration(row.MinAdvanceMinutes) * time.Minute
	}
	if row.MaxAdvanceDays > 0 {
		policy.MaxAdvanceDays = int(row.MaxAdvanceDays)
	}
	if row.BufferMinutes > 0 {
		policy.Buffer = time.Duration(row.BufferMinutes) * time.Minute
	}
	if row.SlotIntervalMinutes > 0 {
		policy.SlotInterval = time.Duration(row.SlotIntervalMinutes) * time.Minute
	}
	return policy
}

func calendarFromRows(rows []db.BusinessHour) (booking.BusinessCalendar, error) {
	var calendar booking.BusinessCalendar
	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			return calendar, fmt.Errorf("stored business hours have invalid day_of_week %d", row.DayOfWeek)
		}
		open, err := booking.ParseTimeOfDay(row.OpensAt)
		if err != nil {
			return calendar, fmt.Errorf("stored opens_at for day %d: %w", row.DayOfWeek, err)
		}
		close, err := booking.ParseTimeOfDay(row.ClosesAt)
		if err != nil {
			return calendar, fmt.Errorf("stored closes_at for day %d: %w", row.DayOfWeek, err)
		}
		calendar.SetHours(time.Weekday(row.DayOfWeek), open, close)
	}
	if err := calendar.Validate(); err != nil {
		return calendar, fmt.Errorf("stored business hours invalid: %w", err)
	}
	return calendar, nil
}

func blackoutsFromStore(ctx context.Context, store Store) (booking.BlackoutSet, error) {
	rows, err := store.ListBlackoutDates(ctx)
	if err != nil {
		return booking.BlackoutSet{}, fmt.Errorf("load blackout dates: %w", err)
	}
	dates := make([]booking.Date, 0, len(rows))
	for _, row := range rows {
		date, err := booking.ParseDate(row.Date)
		if err != nil {
			return booking.BlackoutSet{}, fmt.Errorf("stored blackout date %q: %w", row.Date, err)
		}
		dates = append(dates, date)
	}

	days, err := store.ListBlackoutWeekdays(ctx)
	if err != nil {
		return booking.BlackoutSet{}, fmt.Errorf("load blackout weekdays: %w", err)
	}
	weekdays := make([]time.Weekday, 0, len(days))
	for _, day := range days {
		if day < 0 || day > 6 {
			return booking.BlackoutSet{}, fmt.Errorf("stored blackout weekday %d out of range", day)
		}
		weekdays = append(weekdays, time.Weekday(day))
	}

	return booking.NewBlackoutSet(dates, weekdays), nil
}
