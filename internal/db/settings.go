package db

import "context"

const getBookingSettings = `
SELECT min_advance_minutes, max_advance_days, buffer_minutes, slot_interval_minutes
FROM booking_settings
WHERE id = 1
`

func (q *Queries) GetBookingSettings(ctx context.Context) (BookingSettings, error) {
	var s BookingSettings
	err := q.db.QueryRowContext(ctx, getBookingSettings).
		Scan(&s.MinAdvanceMinutes, &s.MaxAdvanceDays, &s.BufferMinutes, &s.SlotIntervalMinutes)
	return s, err
}

type UpdateBookingSettingsParams struct {
	MinAdvanceMinutes   int64
	MaxAdvanceDays      int64
	BufferMinutes       int64
	SlotIntervalMinutes int64
}

const updateBookingSettings = `
UPDATE booking_settings
SET min_advance_minutes = ?, max_advance_days = ?, buffer_minutes = ?, slot_interval_minutes = ?
WHERE id = 1
RETURNING min_advance_minutes, max_advance_days, buffer_minutes, slot_interval_minutes
`

func (q *Queries) UpdateBookingSettings(ctx context.Context, params UpdateBookingSettingsParams) (BookingSettings, error) {
	var s BookingSettings
	err := q.db.QueryRowContext(ctx, updateBookingSettings,
		params.MinAdvanceMinutes, params.MaxAdvanceDays, params.BufferMinutes, params.SlotIntervalMinutes).
		Scan(&s.MinAdvanceMinutes, &s.MaxAdvanceDays, &s.BufferMinutes, &s.SlotIntervalMinutes)
	return s, err
}
