package db

import (
	"context"
	"time"
)

type CreateAppointmentParams struct {
	PublicID        string
	ServiceID       int64
	CustomerName    string
	CustomerPhone   string
	Notes           string
	ScheduledAt     time.Time
	DurationMinutes int64
	Status          string
}

const createAppointment = `
INSERT INTO appointments (public_id, service_id, customer_name, customer_phone, notes, scheduled_at, duration_minutes, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, public_id, service_id, customer_name, customer_phone, notes, scheduled_at, duration_minutes, status, created_at, updated_at
`

func (q *Queries) CreateAppointment(ctx context.Context, params CreateAppointmentParams) (Appointment, error) {
	var a Appointment
	err := q.db.QueryRowContext(ctx, createAppointment,
		params.PublicID, params.ServiceID, params.CustomerName, params.CustomerPhone,
		params.Notes, params.ScheduledAt.UTC(), params.DurationMinutes, params.Status).
		Scan(&a.ID, &a.PublicID, &a.ServiceID, &a.CustomerName, &a.CustomerPhone, &a.Notes,
			&a.ScheduledAt, &a.DurationMinutes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

const listAppointmentsBetween = `
SELECT id, public_id, service_id, customer_name, customer_phone, notes, scheduled_at, duration_minutes, status, created_at, updated_at
FROM appointments
WHERE scheduled_at >= ? AND scheduled_at < ?
ORDER BY scheduled_at
`

// ListAppointmentsBetween returns every appointment starting in
// [start, end), terminal statuses included; callers filter.
func (q *Queries) ListAppointmentsBetween(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	rows, err := q.db.QueryContext(ctx, listAppointmentsBetween, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PublicID, &a.ServiceID, &a.CustomerName, &a.CustomerPhone, &a.Notes,
			&a.ScheduledAt, &a.DurationMinutes, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

const getAppointmentByPublicID = `
SELECT id, public_id, service_id, customer_name, customer_phone, notes, scheduled_at, duration_minutes, status, created_at, updated_at
FROM appointments
WHERE public_id = ?
`

func (q *Queries) GetAppointmentByPublicID(ctx context.Context, publicID string) (Appointment, error) {
	var a Appointment
	err := q.db.QueryRowContext(ctx, getAppointmentByPublicID, publicID).
		Scan(&a.ID, &a.PublicID, &a.ServiceID, &a.CustomerName, &a.CustomerPhone, &a.Notes,
			&a.ScheduledAt, &a.DurationMinutes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

const updateAppointmentStatus = `
UPDATE appointments
SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE public_id = ?
RETURNING id, public_id, service_id, customer_name, customer_phone, notes, scheduled_at, duration_minutes, status, created_at, updated_at
`

func (q *Queries) UpdateAppointmentStatus(ctx context.Context, publicID, status string) (Appointment, error) {
	var a Appointment
	err := q.db.QueryRowContext(ctx, updateAppointmentStatus, status, publicID).
		Scan(&a.ID, &a.PublicID, &a.ServiceID, &a.CustomerName, &a.CustomerPhone, &a.Notes,
			&a.ScheduledAt, &a.DurationMinutes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

const markPendingNoShows = `
UPDATE appointments
SET status = 'no_show', updated_at = CURRENT_TIMESTAMP
WHERE status = 'pending' AND scheduled_at < ?
`

// MarkPendingNoShows flags pending appointments whose start passed before
// cutoff. Returns the number of rows flagged.
func (q *Queries) MarkPendingNoShows(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, markPendingNoShows, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
