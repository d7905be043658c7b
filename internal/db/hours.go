package db

import "context"

const listBusinessHours = `
SELECT day_of_week, opens_at, closes_at
FROM business_hours
ORDER BY day_of_week
`

func (q *Queries) ListBusinessHours(ctx context.Context) ([]BusinessHour, error) {
	rows, err := q.db.QueryContext(ctx, listBusinessHours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []BusinessHour
	for rows.Next() {
		var h BusinessHour
		if err := rows.Scan(&h.DayOfWeek, &h.OpensAt, &h.ClosesAt); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

type UpsertBusinessHoursParams struct {
	DayOfWeek int64
	OpensAt   string
	ClosesAt  string
}

const upsertBusinessHours = `
INSERT INTO business_hours (day_of_week, opens_at, closes_at)
VALUES (?, ?, ?)
ON CONFLICT (day_of_week) DO UPDATE SET opens_at = excluded.opens_at, closes_at = excluded.closes_at
RETURNING day_of_week, opens_at, closes_at
`

func (q *Queries) UpsertBusinessHours(ctx context.Context, params UpsertBusinessHoursParams) (BusinessHour, error) {
	var h BusinessHour
	err := q.db.QueryRowContext(ctx, upsertBusinessHours,
		params.DayOfWeek, params.OpensAt, params.ClosesAt).
		Scan(&h.DayOfWeek, &h.OpensAt, &h.ClosesAt)
	return h, err
}

const deleteBusinessHours = `
DELETE FROM business_hours WHERE day_of_week = ?
`

// DeleteBusinessHours clears a weekday, marking the business closed that day.
func (q *Queries) DeleteBusinessHours(ctx context.Context, dayOfWeek int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBusinessHours, dayOfWeek)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
