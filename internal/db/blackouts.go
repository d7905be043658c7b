package db

import "context"

const listBlackoutDates = `
SELECT id, date, reason
FROM blackout_dates
ORDER BY date
`

func (q *Queries) ListBlackoutDates(ctx context.Context) ([]BlackoutDate, error) {
	rows, err := q.db.QueryContext(ctx, listBlackoutDates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []BlackoutDate
	for rows.Next() {
		var d BlackoutDate
		if err := rows.Scan(&d.ID, &d.Date, &d.Reason); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

type CreateBlackoutDateParams struct {
	Date   string
	Reason string
}

const createBlackoutDate = `
INSERT INTO blackout_dates (date, reason)
VALUES (?, ?)
RETURNING id, date, reason
`

func (q *Queries) CreateBlackoutDate(ctx context.Context, params CreateBlackoutDateParams) (BlackoutDate, error) {
	var d BlackoutDate
	err := q.db.QueryRowContext(ctx, createBlackoutDate, params.Date, params.Reason).
		Scan(&d.ID, &d.Date, &d.Reason)
	return d, err
}

const deleteBlackoutDate = `
DELETE FROM blackout_dates WHERE id = ?
`

func (q *Queries) DeleteBlackoutDate(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBlackoutDate, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBlackoutWeekdays = `
SELECT day_of_week FROM blackout_weekdays ORDER BY day_of_week
`

func (q *Queries) ListBlackoutWeekdays(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listBlackoutWeekdays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weekdays []int64
	for rows.Next() {
		var day int64
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		weekdays = append(weekdays, day)
	}
	return weekdays, rows.Err()
}

const setBlackoutWeekday = `
INSERT INTO blackout_weekdays (day_of_week) VALUES (?)
ON CONFLICT (day_of_week) DO NOTHING
`

func (q *Queries) SetBlackoutWeekday(ctx context.Context, dayOfWeek int64) error {
	_, err := q.db.ExecContext(ctx, setBlackoutWeekday, dayOfWeek)
	return err
}

const clearBlackoutWeekday = `
DELETE FROM blackout_weekdays WHERE day_of_week = ?
`

func (q *Queries) ClearBlackoutWeekday(ctx context.Context, dayOfWeek int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, clearBlackoutWeekday, dayOfWeek)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
