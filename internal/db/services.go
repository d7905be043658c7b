package db

import "context"

const listActiveServices = `
SELECT id, name, description, duration_minutes, price_cents, active, created_at
FROM services
WHERE active = 1
ORDER BY name
`

func (q *Queries) ListActiveServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.QueryContext(ctx, listActiveServices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

const getServiceByID = `
SELECT id, name, description, duration_minutes, price_cents, active, created_at
FROM services
WHERE id = ?
`

func (q *Queries) GetServiceByID(ctx context.Context, id int64) (Service, error) {
	var s Service
	err := q.db.QueryRowContext(ctx, getServiceByID, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.CreatedAt)
	return s, err
}

type CreateServiceParams struct {
	Name            string
	Description     string
	DurationMinutes int64
	PriceCents      int64
}

const createService = `
INSERT INTO services (name, description, duration_minutes, price_cents)
VALUES (?, ?, ?, ?)
RETURNING id, name, description, duration_minutes, price_cents, active, created_at
`

func (q *Queries) CreateService(ctx context.Context, params CreateServiceParams) (Service, error) {
	var s Service
	err := q.db.QueryRowContext(ctx, createService,
		params.Name, params.Description, params.DurationMinutes, params.PriceCents).
		Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.CreatedAt)
	return s, err
}
