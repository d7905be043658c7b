package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside transactions.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries bundles the hand-written SQL for the scheduling schema.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int64     `json:"durationMinutes"`
	PriceCents      int64     `json:"priceCents"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
}

type BusinessHour struct {
	DayOfWeek int64  `json:"dayOfWeek"`
	OpensAt   string `json:"opensAt"`
	ClosesAt  string `json:"closesAt"`
}

type BlackoutDate struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type BookingSettings struct {
	MinAdvanceMinutes   int64 `json:"minAdvanceMinutes"`
	MaxAdvanceDays      int64 `json:"maxAdvanceDays"`
	BufferMinutes       int64 `json:"bufferMinutes"`
	SlotIntervalMinutes int64 `json:"slotIntervalMinutes"`
}

type Appointment struct {
	ID              int64     `json:"id"`
	PublicID        string    `json:"publicId"`
	ServiceID       int64     `json:"serviceId"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	Notes           string    `json:"notes"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int64     `json:"durationMinutes"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
