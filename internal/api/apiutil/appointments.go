package apiutil

import (
	"time"

	"github.com/groomdesk/groomdesk/internal/booking"
	"github.com/groomdesk/groomdesk/internal/db"
)

// DayWindow returns the [start, end) instants covering a calendar date in the
// business timezone, for fetching that day's appointment snapshot.
func DayWindow(date booking.Date, loc *time.Location) (time.Time, time.Time) {
	start := date.At(0, loc)
	end := date.AddDays(1).At(0, loc)
	return start, end
}

// SnapshotAppointments converts stored appointment rows into the engine's
// read-only projection. Rows with a status the engine does not know keep
// blocking their slot rather than silently freeing it.
func SnapshotAppointments(rows []db.Appointment) []booking.Appointment {
	snapshot := make([]booking.Appointment, 0, len(rows))
	for _, row := range rows {
		status, err := booking.ParseStatus(row.Status)
		if err != nil {
			status = booking.StatusPending
		}
		snapshot = append(snapshot, booking.Appointment{
			ScheduledAt: row.ScheduledAt,
			Duration:    time.Duration(row.DurationMinutes) * time.Minute,
			Status:      status,
		})
	}
	return snapshot
}
