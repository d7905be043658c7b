// internal/api/availability/handlers.go
package availability

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/groomdesk/groomdesk/internal/api/apiutil"
	"github.com/groomdesk/groomdesk/internal/booking"
	appdb "github.com/groomdesk/groomdesk/internal/db"
	"github.com/groomdesk/groomdesk/internal/settings"
)

const availabilityQueryTimeout = 5 * time.Second

var (
	queries       *appdb.Queries
	engine        *booking.Engine
	settingsCache settings.Cache
	cacheTTL      time.Duration
	initOnce      sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// The cache may be nil, which disables settings caching.
func InitHandlers(database *appdb.DB, eng *booking.Engine, c settings.Cache, ttl time.Duration) {
	if database == nil || eng == nil {
		return
	}
	initOnce.Do(func() {
		queries = database.Queries
		engine = eng
		settingsCache = c
		cacheTTL = ttl
	})
}

// GET /api/v1/availability?date=YYYY-MM-DD&service_id=N
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil || engine == nil {
		logger.Error().Msg("Availability handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := apiutil.DateFromQuery(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	serviceID, err := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("service_id"), "service_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	service, err := queries.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Service not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("service_id", serviceID).Msg("Failed to load service")
		http.Error(w, "Failed to load service", http.StatusInternalServerError)
		return
	}
	if !service.Active {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	snap, err := settings.Load(ctx, queries, settingsCache, cacheTTL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load booking settings")
		http.Error(w, "Failed to load booking settings", http.StatusInternalServerError)
		return
	}

	dayStart, dayEnd := apiutil.DayWindow(date, engine.Location())
	rows, err := queries.ListAppointmentsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		logger.Error().Err(err).Str("date", date.String()).Msg("Failed to load appointments")
		http.Error(w, "Failed to load appointments", http.StatusInternalServerError)
		return
	}

	slots, err := engine.AvailableSlots(
		date,
		time.Duration(service.DurationMinutes)*time.Minute,
		snap.Calendar,
		snap.Policy,
		snap.Blackouts,
		apiutil.SnapshotAppointments(rows),
	)
	if err != nil {
		logger.Error().Err(err).Str("date", date.String()).Int64("service_id", serviceID).Msg("Slot generation failed")
		http.Error(w, "Failed to compute availability", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"date":      date,
		"serviceId": serviceID,
		"slots":     slots,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write availability response")
	}
}

// GET /api/v1/availability/disabled-dates?start=YYYY-MM-DD&end=YYYY-MM-DD
func HandleDisabledDates(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil || engine == nil {
		logger.Error().Msg("Availability handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	start, err := apiutil.DateFromQuery(r, "start")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := apiutil.DateFromQuery(r, "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end must not be before start", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	snap, err := settings.Load(ctx, queries, settingsCache, cacheTTL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load booking settings")
		http.Error(w, "Failed to load booking settings", http.StatusInternalServerError)
		return
	}

	disabled, err := engine.DisabledDates(start, end, snap.Calendar, snap.Policy, snap.Blackouts)
	if err != nil {
		logger.Error().Err(err).Msg("Disabled-date enumeration failed")
		http.Error(w, "Failed to compute disabled dates", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"disabledDates": disabled,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write disabled-dates response")
	}
}
