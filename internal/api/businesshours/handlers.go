// internal/api/businesshours/handlers.go
package businesshours

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/groomdesk/groomdesk/internal/api/apiutil"
	"github.com/groomdesk/groomdesk/internal/booking"
	appdb "github.com/groomdesk/groomdesk/internal/db"
	"github.com/groomdesk/groomdesk/internal/settings"
)

const hoursQueryTimeout = 5 * time.Second

var (
	queries       *appdb.Queries
	settingsCache settings.Invalidator
	initOnce      sync.Once
)

type dayHours struct {
	DayOfWeek int64  `json:"dayOfWeek"`
	IsClosed  bool   `json:"isClosed"`
	OpensAt   string `json:"opensAt,omitempty"`
	ClosesAt  string `json:"closesAt,omitempty"`
}

type updateHoursRequest struct {
	IsClosed bool   `json:"isClosed"`
	OpensAt  string `json:"opensAt"`
	ClosesAt string `json:"closesAt"`
}

type updateSettingsRequest struct {
	MinAdvanceMinutes   int64 `json:"minAdvanceMinutes"`
	MaxAdvanceDays      int64 `json:"maxAdvanceDays"`
	BufferMinutes       int64 `json:"bufferMinutes"`
	SlotIntervalMinutes int64 `json:"slotIntervalMinutes"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, c settings.Invalidator) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		queries = database.Queries
		settingsCache = c
	})
}

// GET /api/v1/business-hours
func HandleBusinessHoursList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Business hours handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), hoursQueryTimeout)
	defer cancel()

	rows, err := queries.ListBusinessHours(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list business hours")
		http.Error(w, "Failed to list business hours", http.StatusInternalServerError)
		return
	}

	// Expand the sparse rows into a full week so callers never have to infer
	// which absent weekdays mean closed.
	week := make([]dayHours, 7)
	for day := range week {
		week[day] = dayHours{DayOfWeek: int64(day), IsClosed: true}
	}
	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			continue
		}
		week[row.DayOfWeek] = dayHours{
			DayOfWeek: row.DayOfWeek,
			OpensAt:   row.OpensAt,
			ClosesAt:  row.ClosesAt,
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"hours": week}); err != nil {
		logger.Error().Err(err).Msg("Failed to write business hours response")
	}
}

// PUT /api/v1/business-hours/{day_of_week}
func HandleBusinessHoursUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Business hours handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	day, err := apiutil.ParseDayOfWeekField(r.PathValue("day_of_week"), "day_of_week")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateHoursRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), hoursQueryTimeout)
	defer cancel()

	if req.IsClosed {
		if _, err := queries.DeleteBusinessHours(ctx, day); err != nil {
			logger.Error().Err(err).Int64("day_of_week", day).Msg("Failed to close weekday")
			http.Error(w, "Failed to update business hours", http.StatusInternalServerError)
			return
		}
		settings.Invalidate(settingsCache)
		if err := apiutil.WriteJSON(w, http.StatusOK, dayHours{DayOfWeek: day, IsClosed: true}); err != nil {
			logger.Error().Err(err).Msg("Failed to write business hours response")
		}
		return
	}

	open, err := apiutil.TimeOfDayFromString(req.OpensAt, "opensAt")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	close, err := apiutil.TimeOfDayFromString(req.ClosesAt, "closesAt")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if close <= open {
		http.Error(w, "closesAt must be after opensAt", http.StatusBadRequest)
		return
	}

	row, err := queries.UpsertBusinessHours(ctx, appdb.UpsertBusinessHoursParams{
		DayOfWeek: day,
		OpensAt:   open.String(),
		ClosesAt:  close.String(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("day_of_week", day).Msg("Failed to update business hours")
		http.Error(w, "Failed to update business hours", http.StatusInternalServerError)
		return
	}
	settings.Invalidate(settingsCache)

	if err := apiutil.WriteJSON(w, http.StatusOK, dayHours{
		DayOfWeek: row.DayOfWeek,
		OpensAt:   row.OpensAt,
		ClosesAt:  row.ClosesAt,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write business hours response")
	}
}

// GET /api/v1/booking-settings
func HandleBookingSettingsGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Business hours handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), hoursQueryTimeout)
	defer cancel()

	row, err := queries.GetBookingSettings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load booking settings")
		http.Error(w, "Failed to load booking settings", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, row); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking settings response")
	}
}

// PUT /api/v1/booking-settings
func HandleBookingSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Business hours handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req updateSettingsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	policy := booking.Policy{
		MinAdvance:     time.Duration(req.MinAdvanceMinutes) * time.Minute,
		MaxAdvanceDays: int(req.MaxAdvanceDays),
		Buffer:         time.Duration(req.BufferMinutes) * time.Minute,
		SlotInterval:   time.Duration(req.SlotIntervalMinutes) * time.Minute,
	}
	if err := policy.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), hoursQueryTimeout)
	defer cancel()

	row, err := queries.UpdateBookingSettings(ctx, appdb.UpdateBookingSettingsParams{
		MinAdvanceMinutes:   req.MinAdvanceMinutes,
		MaxAdvanceDays:      req.MaxAdvanceDays,
		BufferMinutes:       req.BufferMinutes,
		SlotIntervalMinutes: req.SlotIntervalMinutes,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to update booking settings")
		http.Error(w, "Failed to update booking settings", http.StatusInternalServerError)
		return
	}
	settings.Invalidate(settingsCache)

	if err := apiutil.WriteJSON(w, http.StatusOK, row); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking settings response")
	}
}
