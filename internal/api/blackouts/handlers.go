// internal/api/blackouts/handlers.go
package blackouts

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/groomdesk/groomdesk/internal/api/apiutil"
	appdb "github.com/groomdesk/groomdesk/internal/db"
	"github.com/groomdesk/groomdesk/internal/settings"
)

const blackoutQueryTimeout = 5 * time.Second

var (
	queries       *appdb.Queries
	settingsCache settings.Invalidator
	initOnce      sync.Once
)

type createDateRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type weekdayRequest struct {
	Blocked bool `json:"blocked"`
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

// GET /api/v1/blackouts
func HandleBlackoutsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Blackout handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), blackoutQueryTimeout)
	defer cancel()

	dates, err := queries.ListBlackoutDates(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list blackout dates")
		http.Error(w, "Failed to list blackouts", http.StatusInternalServerError)
		return
	}
	weekdays, err := queries.ListBlackoutWeekdays(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list blackout weekdays")
		http.Error(w, "Failed to list blackouts", http.StatusInternalServerError)
		return
	}
	if dates == nil {
		dates = []appdb.BlackoutDate{}
	}
	if weekdays == nil {
		weekdays = []int64{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"dates":    dates,
		"weekdays": weekdays,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write blackouts response")
	}
}

// POST /api/v1/blackouts
func HandleBlackoutCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Blackout handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createDateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := apiutil.DateFromString(req.Date, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), blackoutQueryTimeout)
	defer cancel()

	row, err := queries.CreateBlackoutDate(ctx, appdb.CreateBlackoutDateParams{
		Date:   date.String(),
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		if apiutil.IsSQLiteConstraintViolation(err) {
			http.Error(w, "Blackout date already exists", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Str("date", date.String()).Msg("Failed to create blackout date")
		http.Error(w, "Failed to create blackout", http.StatusInternalServerError)
		return
	}
	settings.Invalidate(settingsCache)

	if err := apiutil.WriteJSON(w, http.StatusCreated, row); err != nil {
		logger.Error().Err(err).Msg("Failed to write blackout response")
	}
}

// DELETE /api/v1/blackouts/{id}
func HandleBlackoutDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Blackout handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), blackoutQueryTimeout)
	defer cancel()

	affected, err := queries.DeleteBlackoutDate(ctx, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Failed to delete blackout date")
		http.Error(w, "Failed to delete blackout", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.Error(w, "Blackout not found", http.StatusNotFound)
		return
	}
	settings.Invalidate(settingsCache)

	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/v1/blackouts/weekdays/{day_of_week}
func HandleBlackoutWeekdayUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Blackout handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	day, err := apiutil.ParseDayOfWeekField(r.PathValue("day_of_week"), "day_of_week")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req weekdayRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), blackoutQueryTimeout)
	defer cancel()

	if req.Blocked {
		err = queries.SetBlackoutWeekday(ctx, day)
	} else {
		_, err = queries.ClearBlackoutWeekday(ctx, day)
	}
	if err != nil {
		logger.Error().Err(err).Int64("day_of_week", day).Bool("blocked", req.Blocked).Msg("Failed to update blackout weekday")
		http.Error(w, "Failed to update blackout weekday", http.StatusInternalServerError)
		return
	}
	settings.Invalidate(settingsCache)

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"dayOfWeek": day,
		"blocked":   req.Blocked,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write blackout weekday response")
	}
}
