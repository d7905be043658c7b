// internal/api/services/handlers.go
package services

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/groomdesk/groomdesk/internal/api/apiutil"
	appdb "github.com/groomdesk/groomdesk/internal/db"
)

const serviceQueryTimeout = 5 * time.Second

var (
	queries  *appdb.Queries
	initOnce sync.Once
)

type createRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int64  `json:"durationMinutes"`
	PriceCents      int64  `json:"priceCents"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		queries = database.Queries
	})
}

// GET /api/v1/services
func HandleServicesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Service handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceQueryTimeout)
	defer cancel()

	rows, err := queries.ListActiveServices(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list services")
		http.Error(w, "Failed to list services", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []appdb.Service{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"services": rows}); err != nil {
		logger.Error().Err(err).Msg("Failed to write services response")
	}
}

// POST /api/v1/services
func HandleServiceCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Service handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name, err := apiutil.RequireNonEmptyField(req.Name, "name")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.DurationMinutes <= 0 {
		http.Error(w, "durationMinutes must be greater than 0", http.StatusBadRequest)
		return
	}
	if req.PriceCents < 0 {
		http.Error(w, "priceCents must be 0 or greater", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceQueryTimeout)
	defer cancel()

	row, err := queries.CreateService(ctx, appdb.CreateServiceParams{
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
	})
	if err != nil {
		logger.Error().Err(err).Str("name", name).Msg("Failed to create service")
		http.Error(w, "Failed to create service", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, row); err != nil {
		logger.Error().Err(err).Msg("Failed to write service response")
	}
}
