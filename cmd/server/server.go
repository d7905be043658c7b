// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/groomdesk/groomdesk/internal/api"
	"github.com/groomdesk/groomdesk/internal/api/appointments"
	"github.com/groomdesk/groomdesk/internal/api/availability"
	"github.com/groomdesk/groomdesk/internal/api/blackouts"
	"github.com/groomdesk/groomdesk/internal/api/businesshours"
	"github.com/groomdesk/groomdesk/internal/api/services"
	"github.com/groomdesk/groomdesk/internal/booking"
	"github.com/groomdesk/groomdesk/internal/cache"
	"github.com/groomdesk/groomdesk/internal/config"
	"github.com/groomdesk/groomdesk/internal/db"
	"github.com/groomdesk/groomdesk/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, engine *booking.Engine, settingsCache *cache.Cache, limiter *ratelimit.Limiter) *http.Server {
	availability.InitHandlers(database, engine, settingsCache, cfg.SettingsCacheTTL())
	appointments.InitHandlers(database, engine, limiter, cfg.Business.PhoneRegion)
	businesshours.InitHandlers(database, settingsCache)
	blackouts.InitHandlers(database, settingsCache)
	services.InitHandlers(database)

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Availability
	mux.HandleFunc("GET /api/v1/availability", availability.HandleAvailability)
	mux.HandleFunc("GET /api/v1/availability/disabled-dates", availability.HandleDisabledDates)

	// Appointments
	mux.HandleFunc("POST /api/v1/appointments", appointments.HandleAppointmentCreate)
	mux.HandleFunc("GET /api/v1/appointments", appointments.HandleAppointmentsList)
	mux.HandleFunc("POST /api/v1/appointments/{public_id}/cancel", appointments.HandleAppointmentCancel)

	// Services
	mux.HandleFunc("GET /api/v1/services", services.HandleServicesList)
	mux.HandleFunc("POST /api/v1/services", services.HandleServiceCreate)

	// Business hours and booking policy
	mux.HandleFunc("GET /api/v1/business-hours", businesshours.HandleBusinessHoursList)
	mux.HandleFunc("PUT /api/v1/business-hours/{day_of_week}", businesshours.HandleBusinessHoursUpdate)
	mux.HandleFunc("GET /api/v1/booking-settings", businesshours.HandleBookingSettingsGet)
	mux.HandleFunc("PUT /api/v1/booking-settings", businesshours.HandleBookingSettingsUpdate)

	// Blackouts
	mux.HandleFunc("GET /api/v1/blackouts", blackouts.HandleBlackoutsList)
	mux.HandleFunc("POST /api/v1/blackouts", blackouts.HandleBlackoutCreate)
	mux.HandleFunc("DELETE /api/v1/blackouts/{id}", blackouts.HandleBlackoutDelete)
	mux.HandleFunc("PUT /api/v1/blackouts/weekdays/{day_of_week}", blackouts.HandleBlackoutWeekdayUpdate)
}
