// internal/api/appointments/handlers.go
package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/groomdesk/groomdesk/internal/api/apiutil"
	"github.com/groomdesk/groomdesk/internal/booking"
	appdb "github.com/groomdesk/groomdesk/internal/db"
	"github.com/groomdesk/groomdesk/internal/ratelimit"
	"github.com/groomdesk/groomdesk/internal/settings"
)

const (
	appointmentQueryTimeout = 5 * time.Second
	publicIDParam           = "public_id"
)

var (
	store       *appdb.DB
	engine      *booking.Engine
	limiter     *ratelimit.Limiter
	phoneRegion string
	initOnce    sync.Once
)

type createRequest struct {
	ServiceID     int64  `json:"serviceId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Notes         string `json:"notes"`
}

// InitHandlers must be called during server startup before handling requests.
// A nil limiter disables booking rate limits.
func InitHandlers(database *appdb.DB, eng *booking.Engine, lim *ratelimit.Limiter, region string) {
	if database == nil || eng == nil {
		return
	}
	initOnce.Do(func() {
		store = database
		engine = eng
		limiter = lim
		phoneRegion = region
	})
}

// POST /api/v1/appointments
func HandleAppointmentCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil || engine == nil {
		logger.Error().Msg("Appointment handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.ServiceID <= 0 {
		http.Error(w, "serviceId must be a positive integer", http.StatusBadRequest)
		return
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	at, err := apiutil.TimeOfDayFromString(req.Time, "time")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	customerName, err := apiutil.RequireNonEmptyField(req.CustomerName, "customerName")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	customerPhone, err := normalizePhone(req.CustomerPhone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientIP := ratelimit.GetClientIP(r, false)
	if limiter != nil {
		if result := limiter.CheckCreate(customerPhone, clientIP); !result.Allowed {
			ratelimit.LogRateLimitExceeded(customerPhone, clientIP, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			http.Error(w, "Too many booking attempts. Please try again later.", http.StatusTooManyRequests)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), appointmentQueryTimeout)
	defer cancel()

	var created appdb.Appointment
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		service, err := qtx.GetServiceByID(ctx, req.ServiceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Service not found", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load service", Err: err}
		}
		if !service.Active {
			return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Service not found"}
		}

		// Freshest possible snapshot: settings and the day's appointments
		// are re-read inside the same transaction that inserts, so two
		// writers cannot both pass the conflict check.
		snap, err := settings.Load(ctx, qtx, nil, 0)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load booking settings", Err: err}
		}

		dayStart, dayEnd := apiutil.DayWindow(date, engine.Location())
		rows, err := qtx.ListAppointmentsBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load appointments", Err: err}
		}

		free, err := engine.SlotFree(
			date, at,
			time.Duration(service.DurationMinutes)*time.Minute,
			snap.Calendar, snap.Policy, snap.Blackouts,
			apiutil.SnapshotAppointments(rows),
		)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}
		if !free {
			return booking.ErrSlotTaken
		}

		created, err = qtx.CreateAppointment(ctx, appdb.CreateAppointmentParams{
			PublicID:        uuid.New().String(),
			ServiceID:       service.ID,
			CustomerName:    customerName,
			CustomerPhone:   customerPhone,
			Notes:           strings.TrimSpace(req.Notes),
			ScheduledAt:     date.At(at, engine.Location()),
			DurationMinutes: service.DurationMinutes,
			Status:          string(booking.StatusPending),
		})
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create appointment", Err: err}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			logger.Info().Str("date", date.String()).Str("time", at.String()).Msg("Slot taken at write time")
			if werr := apiutil.WriteJSONError(w, http.StatusConflict, "slot_taken", "That time is no longer available. Please pick another slot."); werr != nil {
				logger.Error().Err(werr).Msg("Failed to write conflict response")
			}
			return
		}
		var herr apiutil.HandlerError
		if errors.As(err, &herr) {
			if herr.Status >= http.StatusInternalServerError {
				logger.Error().Err(herr.Err).Msg(herr.Message)
			}
			http.Error(w, herr.Message, herr.Status)
			return
		}
		logger.Error().Err(err).Msg("Failed to create appointment")
		http.Error(w, "Failed to create appointment", http.StatusInternalServerError)
		return
	}

	if limiter != nil {
		limiter.RecordCreate(customerPhone, clientIP)
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Str("public_id", created.PublicID).Msg("Failed to write appointment response")
	}
}

// GET /api/v1/appointments?date=YYYY-MM-DD
func HandleAppointmentsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil || engine == nil {
		logger.Error().Msg("Appointment handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := apiutil.DateFromQuery(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), appointmentQueryTimeout)
	defer cancel()

	dayStart, dayEnd := apiutil.DayWindow(date, engine.Location())
	rows, err := store.Queries.ListAppointmentsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		logger.Error().Err(err).Str("date", date.String()).Msg("Failed to list appointments")
		http.Error(w, "Failed to list appointments", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"date":         date,
		"appointments": rows,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write appointment list response")
	}
}

// POST /api/v1/appointments/{public_id}/cancel
func HandleAppointmentCancel(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Appointment handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	publicID := strings.TrimSpace(r.PathValue(publicIDParam))
	if publicID == "" {
		http.Error(w, "public_id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), appointmentQueryTimeout)
	defer cancel()

	var updated appdb.Appointment
	err := store.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		current, err := qtx.GetAppointmentByPublicID(ctx, publicID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Appointment not found", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load appointment", Err: err}
		}
		if !cancellable(booking.Status(current.Status)) {
			return apiutil.HandlerError{
				Status:  http.StatusConflict,
				Message: fmt.Sprintf("Appointment in status %q cannot be cancelled", current.Status),
			}
		}

		updated, err = qtx.UpdateAppointmentStatus(ctx, publicID, string(booking.StatusCancelled))
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to cancel appointment", Err: err}
		}
		return nil
	})
	if err != nil {
		var herr apiutil.HandlerError
		if errors.As(err, &herr) {
			if herr.Status >= http.StatusInternalServerError {
				logger.Error().Err(herr.Err).Str("public_id", publicID).Msg(herr.Message)
			}
			http.Error(w, herr.Message, herr.Status)
			return
		}
		logger.Error().Err(err).Str("public_id", publicID).Msg("Failed to cancel appointment")
		http.Error(w, "Failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Str("public_id", publicID).Msg("Failed to write cancel response")
	}
}

// cancellable reports whether an appointment may still be cancelled by the
// customer or staff. In-progress and finished appointments may not.
func cancellable(status booking.Status) bool {
	switch status {
	case booking.StatusPending, booking.StatusConfirmed, booking.StatusCheckedIn:
		return true
	}
	return false
}

// normalizePhone validates an optional phone number and normalizes it to
// E.164. An empty value stays empty.
func normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	region := phoneRegion
	if region == "" {
		region = "US"
	}
	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", apiutil.FieldError{Field: "customerPhone", Reason: "must be a valid phone number"}
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", apiutil.FieldError{Field: "customerPhone", Reason: "must be a valid phone number"}
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
