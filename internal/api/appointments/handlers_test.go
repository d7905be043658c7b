package appointments

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/groomdesk/groomdesk/internal/booking"
	"github.com/groomdesk/groomdesk/internal/db"
	"github.com/groomdesk/groomdesk/internal/ratelimit"
	"github.com/groomdesk/groomdesk/internal/testutil"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// setupAppointmentsTest pins the clock to Monday 2026-01-05 08:00 UTC, opens
// Monday 09:00-17:00, and seeds a 60-minute service.
func setupAppointmentsTest(t *testing.T) (*db.DB, int64) {
	t.Helper()

	database := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := database.Queries.UpsertBusinessHours(ctx, db.UpsertBusinessHoursParams{
		DayOfWeek: 1,
		OpensAt:   "09:00",
		ClosesAt:  "17:00",
	})
	if err != nil {
		t.Fatalf("seed hours: %v", err)
	}

	service, err := database.Queries.CreateService(ctx, db.CreateServiceParams{
		Name:            "Bath & Brush",
		DurationMinutes: 60,
		PriceCents:      4500,
	})
	if err != nil {
		t.Fatalf("seed service: %v", err)
	}

	reset := func() {
		store = nil
		engine = nil
		limiter = nil
		phoneRegion = ""
		initOnce = sync.Once{}
	}
	reset()
	t.Cleanup(reset)

	eng := booking.NewEngine(time.UTC, fixedClock{now: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)})
	InitHandlers(database, eng, nil, "US")

	return database, service.ID
}

func postCreate(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	HandleAppointmentCreate(recorder, req)
	return recorder
}

func TestHandleAppointmentCreate(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	body := fmt.Sprintf(`{
		"serviceId": %d,
		"date": "2026-01-05",
		"time": "10:00",
		"customerName": "Dana",
		"customerPhone": "(212) 555-0184",
		"notes": "first visit"
	}`, serviceID)
	recorder := postCreate(t, body)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}

	var created db.Appointment
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.PublicID == "" {
		t.Fatalf("missing public id")
	}
	if created.Status != "pending" {
		t.Fatalf("status: %s", created.Status)
	}
	if created.CustomerPhone != "+12125550184" {
		t.Fatalf("phone not normalized: %s", created.CustomerPhone)
	}
}

func TestHandleAppointmentCreate_SlotTaken(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	body := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:00", "customerName": "Dana"}`, serviceID)
	if recorder := postCreate(t, body); recorder.Code != http.StatusCreated {
		t.Fatalf("first booking status: %d, body: %s", recorder.Code, recorder.Body.String())
	}

	second := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:30", "customerName": "Riley"}`, serviceID)
	recorder := postCreate(t, second)

	if recorder.Code != http.StatusConflict {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "slot_taken" {
		t.Fatalf("conflict code: %s", resp.Code)
	}
}

func TestHandleAppointmentCreate_AdjacentSlotAllowed(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	body := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:00", "customerName": "Dana"}`, serviceID)
	if recorder := postCreate(t, body); recorder.Code != http.StatusCreated {
		t.Fatalf("first booking status: %d", recorder.Code)
	}

	// Back-to-back with the first appointment ending at 11:00.
	second := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "11:00", "customerName": "Riley"}`, serviceID)
	recorder := postCreate(t, second)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
}

func TestHandleAppointmentCreate_OutsideWindow(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	// 08:15 is before the minimum advance notice of 30 minutes past 08:00.
	body := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "08:15", "customerName": "Dana"}`, serviceID)
	recorder := postCreate(t, body)

	if recorder.Code != http.StatusConflict {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
}

func TestHandleAppointmentCreate_InvalidPhone(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	body := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:00", "customerName": "Dana", "customerPhone": "not-a-number"}`, serviceID)
	recorder := postCreate(t, body)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
}

func TestHandleAppointmentCreate_UnknownService(t *testing.T) {
	setupAppointmentsTest(t)

	recorder := postCreate(t, `{"serviceId": 9999, "date": "2026-01-05", "time": "10:00", "customerName": "Dana"}`)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestHandleAppointmentCreate_RateLimited(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	lim := ratelimit.New(&ratelimit.Config{
		CreateCooldown:     time.Minute,
		CreateMaxPerHour:   10,
		CreateMaxIPPerHour: 30,
		Clock:              fixedClock{now: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)},
	})
	defer lim.Close()
	limiter = lim

	body := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:00", "customerName": "Dana", "customerPhone": "(212) 555-0184"}`, serviceID)
	if recorder := postCreate(t, body); recorder.Code != http.StatusCreated {
		t.Fatalf("first booking status: %d, body: %s", recorder.Code, recorder.Body.String())
	}

	second := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "11:00", "customerName": "Dana", "customerPhone": "(212) 555-0184"}`, serviceID)
	recorder := postCreate(t, second)

	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}

func TestHandleAppointmentsList(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	body := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:00", "customerName": "Dana"}`, serviceID)
	if recorder := postCreate(t, body); recorder.Code != http.StatusCreated {
		t.Fatalf("seed booking status: %d", recorder.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?date=2026-01-05", nil)
	recorder := httptest.NewRecorder()
	HandleAppointmentsList(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	var resp struct {
		Appointments []db.Appointment `json:"appointments"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Appointments) != 1 {
		t.Fatalf("appointment count: %d", len(resp.Appointments))
	}
	if resp.Appointments[0].CustomerName != "Dana" {
		t.Fatalf("customer: %s", resp.Appointments[0].CustomerName)
	}
}

func TestHandleAppointmentCancel(t *testing.T) {
	_, serviceID := setupAppointmentsTest(t)

	body := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:00", "customerName": "Dana"}`, serviceID)
	recorder := postCreate(t, body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("seed booking status: %d", recorder.Code)
	}
	var created db.Appointment
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/"+created.PublicID+"/cancel", nil)
	req.SetPathValue(publicIDParam, created.PublicID)
	cancelRecorder := httptest.NewRecorder()
	HandleAppointmentCancel(cancelRecorder, req)

	if cancelRecorder.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", cancelRecorder.Code, cancelRecorder.Body.String())
	}
	var cancelled db.Appointment
	if err := json.Unmarshal(cancelRecorder.Body.Bytes(), &cancelled); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cancelled.Status != "cancelled" {
		t.Fatalf("status: %s", cancelled.Status)
	}

	// The freed slot is bookable again.
	rebook := fmt.Sprintf(`{"serviceId": %d, "date": "2026-01-05", "time": "10:00", "customerName": "Riley"}`, serviceID)
	if recorder := postCreate(t, rebook); recorder.Code != http.StatusCreated {
		t.Fatalf("rebook status: %d, body: %s", recorder.Code, recorder.Body.String())
	}
}

func TestHandleAppointmentCancel_CompletedRejected(t *testing.T) {
	database, serviceID := setupAppointmentsTest(t)

	created, err := database.Queries.CreateAppointment(context.Background(), db.CreateAppointmentParams{
		PublicID:        "test-appt-done",
		ServiceID:       serviceID,
		CustomerName:    "Dana",
		ScheduledAt:     time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          "completed",
	})
	if err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/"+created.PublicID+"/cancel", nil)
	req.SetPathValue(publicIDParam, created.PublicID)
	recorder := httptest.NewRecorder()
	HandleAppointmentCancel(recorder, req)

	if recorder.Code != http.StatusConflict {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestHandleAppointmentCancel_NotFound(t *testing.T) {
	setupAppointmentsTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/nope/cancel", nil)
	req.SetPathValue(publicIDParam, "nope")
	recorder := httptest.NewRecorder()
	HandleAppointmentCancel(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status: %d", recorder.Code)
	}
}
