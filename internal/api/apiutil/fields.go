package apiutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/groomdesk/groomdesk/internal/booking"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// ParseDayOfWeekField parses a weekday index, Sunday = 0.
func ParseDayOfWeekField(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 || value > 6 {
		return 0, FieldError{Field: field, Reason: "must be between 0 and 6"}
	}
	return value, nil
}

// DateFromString parses a required YYYY-MM-DD field.
func DateFromString(raw string, field string) (booking.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return booking.Date{}, FieldError{Field: field, Reason: "is required"}
	}
	date, err := booking.ParseDate(raw)
	if err != nil {
		return booking.Date{}, FieldError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return date, nil
}

// DateFromQuery parses a required YYYY-MM-DD query parameter.
func DateFromQuery(r *http.Request, key string) (booking.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return booking.Date{}, FieldError{Field: key, Reason: "is required"}
	}
	date, err := booking.ParseDate(raw)
	if err != nil {
		return booking.Date{}, FieldError{Field: key, Reason: "must be a YYYY-MM-DD date"}
	}
	return date, nil
}

// TimeOfDayFromString parses a required HH:MM field.
func TimeOfDayFromString(raw string, field string) (booking.TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	tod, err := booking.ParseTimeOfDay(raw)
	if err != nil {
		return 0, FieldError{Field: field, Reason: "must be an HH:MM time"}
	}
	return tod, nil
}

func RequireNonEmptyField(raw string, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	return raw, nil
}
