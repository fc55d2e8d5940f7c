// Package validate provides the pure guard-clause checks every tool handler
// runs before touching the backing store. Each check fails fast with a named
// violation and never mutates its input.
package validate

import (
	"strings"
	"time"

	"github.com/google/uuid"

	berrors "github.com/balcaohq/balcao/internal/errors"
)

// DateLayout is the calendar-date wire format used across the tool catalog.
const DateLayout = "2006-01-02"

// Identifier checks that s is a well-formed UUID.
func Identifier(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return berrors.NewViolation(field, "is required")
	}
	if _, err := uuid.Parse(s); err != nil {
		return berrors.NewViolation(field, "must be a valid UUID")
	}
	return nil
}

// Date checks YYYY-MM-DD well-formedness and returns the parsed day.
func Date(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, berrors.NewViolation(field, "is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, berrors.NewViolation(field, "must be a valid date in YYYY-MM-DD format")
	}
	return t, nil
}

// DateRange checks that both endpoints are well-formed and start <= end.
func DateRange(startField, endField, start, end string) (time.Time, time.Time, error) {
	s, err := Date(startField, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := Date(endField, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, berrors.NewViolation(startField, "must not be after %s", endField)
	}
	return s, e, nil
}

// TimeOfDay checks HH:MM well-formedness (00-23 hours, 00-59 minutes).
func TimeOfDay(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return berrors.NewViolation(field, "is required")
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return berrors.NewViolation(field, "must be a valid time in HH:MM format")
	}
	return nil
}

// NonEmpty checks that a required text field has content after trimming,
// and returns the trimmed value.
func NonEmpty(field, s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", berrors.NewViolation(field, "is required and must not be empty")
	}
	return trimmed, nil
}

// IntRange checks that v falls within [min, max] inclusive.
func IntRange(field string, v, min, max int) error {
	if v < min || v > max {
		return berrors.NewViolation(field, "must be between %d and %d", min, max)
	}
	return nil
}

// PositiveAmount checks that a monetary amount is strictly positive.
func PositiveAmount(field string, v float64) error {
	if v <= 0 {
		return berrors.NewViolation(field, "must be greater than zero")
	}
	return nil
}
