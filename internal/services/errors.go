// Package services holds the business logic of the celebrations backend.
// This file centralizes the service-level error values so handlers and the
// CLI can map them to HTTP statuses and exit codes consistently.
package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLimiterUnavailable means the counter store could not be read or
	// written. The limiter fails closed: the request is not admitted.
	ErrLimiterUnavailable = errors.New("rate limiter unavailable")

	// ErrGenerationFailed is returned when every provider failed and no
	// template fallback is configured.
	ErrGenerationFailed = errors.New("wish generation failed")

	// ErrWishNotFound is returned when regenerating an unknown request id.
	ErrWishNotFound = errors.New("wish not found")

	// ErrInvalidDate is returned for malformed MM-DD or YYYY-MM-DD input.
	ErrInvalidDate = errors.New("invalid date")

	// ErrRosterUnavailable wraps a failure to load the roster, the only
	// fatal error of a dispatch run.
	ErrRosterUnavailable = errors.New("roster unavailable")

	// ErrCSVInvalid is returned when an uploaded roster fails validation.
	ErrCSVInvalid = errors.New("CSV validation failed")

	// ErrRecordNotFound is returned for unknown roster record ids.
	ErrRecordNotFound = errors.New("roster record not found")
)

// RateLimitExceededError is returned when the caller's window is full.
type RateLimitExceededError struct {
	ResetAt time.Time
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// RetryAfter returns the whole seconds until ResetAt, at least 1.
func (e *RateLimitExceededError) RetryAfter(now time.Time) int {
	secs := int(e.ResetAt.Sub(now).Seconds())
	if e.ResetAt.Sub(now) > time.Duration(secs)*time.Second {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
