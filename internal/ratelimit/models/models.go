package models

import (
	"time"

	dErrors "m8translate/pkg/domain-errors"
)

// EndpointClass categorizes endpoints for differentiated per-IP limits.
type EndpointClass string

const (
	// ClassTranslate: LLM-backed translation (10 req/min per IP by default).
	ClassTranslate EndpointClass = "translate"
	// ClassDetect: local language detection (60 req/min per IP by default).
	ClassDetect EndpointClass = "detect"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassTranslate, ClassDetect:
		return true
	}
	return false
}

// Limit is the admission policy of one sliding window: at most Requests
// admissions within any trailing Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// NewLimit creates a Limit with domain invariant validation.
func NewLimit(requests int, window time.Duration) (Limit, error) {
	if requests <= 0 {
		return Limit{}, dErrors.New(dErrors.CodeInvariantViolation, "requests must be positive")
	}
	if window <= 0 {
		return Limit{}, dErrors.New(dErrors.CodeInvariantViolation, "window must be positive")
	}
	return Limit{Requests: requests, Window: window}, nil
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// Usage is a read-only view of a key's current window.
type Usage struct {
	Current int
	Max     int
	ResetAt time.Time
}
