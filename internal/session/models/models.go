// Package models holds the add-on session records that stand in for
// ServiceM8 credentials inside the browser.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Session binds a short-lived opaque token to the ServiceM8 credentials the
// add-on was opened with. The access token never leaves the server.
type Session struct {
	ID          string    `json:"id"`
	CompanyUUID string    `json:"company_uuid"`
	JobUUID     string    `json:"job_uuid,omitempty"`
	AccessToken string    `json:"access_token"`
	Device      string    `json:"device,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewSession creates a session valid for ttl from now.
func NewSession(companyUUID, jobUUID, accessToken, device string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:          uuid.NewString(),
		CompanyUUID: companyUUID,
		JobUUID:     jobUUID,
		AccessToken: accessToken,
		Device:      device,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// IsExpired reports whether the session is past its deadline at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Issued is returned to the caller when a session is created.
type Issued struct {
	Token     string
	Session   *Session
	ExpiresIn time.Duration
}
