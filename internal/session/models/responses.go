package models

import "time"

// CreateSessionResponse is returned by POST /api/sessions.
type CreateSessionResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	ExpiresIn    int       `json:"expires_in"`
}

// ResolveSessionResponse is returned by POST /api/session. It never carries
// the access token.
type ResolveSessionResponse struct {
	CompanyUUID string    `json:"company_uuid"`
	JobUUID     string    `json:"job_uuid,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToCreateResponse maps an issued session to its response.
func ToCreateResponse(issued *Issued) *CreateSessionResponse {
	return &CreateSessionResponse{
		SessionToken: issued.Token,
		ExpiresAt:    issued.Session.ExpiresAt,
		ExpiresIn:    int(issued.ExpiresIn.Seconds()),
	}
}

// ToResolveResponse maps a live session to its response.
func ToResolveResponse(s *Session) *ResolveSessionResponse {
	return &ResolveSessionResponse{
		CompanyUUID: s.CompanyUUID,
		JobUUID:     s.JobUUID,
		ExpiresAt:   s.ExpiresAt,
	}
}
