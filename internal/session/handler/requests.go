package handler

import (
	"strings"

	dErrors "m8translate/pkg/domain-errors"
)

// CreateSessionRequest carries the credentials ServiceM8 passes to the add-on.
type CreateSessionRequest struct {
	CompanyUUID string `json:"company_uuid"`
	AccessToken string `json:"access_token"`
	JobUUID     string `json:"job_uuid"`
}

func (r *CreateSessionRequest) Normalize() {
	r.CompanyUUID = strings.TrimSpace(r.CompanyUUID)
	r.AccessToken = strings.TrimSpace(r.AccessToken)
	r.JobUUID = strings.TrimSpace(r.JobUUID)
}

func (r *CreateSessionRequest) Validate() error {
	if r.CompanyUUID == "" || r.AccessToken == "" {
		return dErrors.New(dErrors.CodeValidation, "Missing required fields: company_uuid, access_token")
	}
	return nil
}

// ResolveSessionRequest carries a previously issued session token.
type ResolveSessionRequest struct {
	SessionToken string `json:"session_token"`
}

func (r *ResolveSessionRequest) Normalize() {
	r.SessionToken = strings.TrimSpace(r.SessionToken)
}

func (r *ResolveSessionRequest) Validate() error {
	if r.SessionToken == "" {
		return dErrors.New(dErrors.CodeValidation, "Missing session token")
	}
	return nil
}
