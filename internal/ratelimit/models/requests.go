package models

import (
	"strings"

	dErrors "m8translate/pkg/domain-errors"
)

// ResetScope selects which family of windows an admin reset clears.
type ResetScope string

const (
	ResetScopeIP      ResetScope = "ip"
	ResetScopeCompany ResetScope = "company"
)

func (s ResetScope) IsValid() bool {
	return s == ResetScopeIP || s == ResetScopeCompany
}

// ResetRateLimitRequest clears the window of one IP or company. Class only
// applies to IP resets; when omitted every class is cleared.
type ResetRateLimitRequest struct {
	Scope      ResetScope    `json:"scope"`
	Identifier string        `json:"identifier"`
	Class      EndpointClass `json:"class,omitempty"`
}

func (r *ResetRateLimitRequest) Normalize() {
	if r == nil {
		return
	}
	r.Scope = ResetScope(strings.TrimSpace(strings.ToLower(string(r.Scope))))
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Class = EndpointClass(strings.TrimSpace(strings.ToLower(string(r.Class))))
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *ResetRateLimitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.Identifier) > 255 {
		return dErrors.New(dErrors.CodeValidation, "identifier must be 255 characters or less")
	}

	if r.Scope == "" {
		return dErrors.New(dErrors.CodeValidation, "scope is required")
	}
	if r.Identifier == "" {
		return dErrors.New(dErrors.CodeValidation, "identifier is required")
	}

	if !r.Scope.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "scope must be 'ip' or 'company'")
	}
	if r.Class != "" {
		if r.Scope != ResetScopeIP {
			return dErrors.New(dErrors.CodeValidation, "class only applies to ip resets")
		}
		if !r.Class.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "class must be 'translate' or 'detect'")
		}
	}

	return nil
}
