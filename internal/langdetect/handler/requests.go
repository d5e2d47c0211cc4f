package handler

import (
	dErrors "m8translate/pkg/domain-errors"
)

// DetectRequest is the body of POST /api/detect-language.
type DetectRequest struct {
	Text *string `json:"text"`
}

func (r *DetectRequest) Validate() error {
	if r.Text == nil || *r.Text == "" {
		return dErrors.New(dErrors.CodeValidation, "text is required")
	}
	return nil
}
