package handler

import (
	"m8translate/internal/translation/models"
	dErrors "m8translate/pkg/domain-errors"
)

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	Text         *string `json:"text"`
	CompanyUUID  string  `json:"company_uuid"`
	AccessToken  string  `json:"access_token"`
	SessionToken string  `json:"session_token"`
}

func (r *TranslateRequest) Normalize() {
	trimStrings(r)
	if r.Text != nil {
		clean := sanitizeText(*r.Text)
		r.Text = &clean
	}
}

func (r *TranslateRequest) Validate() error {
	if r.Text == nil {
		return dErrors.New(dErrors.CodeValidation, "Missing required fields: text and authentication")
	}
	if r.SessionToken == "" && (r.CompanyUUID == "" || r.AccessToken == "") {
		return dErrors.New(dErrors.CodeValidation, "Missing required fields: text and authentication")
	}
	if *r.Text == "" {
		return dErrors.New(dErrors.CodeValidation, "Text cannot be empty")
	}
	return nil
}

func (r *TranslateRequest) ToCommand() models.TranslateCommand {
	return models.TranslateCommand{
		Text:         *r.Text,
		CompanyUUID:  r.CompanyUUID,
		AccessToken:  r.AccessToken,
		SessionToken: r.SessionToken,
	}
}
