// Package models holds the translation request, the provider contract types
// and the response returned to the add-on.
package models

import "time"

// MaxSubjectLength bounds the generated email subject in runes.
const MaxSubjectLength = 50

// TranslateCommand is a sanitised translate request. Credentials come either
// from a session token or from the company UUID and access token pair.
type TranslateCommand struct {
	Text         string
	CompanyUUID  string
	AccessToken  string
	SessionToken string
}

// ProviderRequest is what a translation provider receives.
type ProviderRequest struct {
	SystemPrompt string
	Text         string
}

// ProviderResult is the structured answer a provider returns.
type ProviderResult struct {
	DetectedLanguage string `json:"detected_language"`
	TranslatedText   string `json:"translated_text"`
	EmailSubject     string `json:"email_subject"`
}

// Result is a completed translation.
type Result struct {
	TranslatedText   string
	EmailSubject     string
	DetectedLanguage string
	Provider         string
	ProcessingTime   time.Duration
}

// TranslateResponse is returned by POST /api/translate.
type TranslateResponse struct {
	TranslatedText   string `json:"translated_text"`
	EmailSubject     string `json:"email_subject"`
	DetectedLanguage string `json:"detected_language"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// ToResponse maps a result to its response.
func ToResponse(r *Result) *TranslateResponse {
	return &TranslateResponse{
		TranslatedText:   r.TranslatedText,
		EmailSubject:     r.EmailSubject,
		DetectedLanguage: r.DetectedLanguage,
		ProcessingTimeMs: r.ProcessingTime.Milliseconds(),
	}
}
