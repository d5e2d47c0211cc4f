package models

import "time"

// RateLimitInfo reports the company's live translation window.
type RateLimitInfo struct {
	CurrentWindowRequests int       `json:"current_window_requests"`
	MaxRequestsPerMinute  int       `json:"max_requests_per_minute"`
	ResetTime             time.Time `json:"reset_time"`
}

// SettingsResponse is the safe view returned by GET /api/settings. Sealed
// values never appear in it.
type SettingsResponse struct {
	CompanyUUID            string        `json:"company_uuid"`
	HasOpenAIKey           bool          `json:"has_openai_key"`
	ServiceM8Connected     bool          `json:"servicem8_connected"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
	UsageCount             int           `json:"usage_count"`
	LastUsed               *time.Time    `json:"last_used"`
	TranslationPreferences Preferences   `json:"translation_preferences"`
	RateLimitInfo          RateLimitInfo `json:"rate_limit_info"`
}

// UpdateSettingsResponse is returned by PUT and POST /api/settings.
type UpdateSettingsResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	HasOpenAIKey bool      `json:"has_openai_key"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToSettingsResponse maps stored settings and the live window to the safe view.
func ToSettingsResponse(s *Settings, info RateLimitInfo) *SettingsResponse {
	return &SettingsResponse{
		CompanyUUID:            s.CompanyUUID,
		HasOpenAIKey:           s.HasOpenAIKey(),
		ServiceM8Connected:     s.ServiceM8 != nil,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		UsageCount:             s.UsageCount,
		LastUsed:               s.LastUsed,
		TranslationPreferences: s.Preferences,
		RateLimitInfo:          info,
	}
}

// ToUpdateResponse maps saved settings to the update acknowledgement.
func ToUpdateResponse(s *Settings) *UpdateSettingsResponse {
	return &UpdateSettingsResponse{
		Success:      true,
		Message:      "Settings updated successfully",
		HasOpenAIKey: s.HasOpenAIKey(),
		UpdatedAt:    s.UpdatedAt,
	}
}
