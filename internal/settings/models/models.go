// Package models holds per-company add-on settings: the sealed OpenAI key,
// the ServiceM8 OAuth grant, usage counters and translation preferences.
package models

import (
	"time"

	"m8translate/internal/secrets"
	"m8translate/pkg/domain"
)

// Preferences shape the system prompt for a company's translations.
type Preferences struct {
	DefaultTone         domain.Tone      `json:"default_tone"`
	IncludeContext      bool             `json:"include_context"`
	AutoGenerateSubject bool             `json:"auto_generate_subject"`
	PreferredFormality  domain.Formality `json:"preferred_formality"`
	CustomInstructions  string           `json:"custom_instructions"`
}

// DefaultPreferences are used until a company saves its own.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultTone:         domain.ToneProfessional,
		IncludeContext:      true,
		AutoGenerateSubject: true,
		PreferredFormality:  domain.FormalityBusiness,
	}
}

// OAuthGrant is the ServiceM8 authorization stored after the OAuth callback.
type OAuthGrant struct {
	AccessToken  *secrets.Sealed `json:"access_token"`
	RefreshToken *secrets.Sealed `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Scope        string          `json:"scope"`
	CompanyName  string          `json:"company_name"`
	ConnectedAt  time.Time       `json:"connected_at"`
}

// Settings is the stored record for one company.
type Settings struct {
	CompanyUUID string          `json:"company_uuid"`
	OpenAIKey   *secrets.Sealed `json:"openai_api_key,omitempty"`
	ServiceM8   *OAuthGrant     `json:"servicem8,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UsageCount  int             `json:"usage_count"`
	LastUsed    *time.Time      `json:"last_used,omitempty"`
	Preferences Preferences     `json:"translation_preferences"`
}

// NewSettings returns the defaults for a company that has not saved anything.
func NewSettings(companyUUID string, now time.Time) *Settings {
	return &Settings{
		CompanyUUID: companyUUID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Preferences: DefaultPreferences(),
	}
}

// HasOpenAIKey reports whether the company configured its own key.
func (s *Settings) HasOpenAIKey() bool {
	return s.OpenAIKey != nil
}

// RecordUsage counts one completed translation.
func (s *Settings) RecordUsage(now time.Time) {
	s.UsageCount++
	used := now
	s.LastUsed = &used
}
