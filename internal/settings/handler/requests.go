package handler

import (
	"strings"

	"m8translate/internal/settings/service"
)

// PreferencesRequest is a partial preferences update.
type PreferencesRequest struct {
	DefaultTone         *string `json:"default_tone"`
	IncludeContext      *bool   `json:"include_context"`
	AutoGenerateSubject *bool   `json:"auto_generate_subject"`
	PreferredFormality  *string `json:"preferred_formality"`
	CustomInstructions  *string `json:"custom_instructions"`
}

// UpdateSettingsRequest is the body of PUT and POST /api/settings.
type UpdateSettingsRequest struct {
	OpenAIAPIKey           string              `json:"openai_api_key"`
	TranslationPreferences *PreferencesRequest `json:"translation_preferences"`
}

func (r *UpdateSettingsRequest) Normalize() {
	r.OpenAIAPIKey = strings.TrimSpace(r.OpenAIAPIKey)
	if p := r.TranslationPreferences; p != nil {
		trimPtr(p.DefaultTone)
		trimPtr(p.PreferredFormality)
		trimPtr(p.CustomInstructions)
	}
}

// ToCommand maps the request onto the service command.
func (r *UpdateSettingsRequest) ToCommand() service.UpdateCommand {
	cmd := service.UpdateCommand{OpenAIAPIKey: r.OpenAIAPIKey}
	if p := r.TranslationPreferences; p != nil {
		cmd.Preferences = &service.PreferencesInput{
			DefaultTone:         p.DefaultTone,
			IncludeContext:      p.IncludeContext,
			AutoGenerateSubject: p.AutoGenerateSubject,
			PreferredFormality:  p.PreferredFormality,
			CustomInstructions:  p.CustomInstructions,
		}
	}
	return cmd
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
