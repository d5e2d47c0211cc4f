package domain

import (
	"strings"

	dErrors "m8translate/pkg/domain-errors"
)

// MaxCustomInstructions bounds the free-text addition to the system prompt.
const MaxCustomInstructions = 500

// Tone is the voice the translated customer message is written in.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFormal       Tone = "formal"
	ToneFriendly     Tone = "friendly"
)

var validTones = []Tone{ToneProfessional, ToneCasual, ToneFormal, ToneFriendly}

// Formality is the register of the translated message.
type Formality string

const (
	FormalityBusiness Formality = "business"
	FormalityCasual   Formality = "casual"
	FormalityFormal   Formality = "formal"
)

var validFormalities = []Formality{FormalityBusiness, FormalityCasual, FormalityFormal}

// ParseTone constructs a Tone from external input.
//
// Errors: CodeValidation when the value is not one of the supported tones.
func ParseTone(s string) (Tone, error) {
	t := Tone(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation,
			"Invalid default_tone. Must be one of: "+joinValues(validTones))
	}
	return t, nil
}

// IsValid checks if the tone is one of the supported values.
func (t Tone) IsValid() bool {
	for _, v := range validTones {
		if t == v {
			return true
		}
	}
	return false
}

// ParseFormality constructs a Formality from external input.
//
// Errors: CodeValidation when the value is not one of the supported values.
func ParseFormality(s string) (Formality, error) {
	f := Formality(s)
	if !f.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation,
			"Invalid preferred_formality. Must be one of: "+joinValues(validFormalities))
	}
	return f, nil
}

// IsValid checks if the formality is one of the supported values.
func (f Formality) IsValid() bool {
	for _, v := range validFormalities {
		if f == v {
			return true
		}
	}
	return false
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
