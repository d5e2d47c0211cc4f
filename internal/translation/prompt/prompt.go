// Package prompt builds the LLM system prompt and parses the JSON answer.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	settingsModels "m8translate/internal/settings/models"
	"m8translate/internal/translation/models"
)

// ErrInvalidResponse is returned when the provider answer is not the
// expected JSON object.
var ErrInvalidResponse = errors.New("invalid translation response format")

const basePrompt = `You are a professional business translator specializing in ServiceM8 field service communications.

Your tasks:
1. Detect the language of the input text
2. Translate to natural, business-appropriate English
3. Generate a professional email subject based on the content (max 50 characters)

Guidelines:
- Use polite, professional tone suitable for business communication
- Preserve the original meaning and context
- For service-related messages, maintain technical accuracy
- Email subjects should follow format: "Service Update - [brief description]"`

const responseContract = `Respond ONLY in valid JSON format:
{
  "detected_language": "Language Name",
  "translated_text": "Professional English translation",
  "email_subject": "Professional Email Subject"
}`

// System returns the system prompt for a company's preferences.
func System(prefs settingsModels.Preferences) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	var extra []string
	if prefs.DefaultTone != "" {
		extra = append(extra, fmt.Sprintf("- Write the translation in a %s tone", prefs.DefaultTone))
	}
	if prefs.PreferredFormality != "" {
		extra = append(extra, fmt.Sprintf("- Use %s formality", prefs.PreferredFormality))
	}
	if !prefs.IncludeContext {
		extra = append(extra, "- Translate literally without adding context")
	}
	if !prefs.AutoGenerateSubject {
		extra = append(extra, `- Use "Service Update" as the email subject`)
	}
	if instructions := strings.TrimSpace(prefs.CustomInstructions); instructions != "" {
		extra = append(extra, "- "+instructions)
	}
	if len(extra) > 0 {
		b.WriteString("\n\nCompany preferences:\n")
		b.WriteString(strings.Join(extra, "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(responseContract)
	return b.String()
}

// Parse decodes a provider answer. Translated text and subject are required;
// a missing detected language is left empty for the caller to fill.
func Parse(content string) (*models.ProviderResult, error) {
	content = stripCodeFence(strings.TrimSpace(content))
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}
	var result models.ProviderResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if result.TranslatedText == "" || result.EmailSubject == "" {
		return nil, fmt.Errorf("%w: missing fields", ErrInvalidResponse)
	}
	result.EmailSubject = TruncateSubject(result.EmailSubject)
	return &result, nil
}

// TruncateSubject caps a subject at 50 runes, replacing the tail with "...".
func TruncateSubject(subject string) string {
	if utf8.RuneCountInString(subject) <= models.MaxSubjectLength {
		return subject
	}
	runes := []rune(subject)
	return string(runes[:models.MaxSubjectLength-3]) + "..."
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
