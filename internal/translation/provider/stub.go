package provider

import (
	"context"
	"fmt"

	"m8translate/internal/translation/models"
)

// Stub answers without calling an LLM. Detected language is left empty so
// the local detector fills it.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) Name() string { return "stub" }

func (s *Stub) Translate(_ context.Context, req models.ProviderRequest) (*models.ProviderResult, error) {
	return &models.ProviderResult{
		TranslatedText: fmt.Sprintf("[STUB] English translation of: %q", req.Text),
		EmailSubject:   "Service Update - Message Translation",
	}, nil
}
