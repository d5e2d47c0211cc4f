// Package provider holds the LLM translation providers: the OpenAI chat
// completion provider and a stub used when no key is configured.
package provider

import (
	"context"
	"errors"
	"log/slog"

	"m8translate/internal/platform/config"
	"m8translate/internal/translation/models"
)

// Provider translates one sanitised text.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req models.ProviderRequest) (*models.ProviderResult, error)
}

// ErrNoProvider is returned when neither a company key nor a deployment key
// is configured and the stub is disabled.
var ErrNoProvider = errors.New("no translation provider configured")

// Registry picks the provider for a request: the company's own key first,
// then the deployment key, then the stub.
type Registry struct {
	cfg       config.OpenAIConfig
	allowStub bool
	fallback  Provider
	logger    *slog.Logger
}

type RegistryOption func(*Registry)

func WithStub(allow bool) RegistryOption {
	return func(r *Registry) {
		r.allowStub = allow
	}
}

func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(cfg config.OpenAIConfig, opts ...RegistryOption) *Registry {
	r := &Registry{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	switch {
	case cfg.APIKey != "":
		r.fallback = NewOpenAI(cfg, cfg.APIKey)
	case r.allowStub:
		r.logger.Warn("OpenAI API key not configured, using stub translation provider")
		r.fallback = NewStub()
	}
	return r
}

// ForKey returns a provider for apiKey, or the deployment fallback when
// apiKey is empty.
func (r *Registry) ForKey(apiKey string) (Provider, error) {
	if apiKey != "" {
		return NewOpenAI(r.cfg, apiKey), nil
	}
	if r.fallback == nil {
		return nil, ErrNoProvider
	}
	return r.fallback, nil
}
