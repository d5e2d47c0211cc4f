// Package service manages per-company settings: the company's own OpenAI key,
// translation preferences, usage counters and the ServiceM8 OAuth grant.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	ratelimitModels "m8translate/internal/ratelimit/models"
	"m8translate/internal/secrets"
	"m8translate/internal/settings/models"
	"m8translate/internal/settings/store"
	"m8translate/pkg/domain"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/privacy"
	"m8translate/pkg/platform/sentinel"
	"m8translate/pkg/requestcontext"
)

// Store persists settings.
type Store interface {
	Get(ctx context.Context, companyUUID string) (*models.Settings, error)
	Update(ctx context.Context, companyUUID string, init func() *models.Settings, fn store.MutateFunc) (*models.Settings, error)
}

// Sealer encrypts credentials at rest.
type Sealer interface {
	Seal(plaintext string) (*secrets.Sealed, error)
	Open(sealed *secrets.Sealed) (string, error)
}

// KeyValidator checks an OpenAI key against the provider.
type KeyValidator interface {
	ValidateKey(ctx context.Context, apiKey string) error
}

// UsageReader exposes the live per-company translation window.
type UsageReader interface {
	CompanyUsage(ctx context.Context, companyUUID string) ratelimitModels.Usage
}

// PreferencesInput is a partial preferences update. Nil fields are kept.
type PreferencesInput struct {
	DefaultTone         *string
	IncludeContext      *bool
	AutoGenerateSubject *bool
	PreferredFormality  *string
	CustomInstructions  *string
}

// UpdateCommand carries a settings update. An empty key leaves the stored key
// untouched.
type UpdateCommand struct {
	OpenAIAPIKey string
	Preferences  *PreferencesInput
}

// GrantCommand carries a completed ServiceM8 OAuth exchange.
type GrantCommand struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	Scope        string
	CompanyName  string
}

type Service struct {
	store     Store
	sealer    Sealer
	validator KeyValidator
	usage     UsageReader
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithKeyValidator enables provider-side validation of submitted OpenAI keys.
func WithKeyValidator(v KeyValidator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithUsageReader enables rate_limit_info in the settings view.
func WithUsageReader(u UsageReader) Option {
	return func(s *Service) {
		s.usage = u
	}
}

func New(store Store, sealer Sealer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("settings store is required")
	}
	if sealer == nil {
		return nil, errors.New("sealer is required")
	}
	svc := &Service{
		store:  store,
		sealer: sealer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Get returns the stored settings or the defaults.
func (s *Service) Get(ctx context.Context, companyUUID string) (*models.Settings, error) {
	settings, err := s.store.Get(ctx, companyUUID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.NewSettings(companyUUID, requestcontext.Now(ctx)), nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to retrieve settings")
	}
	return settings, nil
}

// View returns the safe settings view with the live rate limit window.
func (s *Service) View(ctx context.Context, companyUUID string) (*models.SettingsResponse, error) {
	settings, err := s.Get(ctx, companyUUID)
	if err != nil {
		return nil, err
	}
	var info models.RateLimitInfo
	if s.usage != nil {
		usage := s.usage.CompanyUsage(ctx, companyUUID)
		info = models.RateLimitInfo{
			CurrentWindowRequests: usage.Current,
			MaxRequestsPerMinute:  usage.Max,
			ResetTime:             usage.ResetAt,
		}
	}
	return models.ToSettingsResponse(settings, info), nil
}

// Update validates and stores a settings change.
func (s *Service) Update(ctx context.Context, companyUUID string, cmd UpdateCommand) (*models.Settings, error) {
	if cmd.Preferences != nil {
		if err := validatePreferences(cmd.Preferences); err != nil {
			return nil, err
		}
	}

	var sealed *secrets.Sealed
	if cmd.OpenAIAPIKey != "" {
		if s.validator != nil {
			if err := s.validator.ValidateKey(ctx, cmd.OpenAIAPIKey); err != nil {
				s.logger.WarnContext(ctx, "openai key rejected",
					"company_uuid", privacy.MaskIdentifier(companyUUID),
					"error", err,
				)
				return nil, dErrors.Wrap(err, dErrors.CodeValidation, "Invalid OpenAI API key. Please check your key and try again.")
			}
		}
		var err error
		if sealed, err = s.sealer.Seal(cmd.OpenAIAPIKey); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update settings")
		}
	}

	now := requestcontext.Now(ctx)
	updated, err := s.store.Update(ctx, companyUUID, s.initFor(ctx, companyUUID), func(st *models.Settings) error {
		if sealed != nil {
			st.OpenAIKey = sealed
		}
		if cmd.Preferences != nil {
			applyPreferences(&st.Preferences, cmd.Preferences)
		}
		st.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update settings")
	}

	s.logger.InfoContext(ctx, "settings updated",
		"company_uuid", privacy.MaskIdentifier(companyUUID),
		"has_openai_key", sealed != nil,
		"preferences_updated", cmd.Preferences != nil,
	)
	return updated, nil
}

// OpenAIKey returns the company's decrypted key, or "" when none is stored.
func (s *Service) OpenAIKey(ctx context.Context, companyUUID string) (string, error) {
	settings, err := s.Get(ctx, companyUUID)
	if err != nil {
		return "", err
	}
	if !settings.HasOpenAIKey() {
		return "", nil
	}
	key, err := s.sealer.Open(settings.OpenAIKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to unseal openai key",
			"company_uuid", privacy.MaskIdentifier(companyUUID),
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "Failed to decrypt API key")
	}
	return key, nil
}

// Preferences returns the company's translation preferences.
func (s *Service) Preferences(ctx context.Context, companyUUID string) (models.Preferences, error) {
	settings, err := s.Get(ctx, companyUUID)
	if err != nil {
		return models.DefaultPreferences(), err
	}
	return settings.Preferences, nil
}

// RecordUsage counts one completed translation.
func (s *Service) RecordUsage(ctx context.Context, companyUUID string) error {
	now := requestcontext.Now(ctx)
	_, err := s.store.Update(ctx, companyUUID, s.initFor(ctx, companyUUID), func(st *models.Settings) error {
		st.RecordUsage(now)
		return nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record usage")
	}
	return nil
}

// ConnectServiceM8 seals and stores an OAuth grant for the company.
func (s *Service) ConnectServiceM8(ctx context.Context, companyUUID string, cmd GrantCommand) error {
	if cmd.AccessToken == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "access token is required")
	}
	access, err := s.sealer.Seal(cmd.AccessToken)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal access token")
	}
	var refresh *secrets.Sealed
	if cmd.RefreshToken != "" {
		if refresh, err = s.sealer.Seal(cmd.RefreshToken); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal refresh token")
		}
	}

	now := requestcontext.Now(ctx)
	_, err = s.store.Update(ctx, companyUUID, s.initFor(ctx, companyUUID), func(st *models.Settings) error {
		st.ServiceM8 = &models.OAuthGrant{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    now.Add(cmd.ExpiresIn),
			Scope:        cmd.Scope,
			CompanyName:  cmd.CompanyName,
			ConnectedAt:  now,
		}
		st.UpdatedAt = now
		return nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store ServiceM8 authorization")
	}
	return nil
}

func (s *Service) initFor(ctx context.Context, companyUUID string) func() *models.Settings {
	return func() *models.Settings {
		return models.NewSettings(companyUUID, requestcontext.Now(ctx))
	}
}

func validatePreferences(in *PreferencesInput) error {
	if in.DefaultTone != nil && *in.DefaultTone != "" {
		if _, err := domain.ParseTone(*in.DefaultTone); err != nil {
			return err
		}
	}
	if in.PreferredFormality != nil && *in.PreferredFormality != "" {
		if _, err := domain.ParseFormality(*in.PreferredFormality); err != nil {
			return err
		}
	}
	if in.CustomInstructions != nil && utf8.RuneCountInString(*in.CustomInstructions) > domain.MaxCustomInstructions {
		return dErrors.New(dErrors.CodeValidation, "Custom instructions must be 500 characters or less")
	}
	return nil
}

func applyPreferences(p *models.Preferences, in *PreferencesInput) {
	if in.DefaultTone != nil && *in.DefaultTone != "" {
		p.DefaultTone = domain.Tone(*in.DefaultTone)
	}
	if in.IncludeContext != nil {
		p.IncludeContext = *in.IncludeContext
	}
	if in.AutoGenerateSubject != nil {
		p.AutoGenerateSubject = *in.AutoGenerateSubject
	}
	if in.PreferredFormality != nil && *in.PreferredFormality != "" {
		p.PreferredFormality = domain.Formality(*in.PreferredFormality)
	}
	if in.CustomInstructions != nil {
		p.CustomInstructions = *in.CustomInstructions
	}
}
