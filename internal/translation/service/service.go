// Package service runs a translation: credential resolution, per-company rate
// limiting, provider selection and the local language detection fallback.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	langModels "m8translate/internal/langdetect/models"
	rlModels "m8translate/internal/ratelimit/models"
	sessionModels "m8translate/internal/session/models"
	settingsModels "m8translate/internal/settings/models"
	"m8translate/internal/translation/metrics"
	"m8translate/internal/translation/models"
	"m8translate/internal/translation/prompt"
	"m8translate/internal/translation/provider"
	"m8translate/pkg/domain"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/privacy"
	"m8translate/pkg/requestcontext"
)

const unknownLanguage = "Unknown"

// Limiter is the per-company sliding window.
type Limiter interface {
	AdmitCompany(ctx context.Context, companyUUID string) *rlModels.RateLimitResult
	RecordCompany(ctx context.Context, companyUUID string)
}

// Sessions resolves add-on session tokens.
type Sessions interface {
	Resolve(ctx context.Context, sessionToken string) (*sessionModels.Session, error)
}

// Settings reads company keys and preferences and counts usage.
type Settings interface {
	OpenAIKey(ctx context.Context, companyUUID string) (string, error)
	Preferences(ctx context.Context, companyUUID string) (settingsModels.Preferences, error)
	RecordUsage(ctx context.Context, companyUUID string) error
}

// Verifier checks a ServiceM8 access token against the company.
type Verifier interface {
	VerifyToken(ctx context.Context, accessToken, companyUUID string) error
}

type Detector interface {
	Detect(text string) langModels.Result
}

// Providers selects the translation provider for a company key.
type Providers interface {
	ForKey(apiKey string) (provider.Provider, error)
}

// RateLimitedError is returned when the company exhausted its window. It
// carries the limiter result so the transport can set Retry-After.
type RateLimitedError struct {
	Result *rlModels.RateLimitResult
}

func (e *RateLimitedError) Error() string {
	return "company translation rate limit exceeded"
}

func (e *RateLimitedError) Unwrap() error {
	return dErrors.New(dErrors.CodeRateLimited, "Rate limit exceeded for your company. Please wait before trying again.")
}

type Service struct {
	limiter   Limiter
	sessions  Sessions
	settings  Settings
	verifier  Verifier
	detector  Detector
	providers Providers
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithVerifier enables ServiceM8 token verification before translating.
func WithVerifier(v Verifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

func New(limiter Limiter, sessions Sessions, settings Settings, detector Detector, providers Providers, opts ...Option) (*Service, error) {
	if limiter == nil {
		return nil, errors.New("limiter is required")
	}
	if sessions == nil {
		return nil, errors.New("session resolver is required")
	}
	if settings == nil {
		return nil, errors.New("settings service is required")
	}
	if detector == nil {
		return nil, errors.New("detector is required")
	}
	if providers == nil {
		return nil, errors.New("provider registry is required")
	}

	svc := &Service{
		limiter:   limiter,
		sessions:  sessions,
		settings:  settings,
		detector:  detector,
		providers: providers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc, nil
}

// Translate translates a sanitised text to English for the calling company.
func (s *Service) Translate(ctx context.Context, cmd models.TranslateCommand) (*models.Result, error) {
	start := requestcontext.Now(ctx)

	companyUUID, accessToken, err := s.credentials(ctx, cmd)
	if err != nil {
		s.metrics.IncrementOutcome("rejected", "")
		return nil, err
	}

	if result := s.limiter.AdmitCompany(ctx, companyUUID); !result.Allowed {
		s.metrics.IncrementOutcome("rate_limited", "")
		return nil, &RateLimitedError{Result: result}
	}

	if s.verifier != nil {
		if err := s.verifier.VerifyToken(ctx, accessToken, companyUUID); err != nil {
			s.metrics.IncrementOutcome("rejected", "")
			return nil, err
		}
	}

	p, prefs, err := s.selectProvider(ctx, companyUUID)
	if err != nil {
		return nil, err
	}

	chars := utf8.RuneCountInString(cmd.Text)
	s.metrics.ObserveTextLength(chars)

	callStart := time.Now()
	out, err := p.Translate(ctx, models.ProviderRequest{
		SystemPrompt: prompt.System(prefs),
		Text:         cmd.Text,
	})
	s.metrics.ObserveProviderLatency(p.Name(), time.Since(callStart))
	if err != nil {
		s.metrics.IncrementOutcome("provider_error", p.Name())
		s.logger.ErrorContext(ctx, "translation provider failed",
			"provider", p.Name(),
			"company_uuid", privacy.MaskIdentifier(companyUUID),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "Translation service temporarily unavailable")
	}

	s.limiter.RecordCompany(ctx, companyUUID)
	if err := s.settings.RecordUsage(ctx, companyUUID); err != nil {
		s.logger.WarnContext(ctx, "failed to record usage",
			"company_uuid", privacy.MaskIdentifier(companyUUID),
			"error", err,
		)
	}

	detected := out.DetectedLanguage
	if detected == "" {
		detected = s.detector.Detect(cmd.Text).LanguageOr(unknownLanguage)
	}

	result := &models.Result{
		TranslatedText:   out.TranslatedText,
		EmailSubject:     prompt.TruncateSubject(out.EmailSubject),
		DetectedLanguage: detected,
		Provider:         p.Name(),
		ProcessingTime:   requestcontext.Now(ctx).Sub(start),
	}

	s.metrics.IncrementOutcome("success", p.Name())
	s.logger.InfoContext(ctx, "translation completed",
		"company_uuid", privacy.MaskIdentifier(companyUUID),
		"provider", p.Name(),
		"detected_language", detected,
		"characters", chars,
		"text_fingerprint", privacy.Fingerprint(cmd.Text),
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

// credentials returns the company and access token of the request, resolving
// the session token when no access token was sent.
func (s *Service) credentials(ctx context.Context, cmd models.TranslateCommand) (string, string, error) {
	companyUUID, accessToken := cmd.CompanyUUID, cmd.AccessToken

	if accessToken == "" && cmd.SessionToken != "" {
		session, err := s.sessions.Resolve(ctx, cmd.SessionToken)
		if err != nil {
			return "", "", err
		}
		companyUUID, accessToken = session.CompanyUUID, session.AccessToken
	}

	if cmd.Text == "" || companyUUID == "" || accessToken == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "Missing required fields: text, company_uuid, access_token")
	}

	id, err := domain.ParseCompanyUUID(companyUUID)
	if err != nil {
		return "", "", err
	}
	return id.String(), accessToken, nil
}

func (s *Service) selectProvider(ctx context.Context, companyUUID string) (provider.Provider, settingsModels.Preferences, error) {
	prefs, err := s.settings.Preferences(ctx, companyUUID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load preferences, using defaults",
			"company_uuid", privacy.MaskIdentifier(companyUUID),
			"error", err,
		)
		prefs = settingsModels.DefaultPreferences()
	}

	key, err := s.settings.OpenAIKey(ctx, companyUUID)
	if err != nil {
		s.logger.WarnContext(ctx, "company key unavailable, using fallback provider",
			"company_uuid", privacy.MaskIdentifier(companyUUID),
			"error", err,
		)
		key = ""
	}

	p, err := s.providers.ForKey(key)
	if err != nil {
		if errors.Is(err, provider.ErrNoProvider) {
			s.metrics.IncrementOutcome("provider_error", "")
			return nil, prefs, dErrors.Wrap(err, dErrors.CodeUnavailable, "Translation service not configured")
		}
		return nil, prefs, dErrors.Wrap(err, dErrors.CodeInternal, "failed to select translation provider")
	}
	return p, prefs, nil
}
