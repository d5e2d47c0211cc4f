package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"m8translate/internal/ratelimit/config"
	"m8translate/internal/ratelimit/metrics"
	"m8translate/internal/ratelimit/models"
	"m8translate/internal/ratelimit/store/window"
	"m8translate/pkg/platform/privacy"
	"m8translate/pkg/requestcontext"
)

const (
	scopeCompany = "company"
	scopeIP      = "ip"
)

// Service owns one sliding-window store per limit: translations per company
// and requests per client IP for each endpoint class.
type Service struct {
	company *window.Store
	ip      map[models.EndpointClass]*window.Store
	logger  *slog.Logger
	config  *config.Config
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(opts ...Option) (*Service, error) {
	svc := &Service{
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.config == nil {
		return nil, errors.New("rate limit config is required")
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	companyLimit, err := models.NewLimit(svc.config.TranslatePerCompany, svc.config.Window)
	if err != nil {
		return nil, err
	}
	svc.company = window.New(companyLimit, window.WithMaxKeys(svc.config.MaxKeys))

	svc.ip = make(map[models.EndpointClass]*window.Store, len(svc.config.IPLimits))
	for class := range svc.config.IPLimits {
		limit, ok := svc.config.GetIPLimit(class)
		if !ok {
			return nil, errors.New("invalid per-IP limit for class " + string(class))
		}
		svc.ip[class] = window.New(limit, window.WithMaxKeys(svc.config.MaxKeys))
	}

	return svc, nil
}

// CheckIP admits and records a request from ip on class in one step.
func (s *Service) CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error) {
	store, ok := s.ip[class]
	if !ok {
		// Default-deny: no limit configured for this class
		s.logger.WarnContext(ctx, "rate limit config missing",
			"identifier", privacy.AnonymizeIP(ip),
			"endpoint_class", class,
		)
		return &models.RateLimitResult{
			Allowed:    false,
			ResetAt:    requestcontext.Now(ctx).Add(time.Minute),
			RetryAfter: 60,
		}, nil
	}

	result := store.TryAdmit(models.IPKey(class, ip), requestcontext.Now(ctx))
	s.observe(ctx, scopeIP+":"+string(class), store, result, privacy.AnonymizeIP(ip))
	return &result, nil
}

// AdmitCompany reports whether the company may start another translation.
// Nothing is recorded; call RecordCompany after the translation succeeded.
func (s *Service) AdmitCompany(ctx context.Context, companyUUID string) *models.RateLimitResult {
	result := s.company.Admit(models.CompanyKey(companyUUID), requestcontext.Now(ctx))
	s.observe(ctx, scopeCompany, s.company, result, privacy.MaskIdentifier(companyUUID))
	return &result
}

// RecordCompany counts a completed translation against the company.
func (s *Service) RecordCompany(ctx context.Context, companyUUID string) {
	s.company.Record(models.CompanyKey(companyUUID), requestcontext.Now(ctx))
	s.metrics.SetTrackedKeys(scopeCompany, s.company.Len())
}

// CompanyUsage returns the live window of the company for display.
func (s *Service) CompanyUsage(ctx context.Context, companyUUID string) models.Usage {
	return s.company.Usage(models.CompanyKey(companyUUID), requestcontext.Now(ctx))
}

// Reset clears the windows addressed by req and returns how many windows
// were cleared.
func (s *Service) Reset(ctx context.Context, req *models.ResetRateLimitRequest) int {
	var cleared int
	switch req.Scope {
	case models.ResetScopeCompany:
		s.company.Reset(models.CompanyKey(req.Identifier))
		s.metrics.SetTrackedKeys(scopeCompany, s.company.Len())
		cleared = 1
	case models.ResetScopeIP:
		for class, store := range s.ip {
			if req.Class != "" && req.Class != class {
				continue
			}
			store.Reset(models.IPKey(class, req.Identifier))
			s.metrics.SetTrackedKeys(scopeIP+":"+string(class), store.Len())
			cleared++
		}
	}

	identifier := privacy.MaskIdentifier(req.Identifier)
	if req.Scope == models.ResetScopeIP {
		identifier = privacy.AnonymizeIP(req.Identifier)
	}
	s.logger.InfoContext(ctx, "rate limit reset",
		"scope", req.Scope,
		"identifier", identifier,
		"class", req.Class,
		"cleared", cleared,
		"request_id", requestcontext.RequestID(ctx),
	)
	return cleared
}

// Sweep drops empty windows from every store and returns the number of keys
// removed.
func (s *Service) Sweep(now time.Time) int {
	removed := s.company.Sweep(now)
	s.metrics.AddSweptKeys(scopeCompany, removed)
	s.metrics.SetTrackedKeys(scopeCompany, s.company.Len())
	for class, store := range s.ip {
		n := store.Sweep(now)
		scope := scopeIP + ":" + string(class)
		s.metrics.AddSweptKeys(scope, n)
		s.metrics.SetTrackedKeys(scope, store.Len())
		removed += n
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = s.config.SweepInterval
	}
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				s.logger.Debug("rate limit windows swept", "removed", removed)
			}
		}
	}
}

func (s *Service) observe(ctx context.Context, scope string, store *window.Store, result models.RateLimitResult, identifier string) {
	s.metrics.IncrementDecision(scope, result.Allowed)
	s.metrics.SetTrackedKeys(scope, store.Len())
	if !result.Allowed {
		s.logger.InfoContext(ctx, "rate limit exceeded",
			"scope", scope,
			"identifier", identifier,
			"limit", result.Limit,
			"retry_after", result.RetryAfter,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
