// Package service issues and resolves add-on sessions. A session token is a
// signed JWT whose jti keys the stored session holding the ServiceM8 access
// token.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"m8translate/internal/session/device"
	"m8translate/internal/session/models"
	"m8translate/internal/session/token"
	"m8translate/pkg/domain"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/privacy"
	"m8translate/pkg/platform/sentinel"
	"m8translate/pkg/requestcontext"
)

// DefaultTTL is the lifetime of an add-on session.
const DefaultTTL = 30 * time.Minute

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CreateCommand carries the credentials the add-on was opened with.
type CreateCommand struct {
	CompanyUUID string
	AccessToken string
	JobUUID     string
	UserAgent   string
}

type Service struct {
	store  Store
	signer *token.Signer
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

func New(store Store, signer *token.Signer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if signer == nil {
		return nil, errors.New("token signer is required")
	}
	svc := &Service{
		store:  store,
		signer: signer,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return svc, nil
}

// Create stores a new session and returns its signed token.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*models.Issued, error) {
	companyUUID, err := domain.ParseCompanyUUID(cmd.CompanyUUID)
	if err != nil {
		return nil, err
	}
	if cmd.AccessToken == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "access_token is required")
	}
	jobUUID, err := domain.ParseJobUUID(cmd.JobUUID)
	if err != nil {
		return nil, err
	}

	info := device.Describe(cmd.UserAgent)
	now := requestcontext.Now(ctx)
	session := models.NewSession(companyUUID.String(), jobUUID.String(), cmd.AccessToken, info.DisplayName, now, s.ttl)

	signed, err := s.signer.Issue(token.AudienceSession, session.ID, session.CompanyUUID, now, session.ExpiresAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session")
	}

	s.logger.InfoContext(ctx, "session created",
		"session_id", privacy.MaskIdentifier(session.ID),
		"company_uuid", privacy.MaskIdentifier(session.CompanyUUID),
		"device", info.DisplayName,
		"mobile", info.Mobile,
		"bot", info.Bot,
		"expires_at", session.ExpiresAt,
	)

	return &models.Issued{Token: signed, Session: session, ExpiresIn: s.ttl}, nil
}

// Resolve returns the live session behind a session token. Expired sessions
// are deleted on read.
func (s *Service) Resolve(ctx context.Context, sessionToken string) (*models.Session, error) {
	if sessionToken == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Missing session token")
	}
	now := requestcontext.Now(ctx)

	claims, err := s.signer.Validate(sessionToken, token.AudienceSession, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "Invalid or expired session")
	}

	session, err := s.store.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired session")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Session service error")
	}

	if session.IsExpired(now) {
		if err := s.store.Delete(ctx, session.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to delete expired session",
				"session_id", privacy.MaskIdentifier(session.ID),
				"error", err,
			)
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired session")
	}
	if session.CompanyUUID != claims.CompanyUUID {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired session")
	}
	return session, nil
}

// Sweep removes sessions expired at now.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	return s.store.DeleteExpired(ctx, now)
}

// RunSweeper deletes expired sessions every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed, err := s.Sweep(ctx, now)
			if err != nil {
				s.logger.WarnContext(ctx, "session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.DebugContext(ctx, "expired sessions removed", "count", removed)
			}
		}
	}
}
