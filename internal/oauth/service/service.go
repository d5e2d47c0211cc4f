// Package service runs the ServiceM8 OAuth authorization code flow: it signs
// the state, exchanges the code and stores the sealed grant on the company
// settings.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"m8translate/internal/platform/config"
	"m8translate/internal/servicem8"
	"m8translate/internal/session/token"
	settingsService "m8translate/internal/settings/service"
	"m8translate/pkg/domain"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/privacy"
	"m8translate/pkg/requestcontext"
)

// Client is the ServiceM8 API surface used by the flow.
type Client interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*servicem8.TokenGrant, error)
	Company(ctx context.Context, accessToken string) (*servicem8.Company, error)
}

// Grants stores the authorization on the company settings.
type Grants interface {
	ConnectServiceM8(ctx context.Context, companyUUID string, cmd settingsService.GrantCommand) error
}

// CallbackCommand carries the parameters ServiceM8 sends to the callback.
type CallbackCommand struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Connected describes a completed authorization.
type Connected struct {
	CompanyUUID string
	CompanyName string
	Scope       string
}

type Service struct {
	client       Client
	grants       Grants
	signer       *token.Signer
	authorizeURL string
	clientID     string
	scope        string
	redirectURI  string
	stateTTL     time.Duration
	logger       *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(client Client, grants Grants, signer *token.Signer, cfg config.ServiceM8Config, publicURL string, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("servicem8 client is required")
	}
	if grants == nil {
		return nil, errors.New("grant store is required")
	}
	if signer == nil {
		return nil, errors.New("state signer is required")
	}

	svc := &Service{
		client:       client,
		grants:       grants,
		signer:       signer,
		authorizeURL: cfg.AuthorizeURL,
		clientID:     cfg.ClientID,
		scope:        cfg.Scope,
		redirectURI:  cfg.RedirectURI(publicURL),
		stateTTL:     cfg.StateTTL,
		logger:       slog.Default(),
	}
	if svc.stateTTL <= 0 {
		svc.stateTTL = 10 * time.Minute
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc, nil
}

// AuthorizeURL returns the ServiceM8 consent URL with a signed state bound to
// companyUUID. An empty company is allowed; the callback then trusts the
// company reported by ServiceM8.
func (s *Service) AuthorizeURL(ctx context.Context, companyUUID string) (string, error) {
	if s.clientID == "" {
		return "", dErrors.New(dErrors.CodeUnavailable, "ServiceM8 OAuth is not configured")
	}
	if companyUUID != "" {
		id, err := domain.ParseCompanyUUID(companyUUID)
		if err != nil {
			return "", err
		}
		companyUUID = id.String()
	}

	now := requestcontext.Now(ctx)
	state, err := s.signer.Issue(token.AudienceOAuthState, uuid.NewString(), companyUUID, now, now.Add(s.stateTTL))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign state")
	}

	u, err := url.Parse(s.authorizeURL)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "invalid authorize URL")
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", s.clientID)
	q.Set("redirect_uri", s.redirectURI)
	q.Set("scope", s.scope)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Callback completes the flow. A state is optional, but when present it must
// be valid and match the company ServiceM8 reports.
func (s *Service) Callback(ctx context.Context, cmd CallbackCommand) (*Connected, error) {
	if cmd.Error != "" {
		s.logger.WarnContext(ctx, "oauth authorization denied",
			"error", cmd.Error,
			"error_description", cmd.ErrorDescription,
		)
		msg := "Authorization failed: " + cmd.Error
		if cmd.ErrorDescription != "" {
			msg += " (" + cmd.ErrorDescription + ")"
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, msg)
	}
	if cmd.Code == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Missing authorization code")
	}

	var stateCompany string
	if cmd.State != "" {
		claims, err := s.signer.Validate(cmd.State, token.AudienceOAuthState, requestcontext.Now(ctx))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid state parameter")
		}
		stateCompany = claims.CompanyUUID
	}

	grant, err := s.client.ExchangeCode(ctx, cmd.Code, s.redirectURI)
	if err != nil {
		s.logger.ErrorContext(ctx, "oauth code exchange failed", "error", err)
		return nil, err
	}
	company, err := s.client.Company(ctx, grant.AccessToken)
	if err != nil {
		s.logger.ErrorContext(ctx, "oauth company lookup failed", "error", err)
		return nil, err
	}

	companyID, err := domain.ParseCompanyUUID(company.UUID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "ServiceM8 returned an invalid company")
	}
	if stateCompany != "" && !strings.EqualFold(stateCompany, companyID.String()) {
		s.logger.WarnContext(ctx, "oauth state company mismatch",
			"company_uuid", privacy.MaskIdentifier(companyID.String()),
		)
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid state parameter")
	}

	err = s.grants.ConnectServiceM8(ctx, companyID.String(), settingsService.GrantCommand{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresIn:    time.Duration(grant.ExpiresIn) * time.Second,
		Scope:        grant.Scope,
		CompanyName:  company.Name,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "oauth authorization successful",
		"company_uuid", privacy.MaskIdentifier(companyID.String()),
		"company_name", company.Name,
		"scope", grant.Scope,
	)
	return &Connected{CompanyUUID: companyID.String(), CompanyName: company.Name, Scope: grant.Scope}, nil
}
