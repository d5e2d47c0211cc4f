// Package servicem8 talks to the ServiceM8 REST API: the OAuth token
// endpoint and the company lookup used to verify access tokens.
package servicem8

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"m8translate/internal/platform/config"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/circuit"
	"m8translate/pkg/platform/privacy"
	"m8translate/pkg/platform/sentinel"
)

const (
	tracerName = "m8translate/servicem8"

	accessTokenPrefix    = "AT_"
	minAccessTokenLength = 20
	maxErrorBodyBytes    = 4 << 10
)

// TokenGrant is the OAuth token response.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// Company is the subset of /v1/company.json the add-on reads.
type Company struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
	tracer       trace.Tracer
	breaker      *circuit.Breaker
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithBreaker lets token verification fall back to the shape check while
// ServiceM8 keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func New(cfg config.ServiceM8Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("servicem8 base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidTokenShape reports whether token looks like a ServiceM8 access token.
func ValidTokenShape(token string) bool {
	return len(token) >= minAccessTokenLength && strings.HasPrefix(token, accessTokenPrefix)
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenGrant, error) {
	ctx, span := c.tracer.Start(ctx, "servicem8.exchange_code", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if c.clientID == "" || c.clientSecret == "" {
		err := dErrors.New(dErrors.CodeUnavailable, "ServiceM8 OAuth is not configured")
		recordError(span, err)
		return nil, err
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {redirectURI},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var grant TokenGrant
	if err := c.do(req, span, &grant); err != nil {
		return nil, err
	}
	if grant.AccessToken == "" {
		err := dErrors.New(dErrors.CodeUnavailable, "No access token received from ServiceM8")
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("servicem8.scope", grant.Scope))
	return &grant, nil
}

// Company fetches the company the access token belongs to.
func (c *Client) Company(ctx context.Context, accessToken string) (*Company, error) {
	ctx, span := c.tracer.Start(ctx, "servicem8.company", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/company.json", nil)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("build company request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	var company Company
	if err := c.do(req, span, &company); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("servicem8.company", privacy.MaskIdentifier(company.UUID)))
	return &company, nil
}

// VerifyToken checks that accessToken is well formed and belongs to
// companyUUID. With a breaker configured, an open circuit accepts well formed
// tokens when ServiceM8 is unavailable.
func (c *Client) VerifyToken(ctx context.Context, accessToken, companyUUID string) error {
	if !ValidTokenShape(accessToken) {
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid ServiceM8 access token")
	}
	company, err := c.Company(ctx, accessToken)
	if err != nil {
		if c.breaker != nil && dErrors.Is(err, dErrors.CodeUnavailable) {
			useFallback, change := c.breaker.RecordFailure()
			if change.Opened {
				c.logger.WarnContext(ctx, "servicem8 circuit opened, verifying token shape only", "breaker", c.breaker.Name())
			}
			if useFallback {
				return nil
			}
		}
		return err
	}
	if c.breaker != nil {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "servicem8 circuit closed", "breaker", c.breaker.Name())
		}
	}
	if !strings.EqualFold(company.UUID, companyUUID) {
		c.logger.WarnContext(ctx, "servicem8 token company mismatch",
			"company_uuid", privacy.MaskIdentifier(companyUUID),
		)
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid ServiceM8 access token")
	}
	return nil
}

func (c *Client) do(req *http.Request, span trace.Span, out any) error {
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.URL.Path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordError(span, err)
		return dErrors.Wrap(errors.Join(sentinel.ErrUnavailable, err), dErrors.CodeUnavailable, "ServiceM8 is unavailable")
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.WarnContext(req.Context(), "servicem8 request failed",
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"body_bytes", len(body),
		)
		err := statusError(resp.StatusCode)
		recordError(span, err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		recordError(span, err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "invalid response from ServiceM8")
	}
	return nil
}

func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid ServiceM8 access token")
	case status == http.StatusBadRequest:
		return dErrors.New(dErrors.CodeBadRequest, "ServiceM8 rejected the request")
	default:
		return dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable, fmt.Sprintf("ServiceM8 returned status %d", status))
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
