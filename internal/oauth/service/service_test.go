package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"m8translate/internal/oauth/service/mocks"
	"m8translate/internal/platform/config"
	"m8translate/internal/servicem8"
	"m8translate/internal/session/token"
	settingsService "m8translate/internal/settings/service"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

const (
	companyUUID = "3b1c8a4e-2f5d-4c6b-9a7e-1d2f3a4b5c6d"
	otherUUID   = "9f8e7d6c-5b4a-4321-8fed-cba987654321"
)

type OAuthServiceSuite struct {
	suite.Suite
	client  *mocks.MockClient
	grants  *mocks.MockGrants
	signer  *token.Signer
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestOAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(OAuthServiceSuite))
}

func (s *OAuthServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.client = mocks.NewMockClient(ctrl)
	s.grants = mocks.NewMockGrants(ctrl)

	var err error
	s.signer, err = token.NewSigner("test-signing-key-0123456789abcdef", "m8translate")
	s.Require().NoError(err)

	cfg := config.ServiceM8Config{
		ClientID:     "client-123",
		ClientSecret: "secret",
		AuthorizeURL: "https://go.servicem8.com/oauth/authorize",
		Scope:        "job:read customer:read",
		StateTTL:     10 * time.Minute,
	}
	s.service, err = New(s.client, s.grants, s.signer, cfg, "https://translate.example.com/")
	s.Require().NoError(err)

	s.now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *OAuthServiceSuite) state(company string) string {
	raw, err := s.service.AuthorizeURL(s.ctx, company)
	s.Require().NoError(err)
	u, err := url.Parse(raw)
	s.Require().NoError(err)
	return u.Query().Get("state")
}

func (s *OAuthServiceSuite) TestAuthorizeURL() {
	raw, err := s.service.AuthorizeURL(s.ctx, companyUUID)
	s.Require().NoError(err)

	u, err := url.Parse(raw)
	s.Require().NoError(err)
	s.Equal("go.servicem8.com", u.Host)
	s.Equal("/oauth/authorize", u.Path)
	q := u.Query()
	s.Equal("code", q.Get("response_type"))
	s.Equal("client-123", q.Get("client_id"))
	s.Equal("https://translate.example.com/api/oauth/callback", q.Get("redirect_uri"))
	s.Equal("job:read customer:read", q.Get("scope"))

	claims, err := s.signer.Validate(q.Get("state"), token.AudienceOAuthState, s.now)
	s.Require().NoError(err)
	s.Equal(companyUUID, claims.CompanyUUID)
	s.NotEmpty(claims.ID)
}

func (s *OAuthServiceSuite) TestAuthorizeURLRejectsBadCompany() {
	_, err := s.service.AuthorizeURL(s.ctx, "nope")
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *OAuthServiceSuite) TestCallback() {
	state := s.state(companyUUID)
	redirect := "https://translate.example.com/api/oauth/callback"

	s.client.EXPECT().ExchangeCode(gomock.Any(), "auth-code", redirect).Return(&servicem8.TokenGrant{
		AccessToken:  "AT_0123456789abcdefghij",
		RefreshToken: "RT_0123456789",
		ExpiresIn:    3600,
		Scope:        "job:read",
	}, nil)
	s.client.EXPECT().Company(gomock.Any(), "AT_0123456789abcdefghij").
		Return(&servicem8.Company{UUID: companyUUID, Name: "Acme Plumbing"}, nil)
	s.grants.EXPECT().ConnectServiceM8(gomock.Any(), companyUUID, settingsService.GrantCommand{
		AccessToken:  "AT_0123456789abcdefghij",
		RefreshToken: "RT_0123456789",
		ExpiresIn:    time.Hour,
		Scope:        "job:read",
		CompanyName:  "Acme Plumbing",
	}).Return(nil)

	connected, err := s.service.Callback(s.ctx, CallbackCommand{Code: "auth-code", State: state})
	s.Require().NoError(err)
	s.Equal(companyUUID, connected.CompanyUUID)
	s.Equal("Acme Plumbing", connected.CompanyName)
}

func (s *OAuthServiceSuite) TestCallbackWithoutState() {
	s.client.EXPECT().ExchangeCode(gomock.Any(), "auth-code", gomock.Any()).
		Return(&servicem8.TokenGrant{AccessToken: "AT_0123456789abcdefghij", ExpiresIn: 60}, nil)
	s.client.EXPECT().Company(gomock.Any(), gomock.Any()).
		Return(&servicem8.Company{UUID: companyUUID, Name: "Acme"}, nil)
	s.grants.EXPECT().ConnectServiceM8(gomock.Any(), companyUUID, gomock.Any()).Return(nil)

	_, err := s.service.Callback(s.ctx, CallbackCommand{Code: "auth-code"})
	s.NoError(err)
}

func (s *OAuthServiceSuite) TestCallbackErrors() {
	s.Run("provider error", func() {
		_, err := s.service.Callback(s.ctx, CallbackCommand{Error: "access_denied", ErrorDescription: "user cancelled"})
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "access_denied")
	})

	s.Run("missing code", func() {
		_, err := s.service.Callback(s.ctx, CallbackCommand{})
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "Missing authorization code")
	})

	s.Run("tampered state", func() {
		_, err := s.service.Callback(s.ctx, CallbackCommand{Code: "auth-code", State: s.state(companyUUID) + "x"})
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "Invalid state parameter")
	})

	s.Run("expired state", func() {
		state := s.state(companyUUID)
		late := requestcontext.WithTime(context.Background(), s.now.Add(11*time.Minute))
		_, err := s.service.Callback(late, CallbackCommand{Code: "auth-code", State: state})
		s.Contains(err.Error(), "Invalid state parameter")
	})

	s.Run("session token is not a state", func() {
		sessionToken, err := s.signer.Issue(token.AudienceSession, "sess-1", companyUUID, s.now, s.now.Add(time.Minute))
		s.Require().NoError(err)
		_, err = s.service.Callback(s.ctx, CallbackCommand{Code: "auth-code", State: sessionToken})
		s.Contains(err.Error(), "Invalid state parameter")
	})
}

func (s *OAuthServiceSuite) TestCallbackCompanyMismatch() {
	s.client.EXPECT().ExchangeCode(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&servicem8.TokenGrant{AccessToken: "AT_0123456789abcdefghij"}, nil)
	s.client.EXPECT().Company(gomock.Any(), gomock.Any()).
		Return(&servicem8.Company{UUID: otherUUID, Name: "Other"}, nil)
	s.grants.EXPECT().ConnectServiceM8(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Callback(s.ctx, CallbackCommand{Code: "auth-code", State: s.state(companyUUID)})
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *OAuthServiceSuite) TestCallbackExchangeFailure() {
	s.client.EXPECT().ExchangeCode(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnavailable, "ServiceM8 API error"))

	_, err := s.service.Callback(s.ctx, CallbackCommand{Code: "auth-code"})
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))
}
