package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"m8translate/internal/session/store"
	"m8translate/internal/session/token"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/requestcontext"
)

const (
	companyUUID = "3b1c8a4e-2f5d-4c6b-9a7e-1d2f3a4b5c6d"
	jobUUID     = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
	accessToken = "AT_abcdefghijklmnopqrstuvwxyz"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemorySessionStore
	service *Service
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	signer, err := token.NewSigner("test-signing-key-0123456789abcdef", "m8translate")
	s.Require().NoError(err)
	s.store = store.NewInMemory()
	s.service, err = New(s.store, signer, WithTTL(30*time.Minute))
	s.Require().NoError(err)
	s.now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *ServiceSuite) create() string {
	issued, err := s.service.Create(s.at(s.now), CreateCommand{
		CompanyUUID: companyUUID,
		AccessToken: accessToken,
		JobUUID:     jobUUID,
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	})
	s.Require().NoError(err)
	return issued.Token
}

func (s *ServiceSuite) TestCreate() {
	s.Run("issues token and stores session", func() {
		issued, err := s.service.Create(s.at(s.now), CreateCommand{
			CompanyUUID: companyUUID,
			AccessToken: accessToken,
			JobUUID:     jobUUID,
		})
		s.Require().NoError(err)
		s.NotEmpty(issued.Token)
		s.Equal(30*time.Minute, issued.ExpiresIn)
		s.Equal(s.now.Add(30*time.Minute), issued.Session.ExpiresAt)
		s.NotContains(issued.Token, accessToken)

		stored, err := s.store.FindByID(context.Background(), issued.Session.ID)
		s.Require().NoError(err)
		s.Equal(accessToken, stored.AccessToken)
		s.Equal("Unknown Device", stored.Device)
	})

	s.Run("rejects invalid company uuid", func() {
		_, err := s.service.Create(s.at(s.now), CreateCommand{CompanyUUID: "abc", AccessToken: accessToken})
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects missing access token", func() {
		_, err := s.service.Create(s.at(s.now), CreateCommand{CompanyUUID: companyUUID})
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("rejects invalid job uuid", func() {
		_, err := s.service.Create(s.at(s.now), CreateCommand{CompanyUUID: companyUUID, AccessToken: accessToken, JobUUID: "job"})
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestResolve() {
	s.Run("returns live session", func() {
		tok := s.create()
		session, err := s.service.Resolve(s.at(s.now.Add(29*time.Minute)), tok)
		s.Require().NoError(err)
		s.Equal(companyUUID, session.CompanyUUID)
		s.Equal(jobUUID, session.JobUUID)
		s.Equal(accessToken, session.AccessToken)
		s.Contains(session.Device, "Firefox")
	})

	s.Run("missing token is a validation error", func() {
		_, err := s.service.Resolve(s.at(s.now), "")
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("garbage token is unauthorized", func() {
		_, err := s.service.Resolve(s.at(s.now), "not-a-token")
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("expired token is unauthorized", func() {
		tok := s.create()
		_, err := s.service.Resolve(s.at(s.now.Add(31*time.Minute)), tok)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("deleted session is unauthorized", func() {
		tok := s.create()
		removed, err := s.store.DeleteExpired(context.Background(), s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Positive(removed)

		_, err = s.service.Resolve(s.at(s.now), tok)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestResolveDeletesExpiredSession() {
	short, err := New(s.store, mustSigner(s), WithTTL(time.Minute))
	s.Require().NoError(err)
	issued, err := short.Create(s.at(s.now), CreateCommand{CompanyUUID: companyUUID, AccessToken: accessToken})
	s.Require().NoError(err)

	// The token outlives the stored session when the store copy carries an
	// earlier deadline.
	stored, err := s.store.FindByID(context.Background(), issued.Session.ID)
	s.Require().NoError(err)
	stored.ExpiresAt = s.now.Add(10 * time.Second)
	s.Require().NoError(s.store.Save(context.Background(), stored))

	_, err = short.Resolve(s.at(s.now.Add(30*time.Second)), issued.Token)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	s.Equal(0, s.store.Len())
}

func (s *ServiceSuite) TestSweep() {
	s.create()
	s.create()

	removed, err := s.service.Sweep(context.Background(), s.now.Add(10*time.Minute))
	s.Require().NoError(err)
	s.Zero(removed)

	removed, err = s.service.Sweep(context.Background(), s.now.Add(30*time.Minute))
	s.Require().NoError(err)
	s.Equal(2, removed)
}

func (s *ServiceSuite) TestRunSweeperStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.service.RunSweeper(ctx, 10*time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("sweeper did not stop")
	}
}

func (s *ServiceSuite) TestNewRequiresDependencies() {
	_, err := New(nil, mustSigner(s))
	s.Error(err)
	_, err = New(s.store, nil)
	s.Error(err)
	_, err = New(s.store, mustSigner(s), WithTTL(0))
	s.Error(err)
}

func mustSigner(s *ServiceSuite) *token.Signer {
	signer, err := token.NewSigner("test-signing-key-0123456789abcdef", "m8translate")
	s.Require().NoError(err)
	return signer
}
