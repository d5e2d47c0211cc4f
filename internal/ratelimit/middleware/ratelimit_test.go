package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"m8translate/internal/ratelimit/config"
	"m8translate/internal/ratelimit/models"
	"m8translate/internal/ratelimit/service"
	"m8translate/pkg/requestcontext"
	"m8translate/pkg/testutil"
)

type failingLimiter struct{}

func (failingLimiter) CheckIP(context.Context, string, models.EndpointClass) (*models.RateLimitResult, error) {
	return nil, errors.New("store unavailable")
}

type MiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
	now    time.Time
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
}

func (s *MiddlewareSuite) handler(limiter RateLimiter, opts ...Option) http.Handler {
	mw := New(limiter, s.logger, opts...)
	return mw.RateLimit(models.ClassTranslate)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *MiddlewareSuite) request(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "test")
	ctx = requestcontext.WithTime(ctx, s.now)
	return req.WithContext(ctx)
}

func (s *MiddlewareSuite) newService(limit int) *service.Service {
	cfg := config.DefaultConfig()
	cfg.IPLimits[models.ClassTranslate] = limit
	svc, err := service.New(service.WithConfig(cfg), service.WithLogger(s.logger))
	s.Require().NoError(err)
	return svc
}

func (s *MiddlewareSuite) TestAllowsUnderLimitWithHeaders() {
	h := s.handler(s.newService(2))

	rr := testutil.DoRequest(h, s.request("203.0.113.9"))
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("2", rr.Header().Get("X-RateLimit-Limit"))
	s.Equal("1", rr.Header().Get("X-RateLimit-Remaining"))
	s.NotEmpty(rr.Header().Get("X-RateLimit-Reset"))
}

func (s *MiddlewareSuite) TestRejectsOverLimit() {
	h := s.handler(s.newService(2))
	testutil.DoRequest(h, s.request("203.0.113.9"))
	testutil.DoRequest(h, s.request("203.0.113.9"))

	rr := testutil.DoRequest(h, s.request("203.0.113.9"))
	s.Equal(http.StatusTooManyRequests, rr.Code)
	s.Equal("60", rr.Header().Get("Retry-After"))

	body := testutil.UnmarshalResponse[models.RateLimitExceededResponse](s.T(), rr)
	s.Equal("rate_limit_exceeded", body.Error)
	s.Equal(60, body.RetryAfter)

	s.Run("other addresses are unaffected", func() {
		rr := testutil.DoRequest(h, s.request("198.51.100.4"))
		s.Equal(http.StatusOK, rr.Code)
	})
}

func (s *MiddlewareSuite) TestFailsOpenOnLimiterError() {
	rr := testutil.DoRequest(s.handler(failingLimiter{}), s.request("203.0.113.9"))
	s.Equal(http.StatusOK, rr.Code)
}

func (s *MiddlewareSuite) TestDisabled() {
	h := s.handler(s.newService(1), WithDisabled(true))
	for range 3 {
		rr := testutil.DoRequest(h, s.request("203.0.113.9"))
		s.Equal(http.StatusOK, rr.Code)
		s.Empty(rr.Header().Get("X-RateLimit-Limit"))
	}
}
