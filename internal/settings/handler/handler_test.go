package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"m8translate/internal/secrets"
	"m8translate/internal/settings/handler/mocks"
	"m8translate/internal/settings/models"
	"m8translate/internal/settings/service"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/settings-mocks.go -package=mocks Service

const companyUUID = "3b1c8a4e-2f5d-4c6b-9a7e-1d2f3a4b5c6d"

type SettingsHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	now     time.Time
}

func TestSettingsHandlerSuite(t *testing.T) {
	suite.Run(t, new(SettingsHandlerSuite))
}

func (s *SettingsHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
	s.now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *SettingsHandlerSuite) authed(method string, body any) *http.Request {
	req := testutil.NewJSONRequest(s.T(), method, "/api/settings", body)
	return testutil.WithSession(req, companyUUID, "sess-1", "")
}

func (s *SettingsHandlerSuite) TestGet() {
	s.service.EXPECT().View(gomock.Any(), companyUUID).Return(&models.SettingsResponse{
		CompanyUUID:            companyUUID,
		HasOpenAIKey:           true,
		CreatedAt:              s.now,
		UpdatedAt:              s.now,
		UsageCount:             7,
		TranslationPreferences: models.DefaultPreferences(),
		RateLimitInfo:          models.RateLimitInfo{CurrentWindowRequests: 2, MaxRequestsPerMinute: 20, ResetTime: s.now},
	}, nil)

	rr := testutil.DoRequest(s.router, s.authed(http.MethodGet, nil))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	body := testutil.UnmarshalMap(s.T(), rr)
	s.Equal(true, body["has_openai_key"])
	s.Equal(float64(7), body["usage_count"])
	s.NotContains(body, "openai_api_key")
	info := body["rate_limit_info"].(map[string]any)
	s.Equal(float64(2), info["current_window_requests"])
	s.Equal(float64(20), info["max_requests_per_minute"])
	prefs := body["translation_preferences"].(map[string]any)
	s.Equal("professional", prefs["default_tone"])
}

func (s *SettingsHandlerSuite) TestGetRequiresSession() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/settings", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *SettingsHandlerSuite) TestUpdate() {
	for _, method := range []string{http.MethodPut, http.MethodPost} {
		s.Run(method, func() {
			s.service.EXPECT().Update(gomock.Any(), companyUUID, gomock.Any()).
				DoAndReturn(func(_ any, _ string, cmd service.UpdateCommand) (*models.Settings, error) {
					s.Equal("sk-test-key", cmd.OpenAIAPIKey)
					s.Require().NotNil(cmd.Preferences)
					s.Equal("casual", *cmd.Preferences.DefaultTone)
					s.Nil(cmd.Preferences.PreferredFormality)
					settings := models.NewSettings(companyUUID, s.now)
					settings.OpenAIKey = &secrets.Sealed{}
					return settings, nil
				})

			rr := testutil.DoRequest(s.router, s.authed(method, map[string]any{
				"openai_api_key":          "  sk-test-key ",
				"translation_preferences": map[string]any{"default_tone": "casual"},
			}))
			s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

			body := testutil.UnmarshalMap(s.T(), rr)
			s.Equal(true, body["success"])
			s.Equal("Settings updated successfully", body["message"])
			s.Equal(true, body["has_openai_key"])
		})
	}
}

func (s *SettingsHandlerSuite) TestUpdateValidationError() {
	s.service.EXPECT().Update(gomock.Any(), companyUUID, gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeValidation, "Invalid default_tone. Must be one of: professional, casual, formal, friendly"))

	rr := testutil.DoRequest(s.router, s.authed(http.MethodPut, map[string]any{
		"translation_preferences": map[string]any{"default_tone": "sarcastic"},
	}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *SettingsHandlerSuite) TestUpdateRejectsMalformedBody() {
	rr := testutil.DoRequest(s.router, s.authed(http.MethodPut, `{"translation_preferences": "casual"}`))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *SettingsHandlerSuite) TestDeleteNotAllowed() {
	rr := testutil.DoRequest(s.router, s.authed(http.MethodDelete, nil))
	s.Equal(http.StatusMethodNotAllowed, rr.Code)
}
