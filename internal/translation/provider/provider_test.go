package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"m8translate/internal/platform/config"
	"m8translate/internal/translation/models"
	"m8translate/internal/translation/prompt"
)

const (
	goodKey = "sk-good-0123456789"
	badKey  = "sk-bad-0123456789"
)

type OpenAISuite struct {
	suite.Suite
	server  *httptest.Server
	cfg     config.OpenAIConfig
	content string
	lastReq map[string]any
}

func TestOpenAISuite(t *testing.T) {
	suite.Run(t, new(OpenAISuite))
}

func (s *OpenAISuite) SetupTest() {
	s.content = `{"detected_language":"Spanish","translated_text":"Thank you for your help","email_subject":"Service Update - Thank you"}`
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodKey {
			writeAPIError(w, http.StatusUnauthorized, "Incorrect API key provided")
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&s.lastReq)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-4-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": s.content},
			}},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
		})
	})
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodKey {
			writeAPIError(w, http.StatusUnauthorized, "Incorrect API key provided")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4-turbo","object":"model","owned_by":"openai"}]}`))
	})
	s.server = httptest.NewServer(mux)
	s.T().Cleanup(s.server.Close)

	s.cfg = config.OpenAIConfig{
		BaseURL:     s.server.URL + "/v1",
		Model:       "gpt-4-turbo",
		Temperature: 0.3,
		MaxTokens:   1000,
		Timeout:     5 * time.Second,
	}
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "invalid_request_error", "code": "invalid_api_key"},
	})
}

func (s *OpenAISuite) request() models.ProviderRequest {
	return models.ProviderRequest{SystemPrompt: "system prompt", Text: "Gracias por su ayuda"}
}

func (s *OpenAISuite) TestTranslate() {
	p := NewOpenAI(s.cfg, goodKey)
	res, err := p.Translate(context.Background(), s.request())
	s.Require().NoError(err)
	s.Equal("Spanish", res.DetectedLanguage)
	s.Equal("Thank you for your help", res.TranslatedText)
	s.Equal("Service Update - Thank you", res.EmailSubject)
	s.Equal("openai", p.Name())

	s.Equal("gpt-4-turbo", s.lastReq["model"])
	s.InDelta(0.3, s.lastReq["temperature"], 0.001)
	s.Equal(float64(1000), s.lastReq["max_tokens"])
	messages := s.lastReq["messages"].([]any)
	s.Len(messages, 2)
	s.Equal("system", messages[0].(map[string]any)["role"])
	s.Equal("Gracias por su ayuda", messages[1].(map[string]any)["content"])
	format := s.lastReq["response_format"].(map[string]any)
	s.Equal("json_object", format["type"])
}

func (s *OpenAISuite) TestTranslateInvalidContent() {
	s.content = `{"translated_text":""}`
	_, err := NewOpenAI(s.cfg, goodKey).Translate(context.Background(), s.request())
	s.ErrorIs(err, prompt.ErrInvalidResponse)
}

func (s *OpenAISuite) TestTranslateRejectedKey() {
	_, err := NewOpenAI(s.cfg, badKey).Translate(context.Background(), s.request())
	s.Require().Error(err)
	s.Contains(err.Error(), "401")
	s.NotContains(err.Error(), badKey)
}

func (s *OpenAISuite) TestValidateKey() {
	v := NewKeyValidator(s.cfg)
	s.NoError(v.ValidateKey(context.Background(), goodKey))
	s.Error(v.ValidateKey(context.Background(), badKey))
}

func (s *OpenAISuite) TestRegistry() {
	s.Run("company key wins", func() {
		r := NewRegistry(s.cfg, WithStub(true))
		p, err := r.ForKey(goodKey)
		s.Require().NoError(err)
		s.Equal("openai", p.Name())
	})

	s.Run("deployment key is the fallback", func() {
		cfg := s.cfg
		cfg.APIKey = goodKey
		p, err := NewRegistry(cfg).ForKey("")
		s.Require().NoError(err)
		s.Equal("openai", p.Name())
	})

	s.Run("stub when allowed", func() {
		p, err := NewRegistry(s.cfg, WithStub(true)).ForKey("")
		s.Require().NoError(err)
		s.Equal("stub", p.Name())
	})

	s.Run("error when nothing configured", func() {
		_, err := NewRegistry(s.cfg).ForKey("")
		s.ErrorIs(err, ErrNoProvider)
	})
}

func TestStub(t *testing.T) {
	res, err := NewStub().Translate(context.Background(), models.ProviderRequest{Text: "Hola"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.TranslatedText, "[STUB]"))
	assert.Contains(t, res.TranslatedText, `"Hola"`)
	assert.Empty(t, res.DetectedLanguage)
	assert.Equal(t, "Service Update - Message Translation", res.EmailSubject)
}

func TestRedact(t *testing.T) {
	err := redact(assert.AnError)
	assert.Equal(t, assert.AnError, err)

	err = redact(&testErr{"request failed: Authorization: Bearer sk-abc_123"})
	assert.Equal(t, "request failed: Authorization: Bearer ***", err.Error())
}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }
