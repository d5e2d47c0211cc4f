package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/testutil"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		wantDesc string
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "Text cannot be empty"), http.StatusBadRequest, "validation_error", "Text cannot be empty"},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired session"), http.StatusUnauthorized, "unauthorized", "Invalid or expired session"},
		{"rate limited", dErrors.New(dErrors.CodeRateLimited, "slow down"), http.StatusTooManyRequests, "rate_limit_exceeded", "slow down"},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "Translation service not configured"), http.StatusServiceUnavailable, "service_unavailable", "Translation service not configured"},
		{"wrapped domain error", fmt.Errorf("resolve: %w", dErrors.New(dErrors.CodeNotFound, "session not found")), http.StatusNotFound, "not_found", "session not found"},
		{"internal hides description", dErrors.New(dErrors.CodeInternal, "redis failed"), http.StatusInternalServerError, "internal_error", ""},
		{"plain error is internal", errors.New("boom"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			testutil.AssertStatusAndError(t, rr, tt.status, tt.code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			body := testutil.UnmarshalMap(t, rr)
			if tt.wantDesc == "" {
				assert.NotContains(t, body, "error_description")
				return
			}
			assert.Equal(t, tt.wantDesc, body["error_description"])
		})
	}
}

func TestWriteJSONWithoutBody(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusAccepted, nil)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"text":"hola"}`, ""},
		{"empty body", ``, "request body is required"},
		{"malformed", `{"text":`, "invalid JSON in request body"},
		{"wrong type", `{"text":42}`, "text has an invalid type"},
		{"oversized", `{"text":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, "invalid JSON in request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSON(r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "hola", dst.Text)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

type probeRequest struct {
	Text string `json:"text"`
}

func (p *probeRequest) Normalize() { p.Text = strings.TrimSpace(p.Text) }

func (p *probeRequest) Validate() error {
	if p.Text == "" {
		return dErrors.New(dErrors.CodeValidation, "text is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		status int
		code   string
	}{
		{name: "normalizes then validates", body: `{"text":"  hola  "}`, ok: true},
		{name: "decode failure", body: `{"text":42}`, status: http.StatusBadRequest, code: "bad_request"},
		{name: "validation runs after normalize", body: `{"text":"   "}`, status: http.StatusBadRequest, code: "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			req, ok := DecodeAndPrepare[probeRequest](rr, r, nil, r.Context(), "req-1")
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "hola", req.Text)
				return
			}
			assert.Nil(t, req)
			testutil.AssertStatusAndError(t, rr, tt.status, tt.code)
		})
	}
}
