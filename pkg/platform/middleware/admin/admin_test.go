package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"m8translate/pkg/testutil"
)

func TestRequireAdminToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name     string
		expected string
		sent     string
		status   int
	}{
		{"matching token", "s3cret", "s3cret", http.StatusTeapot},
		{"missing token", "s3cret", "", http.StatusUnauthorized},
		{"wrong token", "s3cret", "s3cre", http.StatusUnauthorized},
		{"unset expected token rejects empty header", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/rate-limit/reset", nil)
			if tt.sent != "" {
				req.Header.Set(HeaderAdminToken, tt.sent)
			}
			rr := testutil.DoRequest(RequireAdminToken(tt.expected, nil)(ok), req)
			if tt.status == http.StatusUnauthorized {
				testutil.AssertStatusAndError(t, rr, tt.status, "unauthorized")
				return
			}
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}
