package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"m8translate/pkg/requestcontext"
)

func TestMiddleware(t *testing.T) {
	var seen []time.Time
	handler := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = append(seen, requestcontext.Now(r.Context()), requestcontext.Now(r.Context()))
	}))

	t.Run("stamps a single utc time", func(t *testing.T) {
		seen = nil
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 2)
		assert.Equal(t, seen[0], seen[1])
		assert.Equal(t, time.UTC, seen[0].Location())
		assert.WithinDuration(t, time.Now(), seen[0], time.Second)
	})

	t.Run("keeps an injected time", func(t *testing.T) {
		seen = nil
		fixed := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(requestcontext.WithTime(req.Context(), fixed))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, fixed, seen[0])
	})
}
