// Package requesttime pins one UTC "now" per request so rate-limit windows,
// session expiry checks and processing times agree.
package requesttime

import (
	"net/http"
	"time"

	"m8translate/pkg/requestcontext"
)

// Middleware stamps the request context with the arrival time. Existing
// stamps are kept so tests can inject a fixed clock upstream.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !requestcontext.HasTime(ctx) {
			ctx = requestcontext.WithTime(ctx, time.Now().UTC())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
