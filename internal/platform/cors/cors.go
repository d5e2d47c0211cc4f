// Package cors restricts cross-origin access to the ServiceM8 surfaces that
// embed the add-on and sets the framing headers those surfaces need.
package cors

import (
	"net/http"

	"github.com/rs/cors"

	"m8translate/internal/platform/config"
)

// New returns CORS middleware for the configured origin allow-list.
// Preflight requests are answered with 200 as the ServiceM8 webview expects.
func New(cfg config.CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:       cfg.Origins(),
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization", "X-Request-ID", "X-ServiceM8-Session"},
		ExposedHeaders:       []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-ID"},
		AllowCredentials:     true,
		MaxAge:               cfg.MaxAge,
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler
}

// SecurityHeaders allows the add-on to be framed inside ServiceM8 while
// keeping content sniffing and referrer leakage off.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "ALLOWALL")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
