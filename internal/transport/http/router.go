// Package httptransport assembles the public router: the shared middleware
// chain, operational endpoints and every module's routes with its per-IP
// limit or session guard.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"m8translate/internal/platform/config"
	"m8translate/internal/platform/cors"
	"m8translate/internal/platform/metrics"
	rlMiddleware "m8translate/internal/ratelimit/middleware"
	rlModels "m8translate/internal/ratelimit/models"
	sessionMiddleware "m8translate/internal/session/middleware"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/platform/middleware/admin"
	"m8translate/pkg/platform/middleware/metadata"
	"m8translate/pkg/platform/middleware/request"
	"m8translate/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// AdminRegistrar is implemented by handlers exposing operator routes.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// HealthChecker reports the state of an optional backing service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts. Health and Gatherer may be nil.
// Admin routes are mounted only when both Admin and AdminToken are set.
type Deps struct {
	Logger         *slog.Logger
	CORS           config.CORSConfig
	RequestTimeout time.Duration
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         HealthChecker
	RateLimit      *rlMiddleware.Middleware
	Sessions       sessionMiddleware.Resolver

	Detect    Registrar
	Translate Registrar
	Session   Registrar
	Settings  Registrar
	OAuth     Registrar

	Admin      AdminRegistrar
	AdminToken string
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
}

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(cors.SecurityHeaders)
	r.Use(cors.New(d.CORS))
	r.Use(d.Metrics.Middleware)
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/healthz", healthHandler(d.Health, logger))
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(d.RateLimit.RateLimit(rlModels.ClassDetect))
		d.Detect.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.RateLimit.RateLimit(rlModels.ClassTranslate))
		d.Translate.Register(r)
		d.Session.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware.RequireSession(d.Sessions, logger))
		d.Settings.Register(r)
	})

	d.OAuth.Register(r)

	if d.Admin != nil && d.AdminToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(d.AdminToken, logger))
			d.Admin.RegisterAdmin(r)
		})
	}

	return r
}

func healthHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			httputil.WriteJSON(w, http.StatusOK, &HealthResponse{Status: "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := checker.Health(ctx); err != nil {
			logger.WarnContext(ctx, "redis health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, &HealthResponse{Status: "degraded", Redis: "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, &HealthResponse{Status: "ok", Redis: "ok"})
	}
}
