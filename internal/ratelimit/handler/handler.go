package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"m8translate/internal/ratelimit/models"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/requestcontext"
)

// Service is the rate limiter surface the admin endpoints operate on.
type Service interface {
	Reset(ctx context.Context, req *models.ResetRateLimitRequest) int
}

// Handler serves the operator endpoints of the rate limiter.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the admin routes on r. The caller is responsible for
// guarding r with admin authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/rate-limit/reset", h.HandleResetRateLimit)
}

// HandleResetRateLimit clears the sliding window of one IP or company.
func (h *Handler) HandleResetRateLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ResetRateLimitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	h.service.Reset(ctx, req)
	w.WriteHeader(http.StatusNoContent)
}
