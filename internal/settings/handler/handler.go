package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"m8translate/internal/settings/models"
	"m8translate/internal/settings/service"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/requestcontext"
)

// Service reads and updates company settings.
type Service interface {
	View(ctx context.Context, companyUUID string) (*models.SettingsResponse, error)
	Update(ctx context.Context, companyUUID string, cmd service.UpdateCommand) (*models.Settings, error)
}

// Handler serves the settings routes. They must be mounted behind the
// session middleware, which supplies the company.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: svc, logger: logger}
}

// Register mounts the settings routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/settings", h.HandleGet)
	r.Put("/api/settings", h.HandleUpdate)
	r.Post("/api/settings", h.HandleUpdate)
}

// HandleGet returns the safe settings view for the session's company.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	companyUUID, ok := h.requireCompany(w, ctx)
	if !ok {
		return
	}

	view, err := h.service.View(ctx, companyUUID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load settings", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleUpdate validates and stores a settings change.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	companyUUID, ok := h.requireCompany(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateSettingsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.Update(ctx, companyUUID, req.ToCommand())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update settings", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToUpdateResponse(updated))
}

func (h *Handler) requireCompany(w http.ResponseWriter, ctx context.Context) (string, bool) {
	companyUUID := requestcontext.CompanyUUID(ctx)
	if companyUUID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing authentication parameters"))
		return "", false
	}
	return companyUUID, true
}
