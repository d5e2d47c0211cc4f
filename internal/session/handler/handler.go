package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"m8translate/internal/session/models"
	"m8translate/internal/session/service"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/requestcontext"
)

// Service issues and resolves sessions.
type Service interface {
	Create(ctx context.Context, cmd service.CreateCommand) (*models.Issued, error)
	Resolve(ctx context.Context, sessionToken string) (*models.Session, error)
}

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

// Register mounts the session routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/sessions", h.HandleCreate)
	r.Post("/api/session", h.HandleResolve)
}

// HandleCreate exchanges ServiceM8 credentials for a session token.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userAgent := requestcontext.UserAgent(ctx)
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	issued, err := h.service.Create(ctx, service.CreateCommand{
		CompanyUUID: req.CompanyUUID,
		AccessToken: req.AccessToken,
		JobUUID:     req.JobUUID,
		UserAgent:   userAgent,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create session", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.ToCreateResponse(issued))
}

// HandleResolve reports which company and job a session token belongs to.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResolveSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.service.Resolve(ctx, req.SessionToken)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to resolve session", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ToResolveResponse(session))
}
