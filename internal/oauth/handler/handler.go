package handler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"m8translate/internal/oauth/service"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/requestcontext"
)

// Service is the OAuth flow the handler exposes.
type Service interface {
	AuthorizeURL(ctx context.Context, companyUUID string) (string, error)
	Callback(ctx context.Context, cmd service.CallbackCommand) (*service.Connected, error)
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

// Register mounts the OAuth routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/oauth/authorize", h.HandleAuthorize)
	r.Get("/api/oauth/callback", h.HandleCallback)
	r.Post("/api/oauth/callback", h.HandleCallback)
}

// HandleAuthorize redirects the browser to the ServiceM8 consent page.
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := h.service.AuthorizeURL(ctx, r.URL.Query().Get("company_uuid"))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to build authorize URL",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleCallback receives the authorization code from ServiceM8, as query
// parameters, a form body or a JSON body.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := parseCallback(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid oauth callback", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	connected, err := h.service.Callback(ctx, req.ToCommand())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &CallbackResponse{
		Success:     true,
		CompanyUUID: connected.CompanyUUID,
		CompanyName: connected.CompanyName,
		Message:     "Smart Message Translator is now connected to your ServiceM8 account.",
	})
}

func parseCallback(r *http.Request) (*CallbackRequest, error) {
	req := &CallbackRequest{}
	if r.Method == http.MethodPost {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/json" {
			if err := httputil.DecodeJSON(r, req); err != nil {
				return nil, err
			}
			req.Normalize()
			return req, nil
		}
	}
	if err := r.ParseForm(); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid callback parameters")
	}
	req.Code = r.Form.Get("code")
	req.State = r.Form.Get("state")
	req.Error = r.Form.Get("error")
	req.ErrorDescription = r.Form.Get("error_description")
	req.Normalize()
	return req, nil
}
