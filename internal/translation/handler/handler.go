package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	rlMiddleware "m8translate/internal/ratelimit/middleware"
	"m8translate/internal/translation/models"
	"m8translate/internal/translation/service"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/requestcontext"
)

// DefaultMaxTextLength bounds sanitised input in characters.
const DefaultMaxTextLength = 1000

// Service is the translation capability the handler exposes.
type Service interface {
	Translate(ctx context.Context, cmd models.TranslateCommand) (*models.Result, error)
}

type Handler struct {
	service       Service
	logger        *slog.Logger
	maxTextLength int
}

type Option func(*Handler)

func WithMaxTextLength(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxTextLength = n
		}
	}
}

func New(svc Service, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{service: svc, logger: logger, maxTextLength: DefaultMaxTextLength}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the translation route on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/translate", h.HandleTranslate)
}

// HandleTranslate translates a message to English and suggests an email subject.
func (h *Handler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TranslateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if utf8.RuneCountInString(*req.Text) > h.maxTextLength {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("Text too long. Maximum %d characters allowed.", h.maxTextLength)))
		return
	}

	result, err := h.service.Translate(ctx, req.ToCommand())
	if err != nil {
		var limited *service.RateLimitedError
		if errors.As(err, &limited) {
			rlMiddleware.AddRateLimitHeaders(w, limited.Result)
			rlMiddleware.WriteRateLimitExceeded(w, limited.Result, "Rate limit exceeded for your company. Please wait before trying again.")
			return
		}
		h.logger.WarnContext(ctx, "translation failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(result))
}
