package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"m8translate/internal/langdetect/models"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/requestcontext"
)

// Detector is the language detection capability the handler exposes.
type Detector interface {
	Detect(text string) models.Result
}

// Handler serves real-time language hints for the compose view.
type Handler struct {
	detector Detector
	logger   *slog.Logger
}

func New(detector Detector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{detector: detector, logger: logger}
}

// Register mounts the detection route on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/detect-language", h.HandleDetect)
}

// HandleDetect detects the language of the submitted text. Undetectable text
// is a successful response with null fields.
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DetectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.detector.Detect(*req.Text))
}
