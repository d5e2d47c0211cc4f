// Package middleware authenticates add-on requests by session token.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"m8translate/internal/session/models"
	dErrors "m8translate/pkg/domain-errors"
	"m8translate/pkg/platform/httputil"
	"m8translate/pkg/requestcontext"
)

// HeaderSession carries the session token when the embedding page cannot set
// an Authorization header.
const HeaderSession = "X-ServiceM8-Session"

// Resolver resolves a session token to its live session.
type Resolver interface {
	Resolve(ctx context.Context, sessionToken string) (*models.Session, error)
}

type sessionKey struct{}

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionKey{}).(*models.Session)
	return session
}

// WithSession attaches session and its identifiers to ctx.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, session)
	ctx = requestcontext.WithSessionID(ctx, session.ID)
	ctx = requestcontext.WithCompanyUUID(ctx, session.CompanyUUID)
	if session.JobUUID != "" {
		ctx = requestcontext.WithJobUUID(ctx, session.JobUUID)
	}
	return ctx
}

// TokenFromRequest extracts a session token from the Authorization bearer
// header or the X-ServiceM8-Session header.
func TokenFromRequest(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(r.Header.Get(HeaderSession))
}

// RequireSession rejects requests without a live session.
func RequireSession(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			sessionToken := TokenFromRequest(r)
			if sessionToken == "" {
				logger.WarnContext(ctx, "unauthorized access - missing session token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			session, err := resolver.Resolve(ctx, sessionToken)
			if err != nil {
				if dErrors.Is(err, dErrors.CodeInternal) {
					logger.ErrorContext(ctx, "failed to resolve session",
						"error", err,
						"request_id", requestID,
					)
				} else {
					logger.WarnContext(ctx, "unauthorized access - invalid session",
						"error", err,
						"request_id", requestID,
					)
				}
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, session)))
		})
	}
}
