// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them without importing net/http:
//
//	companyUUID := requestcontext.CompanyUUID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	companyUUIDKey struct{}
	sessionIDKey   struct{}
	jobUUIDKey     struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// -----------------------------------------------------------------------------
// Session context (company, session, job)
// -----------------------------------------------------------------------------

// CompanyUUID retrieves the authenticated ServiceM8 company from the context.
func CompanyUUID(ctx context.Context) string {
	if v, ok := ctx.Value(companyUUIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithCompanyUUID injects the authenticated company into the context.
func WithCompanyUUID(ctx context.Context, companyUUID string) context.Context {
	return context.WithValue(ctx, companyUUIDKey{}, companyUUID)
}

// SessionID retrieves the add-on session identifier from the context.
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects a session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// JobUUID retrieves the ServiceM8 job the session was opened from.
func JobUUID(ctx context.Context) string {
	if v, ok := ctx.Value(jobUUIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithJobUUID injects a job identifier into the context.
func WithJobUUID(ctx context.Context, jobUUID string) context.Context {
	return context.WithValue(ctx, jobUUIDKey{}, jobUUID)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (sweepers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// HasTime reports whether ctx already carries a request time.
func HasTime(ctx context.Context) bool {
	_, ok := ctx.Value(requestTimeKey{}).(time.Time)
	return ok
}
