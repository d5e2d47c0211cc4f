package testutil

import (
	"net/http"

	"m8translate/pkg/requestcontext"
)

// WithSession adds the identity the session middleware would resolve for an
// authenticated add-on request.
func WithSession(req *http.Request, companyUUID, sessionID, jobUUID string) *http.Request {
	ctx := requestcontext.WithCompanyUUID(req.Context(), companyUUID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	if jobUUID != "" {
		ctx = requestcontext.WithJobUUID(ctx, jobUUID)
	}
	return req.WithContext(ctx)
}
