// Package metadata attaches the caller's IP and User-Agent to the request
// context. The IP is the key of the per-IP rate limit windows.
package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"m8translate/pkg/requestcontext"
)

// UnknownIP is used when no header or remote address yields a valid IP.
const UnknownIP = "unknown"

// ClientMetadata stores the client IP and User-Agent in the request context.
// Apply it before any rate limiter.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest returns the canonical client IP: the first
// X-Forwarded-For hop, then X-Real-IP, then the connection's remote address.
// Values that do not parse as an IP are skipped.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, ok := canonicalIP(first); ok {
			return ip
		}
	}

	if ip, ok := canonicalIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}

	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if ip, ok := canonicalIP(addr); ok {
		return ip
	}
	return UnknownIP
}

// canonicalIP unmaps IPv4-in-IPv6 and drops zones so one client always maps
// to one key.
func canonicalIP(raw string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return addr.Unmap().WithZone("").String(), true
}
