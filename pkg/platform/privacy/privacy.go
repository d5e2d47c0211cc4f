// Package privacy masks identifiers before they are written to logs.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// AnonymizeIP keeps the network prefix of an address: /24 for IPv4 and /48 for
// IPv6. Unparseable input is fully masked.
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return net.IPv4(v4[0], v4[1], v4[2], 0).String()
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String()
}

// MaskIdentifier keeps the first eight characters of an identifier such as a
// company UUID.
func MaskIdentifier(id string) string {
	if id == "" {
		return "unknown"
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "***"
}

// Fingerprint returns a short sha256 prefix of content, used to correlate log
// lines without storing the text itself.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}
