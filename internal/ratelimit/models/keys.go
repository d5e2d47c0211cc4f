package models

import "strings"

const (
	KeyPrefixIP      = "ip"
	KeyPrefixCompany = "company"
)

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so a caller-controlled identifier containing ':' cannot address another
// caller's window.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// IPKey is the window key for a client IP on an endpoint class.
func IPKey(class EndpointClass, ip string) string {
	return KeyPrefixIP + ":" + string(class) + ":" + SanitizeKeySegment(ip)
}

// CompanyKey is the window key for a ServiceM8 company.
func CompanyKey(companyUUID string) string {
	return KeyPrefixCompany + ":" + SanitizeKeySegment(strings.ToLower(companyUUID))
}
