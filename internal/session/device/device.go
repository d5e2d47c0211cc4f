// Package device turns the browser user agent that opened the add-on into a
// short display name for session logs.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Info summarises a parsed user agent.
type Info struct {
	DisplayName string
	Mobile      bool
	Bot         bool
}

// Describe parses userAgent.
func Describe(userAgent string) Info {
	if strings.TrimSpace(userAgent) == "" {
		return Info{DisplayName: "Unknown Device"}
	}
	ua := useragent.New(userAgent)
	return Info{
		DisplayName: displayName(ua),
		Mobile:      ua.Mobile(),
		Bot:         ua.Bot(),
	}
}

// ParseUserAgent returns a "Browser on OS" display name.
func ParseUserAgent(userAgent string) string {
	return Describe(userAgent).DisplayName
}

func displayName(ua *useragent.UserAgent) string {
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, os))
}
