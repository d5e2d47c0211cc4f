package config

import (
	"time"

	"m8translate/internal/platform/config"
	"m8translate/internal/ratelimit/models"
	"m8translate/internal/ratelimit/store/window"
)

// Config holds the limits applied by the rate limit service.
type Config struct {
	Window              time.Duration
	TranslatePerCompany int
	IPLimits            map[models.EndpointClass]int
	MaxKeys             int
	SweepInterval       time.Duration
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Window:              time.Minute,
		TranslatePerCompany: 20,
		IPLimits: map[models.EndpointClass]int{
			models.ClassTranslate: 10,
			models.ClassDetect:    60,
		},
		MaxKeys:       window.DefaultMaxKeys,
		SweepInterval: 5 * time.Minute,
	}
}

// FromPlatform maps the application configuration section.
func FromPlatform(c config.RateLimitConfig) *Config {
	return &Config{
		Window:              c.Window,
		TranslatePerCompany: c.TranslatePerCompany,
		IPLimits: map[models.EndpointClass]int{
			models.ClassTranslate: c.TranslatePerIP,
			models.ClassDetect:    c.DetectPerIP,
		},
		MaxKeys:       c.MaxKeys,
		SweepInterval: c.SweepInterval,
	}
}

// GetIPLimit returns the per-IP limit for class.
func (c *Config) GetIPLimit(class models.EndpointClass) (models.Limit, bool) {
	requests, ok := c.IPLimits[class]
	if !ok || requests <= 0 {
		return models.Limit{}, false
	}
	return models.Limit{Requests: requests, Window: c.Window}, true
}

// CompanyLimit returns the per-company translation limit.
func (c *Config) CompanyLimit() models.Limit {
	return models.Limit{Requests: c.TranslatePerCompany, Window: c.Window}
}
