package config

import (
	"fmt"
	"net/url"
)

const minSecretLength = 32

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Security.EncryptionKey) < minSecretLength {
		return fmt.Errorf("security.encryption_key must be at least %d characters (got %d)", minSecretLength, len(c.Security.EncryptionKey))
	}
	if c.Security.AdminToken != "" && len(c.Security.AdminToken) < minSecretLength {
		return fmt.Errorf("security.admin_token must be at least %d characters when set (got %d)", minSecretLength, len(c.Security.AdminToken))
	}
	if len(c.Session.SigningKey) < minSecretLength {
		return fmt.Errorf("session.signing_key must be at least %d characters (got %d)", minSecretLength, len(c.Session.SigningKey))
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0 (got %s)", c.Session.TTL)
	}
	if err := c.RateLimit.validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if c.Detection.MinLength < 1 {
		return fmt.Errorf("detection.min_length must be >= 1 (got %d)", c.Detection.MinLength)
	}
	if c.Detection.ScoreThreshold < 0 {
		return fmt.Errorf("detection.score_threshold must be >= 0 (got %v)", c.Detection.ScoreThreshold)
	}
	if c.Translation.MaxTextLength <= 0 {
		return fmt.Errorf("translation.max_text_length must be > 0 (got %d)", c.Translation.MaxTextLength)
	}
	if c.OpenAI.APIKey == "" && !c.Translation.AllowStubProvider {
		return fmt.Errorf("openai.api_key is required when the stub provider is disabled")
	}
	if _, err := url.ParseRequestURI(c.ServiceM8.BaseURL); err != nil {
		return fmt.Errorf("servicem8.base_url: %w", err)
	}
	if _, err := url.ParseRequestURI(c.ServiceM8.AuthorizeURL); err != nil {
		return fmt.Errorf("servicem8.authorize_url: %w", err)
	}
	if len(c.CORS.Origins()) == 0 {
		return fmt.Errorf("cors.allowed_origins must list at least one origin")
	}
	return nil
}

func (r *RateLimitConfig) validate() error {
	if r.Window <= 0 {
		return fmt.Errorf("window must be > 0 (got %s)", r.Window)
	}
	if r.TranslatePerCompany <= 0 {
		return fmt.Errorf("translate_per_company must be > 0 (got %d)", r.TranslatePerCompany)
	}
	if r.TranslatePerIP <= 0 {
		return fmt.Errorf("translate_per_ip must be > 0 (got %d)", r.TranslatePerIP)
	}
	if r.DetectPerIP <= 0 {
		return fmt.Errorf("detect_per_ip must be > 0 (got %d)", r.DetectPerIP)
	}
	if r.MaxKeys <= 0 {
		return fmt.Errorf("max_keys must be > 0 (got %d)", r.MaxKeys)
	}
	return nil
}
