// Package config loads the add-on backend configuration from .env files,
// an optional YAML file and the process environment.
package config

import (
	"strings"
	"time"

	pstrings "m8translate/pkg/platform/strings"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Detection   DetectionConfig   `yaml:"detection"`
	Translation TranslationConfig `yaml:"translation"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	ServiceM8   ServiceM8Config   `yaml:"servicem8"`
	Session     SessionConfig     `yaml:"session"`
	Security    SecurityConfig    `yaml:"security"`
	Redis       RedisConfig       `yaml:"redis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	PublicURL       string        `yaml:"public_url"       env:"PUBLIC_URL"              env-default:"http://localhost:8080"`
	Environment     string        `yaml:"environment"      env:"APP_ENV"                 env-default:"development"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds the allow-list of ServiceM8 origins that may embed the add-on.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"https://app.servicem8.com,https://addon.go.servicem8.com,https://go.servicem8.com,https://platform.servicem8.com"`
	MaxAge         int    `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"86400"`
}

// Origins splits AllowedOrigins into a trimmed list.
func (c CORSConfig) Origins() []string {
	return pstrings.SplitList(c.AllowedOrigins)
}

// RateLimitConfig holds the sliding-window limits.
type RateLimitConfig struct {
	Window              time.Duration `yaml:"window"                env:"RATE_LIMIT_WINDOW"                env-default:"60s"`
	TranslatePerCompany int           `yaml:"translate_per_company" env:"RATE_LIMIT_TRANSLATE_PER_COMPANY" env-default:"20"`
	TranslatePerIP      int           `yaml:"translate_per_ip"      env:"RATE_LIMIT_TRANSLATE_PER_IP"      env-default:"10"`
	DetectPerIP         int           `yaml:"detect_per_ip"         env:"RATE_LIMIT_DETECT_PER_IP"         env-default:"60"`
	MaxKeys             int           `yaml:"max_keys"              env:"RATE_LIMIT_MAX_KEYS"              env-default:"1000"`
	SweepInterval       time.Duration `yaml:"sweep_interval"        env:"RATE_LIMIT_SWEEP_INTERVAL"        env-default:"5m"`
	Disabled            bool          `yaml:"disabled"              env:"RATE_LIMIT_DISABLED"              env-default:"false"`
}

// DetectionConfig holds language detector thresholds.
type DetectionConfig struct {
	MinLength      int     `yaml:"min_length"      env:"DETECTION_MIN_LENGTH"      env-default:"3"`
	ScoreThreshold float64 `yaml:"score_threshold" env:"DETECTION_SCORE_THRESHOLD" env-default:"5"`
}

// TranslationConfig holds request-level limits for the translate endpoint.
type TranslationConfig struct {
	MaxTextLength     int  `yaml:"max_text_length"     env:"TRANSLATION_MAX_TEXT_LENGTH"     env-default:"1000"`
	VerifyTokens      bool `yaml:"verify_tokens"       env:"TRANSLATION_VERIFY_TOKENS"       env-default:"false"`
	AllowStubProvider bool `yaml:"allow_stub_provider" env:"TRANSLATION_ALLOW_STUB_PROVIDER" env-default:"true"`
}

// OpenAIConfig holds the deployment-wide LLM settings.
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"     env:"OPENAI_API_KEY"`
	BaseURL     string        `yaml:"base_url"    env:"OPENAI_BASE_URL"`
	Model       string        `yaml:"model"       env:"OPENAI_MODEL"       env-default:"gpt-4-turbo"`
	Temperature float32       `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int           `yaml:"max_tokens"  env:"OPENAI_MAX_TOKENS"  env-default:"1000"`
	Timeout     time.Duration `yaml:"timeout"     env:"OPENAI_TIMEOUT"     env-default:"30s"`
}

// ServiceM8Config holds the OAuth application registration and API endpoint.
type ServiceM8Config struct {
	ClientID     string        `yaml:"client_id"     env:"SERVICEM8_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" env:"SERVICEM8_CLIENT_SECRET"`
	BaseURL      string        `yaml:"base_url"      env:"SERVICEM8_BASE_URL"      env-default:"https://api.servicem8.com"`
	AuthorizeURL string        `yaml:"authorize_url" env:"SERVICEM8_AUTHORIZE_URL" env-default:"https://go.servicem8.com/oauth/authorize"`
	Scope        string        `yaml:"scope"         env:"SERVICEM8_SCOPE"         env-default:"job:read customer:read"`
	StateTTL     time.Duration `yaml:"state_ttl"     env:"SERVICEM8_STATE_TTL"     env-default:"10m"`
	Timeout      time.Duration `yaml:"timeout"       env:"SERVICEM8_TIMEOUT"       env-default:"10s"`
}

// RedirectURI is the OAuth callback registered with ServiceM8.
func (c ServiceM8Config) RedirectURI(publicURL string) string {
	return strings.TrimRight(publicURL, "/") + "/api/oauth/callback"
}

// SessionConfig holds add-on session token settings.
type SessionConfig struct {
	SigningKey    string        `yaml:"signing_key"    env:"SESSION_SIGNING_KEY"    env-required:"true"`
	Issuer        string        `yaml:"issuer"         env:"SESSION_ISSUER"         env-default:"m8translate"`
	TTL           time.Duration `yaml:"ttl"            env:"SESSION_TTL"            env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`
}

// SecurityConfig holds secrets used to seal stored credentials and to guard
// operator endpoints. An empty AdminToken disables the admin routes.
type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY" env-required:"true"`
	AdminToken    string `yaml:"admin_token"    env:"ADMIN_API_TOKEN"`
}

// RedisConfig holds the optional shared store. An empty URL selects the
// in-memory stores.
type RedisConfig struct {
	URL          string        `yaml:"url"            env:"REDIS_URL"`
	PoolSize     int           `yaml:"pool_size"      env:"REDIS_POOL_SIZE"      env-default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" env-default:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout"   env:"REDIS_DIAL_TIMEOUT"   env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout"   env:"REDIS_READ_TIMEOUT"   env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout"  env:"REDIS_WRITE_TIMEOUT"  env-default:"3s"`
}

// IsDevelopment reports whether the deployment runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}
