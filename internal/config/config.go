// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :5000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN for users/contracts/favorites.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC signing secret for access/refresh tokens. Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// AccessTokenTTL is the access token lifetime (e.g. "2h").
	AccessTokenTTL string `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh token lifetime (e.g. "720h" = 30d).
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`
	// OTPExpiry is how long a sent code stays valid (e.g. "5m").
	OTPExpiry string `mapstructure:"OTP_EXPIRY"`
	// OTPMaxAttempts is the number of verification attempts before a code is invalidated.
	OTPMaxAttempts int `mapstructure:"OTP_MAX_ATTEMPTS"`
	// OTPResendInterval is the minimum interval between two codes for the same phone.
	OTPResendInterval string `mapstructure:"OTP_RESEND_INTERVAL"`
	// DevMode when true echoes the plaintext OTP in the send-otp response. Must not be true when Env is production.
	DevMode bool `mapstructure:"DEV_MODE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// DeepSeekAPIKey authenticates against the chat-completions API used by the analysis pipeline. Required.
	DeepSeekAPIKey string `mapstructure:"DEEPSEEK_API_KEY"`
	// DeepSeekBaseURL is the chat-completions API base URL.
	DeepSeekBaseURL string `mapstructure:"DEEPSEEK_BASE_URL"`
	// RetrievalURL is the clause-retrieval sidecar base URL; empty disables retrieval context.
	RetrievalURL string `mapstructure:"RETRIEVAL_URL"`

	// SMSLocalAPIKey is the API key for the SMS provider; empty means codes are only logged (dev).
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalBaseURL is the SMS provider endpoint.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`
	// SMSLocalSender is the optional sender ID.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`

	// AnalysisWorkers is the number of concurrent analysis jobs.
	AnalysisWorkers int `mapstructure:"ANALYSIS_WORKERS"`
	// AnalysisQueueSize is the number of accepted-but-not-started jobs held before submissions are refused.
	AnalysisQueueSize int `mapstructure:"ANALYSIS_QUEUE_SIZE"`
	// AnalysisStageTimeout bounds each external call inside a job (e.g. "120s").
	AnalysisStageTimeout string `mapstructure:"ANALYSIS_STAGE_TIMEOUT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", "2h")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h") // 30d
	v.SetDefault("OTP_EXPIRY", "5m")
	v.SetDefault("OTP_MAX_ATTEMPTS", 5)
	v.SetDefault("OTP_RESEND_INTERVAL", "60s")
	v.SetDefault("DEV_MODE", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("DEEPSEEK_API_KEY", "")
	v.SetDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	v.SetDefault("RETRIEVAL_URL", "")
	v.SetDefault("SMS_LOCAL_API_KEY", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://www.smslocal.com/dev/bulkV2")
	v.SetDefault("SMS_LOCAL_SENDER", "")
	v.SetDefault("ANALYSIS_WORKERS", 4)
	v.SetDefault("ANALYSIS_QUEUE_SIZE", 64)
	v.SetDefault("ANALYSIS_STAGE_TIMEOUT", "120s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}
	if cfg.DevMode && cfg.Env == "production" {
		return nil, errors.New("config: DEV_MODE must not be true when APP_ENV=production")
	}
	if cfg.OTPMaxAttempts <= 0 {
		return nil, errors.New("config: OTP_MAX_ATTEMPTS must be positive")
	}
	if cfg.AnalysisWorkers <= 0 || cfg.AnalysisQueueSize <= 0 {
		return nil, errors.New("config: ANALYSIS_WORKERS and ANALYSIS_QUEUE_SIZE must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses AccessTokenTTL as a time.Duration. Returns 2h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.AccessTokenTTL, 2*time.Hour)
}

// RefreshTTL parses RefreshTokenTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return parseDuration(c.RefreshTokenTTL, 720*time.Hour)
}

// OTPExpiryWindow parses OTPExpiry. Returns 5m if unset or invalid.
func (c *Config) OTPExpiryWindow() time.Duration {
	return parseDuration(c.OTPExpiry, 5*time.Minute)
}

// OTPResendWindow parses OTPResendInterval. Returns 60s if unset or invalid.
func (c *Config) OTPResendWindow() time.Duration {
	return parseDuration(c.OTPResendInterval, 60*time.Second)
}

// StageTimeout parses AnalysisStageTimeout. Returns 120s if unset or invalid.
func (c *Config) StageTimeout() time.Duration {
	return parseDuration(c.AnalysisStageTimeout, 120*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
