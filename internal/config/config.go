package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	RedisAddresses      string        `envconfig:"REDIS_ADDRESSES" default:""`
	RedisPassword       string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB             int           `envconfig:"REDIS_DB" default:"0"`
	TranslationCacheTTL time.Duration `envconfig:"TRANSLATION_CACHE_TTL" default:"0s"`

	AuthTokenSecret  string `envconfig:"AUTH_TOKEN_SECRET" required:"true"`
	AuthTokenIssuer  string `envconfig:"AUTH_TOKEN_ISSUER" default:"askverba"`
	AuthCookieSecure bool   `envconfig:"AUTH_COOKIE_SECURE" default:"false"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	AIProvider      string `envconfig:"AI_PROVIDER" default:"openai"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL" default:""`
	AIModel         string `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	LocalAIEndpoint string `envconfig:"LOCAL_AI_ENDPOINT" default:"http://127.0.0.1:8845/v1"`
	LocalAIModel    string `envconfig:"LOCAL_AI_MODEL" default:"qwen2.5-7b-instruct"`

	TranslationSourceLang       string `envconfig:"TRANSLATION_SOURCE_LANG" default:"en"`
	TranslationTargetLang       string `envconfig:"TRANSLATION_TARGET_LANG" default:"vi"`
	TranslationMaxChars         int    `envconfig:"TRANSLATION_MAX_CHARS" default:"5000"`
	TranslateRateLimitPerMinute int    `envconfig:"TRANSLATE_RATE_LIMIT_PER_MINUTE" default:"30"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}
	if c.TranslationCacheTTL < 0 {
		return fmt.Errorf("TRANSLATION_CACHE_TTL must be >= 0")
	}
	if len(strings.TrimSpace(c.AuthTokenSecret)) < 32 {
		return fmt.Errorf("AUTH_TOKEN_SECRET must be at least 32 characters")
	}
	switch strings.ToLower(strings.TrimSpace(c.AIProvider)) {
	case "openai":
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	case "local":
		if strings.TrimSpace(c.LocalAIEndpoint) == "" {
			return fmt.Errorf("LOCAL_AI_ENDPOINT is required when AI_PROVIDER=local")
		}
	default:
		return fmt.Errorf("AI_PROVIDER must be openai or local")
	}
	if strings.TrimSpace(c.TranslationSourceLang) == "" || strings.TrimSpace(c.TranslationTargetLang) == "" {
		return fmt.Errorf("TRANSLATION_SOURCE_LANG and TRANSLATION_TARGET_LANG are required")
	}
	if strings.EqualFold(strings.TrimSpace(c.TranslationSourceLang), strings.TrimSpace(c.TranslationTargetLang)) {
		return fmt.Errorf("TRANSLATION_SOURCE_LANG and TRANSLATION_TARGET_LANG must differ")
	}
	if c.TranslationMaxChars < 1 {
		return fmt.Errorf("TRANSLATION_MAX_CHARS must be >= 1")
	}
	if c.TranslateRateLimitPerMinute < 0 {
		return fmt.Errorf("TRANSLATE_RATE_LIMIT_PER_MINUTE must be >= 0")
	}
	return nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins)
}

// RedisAddressList returns the configured Redis nodes. An empty list means
// the in-process cache is used instead.
func (c *Config) RedisAddressList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.RedisAddresses)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, exists := seen[item]; exists {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}
	return items
}
