package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey is returned by Validate when no Gemini key is configured.
var ErrMissingAPIKey = errors.New("GOOGLE_GENERATIVE_AI_API_KEY is not set")

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Audit     AuditConfig     `mapstructure:"audit"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Repayment RepaymentConfig `mapstructure:"repayment"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// GeminiConfig holds the static generation parameters of the insight call.
type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Temperature     float32       `mapstructure:"temperature"`
	TopP            float32       `mapstructure:"top_p"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// AuditConfig selects where decisions are recorded. Driver is one of
// "none", "memory" or "postgres".
type AuditConfig struct {
	Driver      string `mapstructure:"driver"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	MemoryLimit int    `mapstructure:"memory_limit"`
}

type RateLimitConfig struct {
	Capacity int           `mapstructure:"capacity"`
	Refill   time.Duration `mapstructure:"refill"`
}

type RepaymentConfig struct {
	AnnualRate float64 `mapstructure:"annual_rate"`
	TermUnit   string  `mapstructure:"term_unit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks the settings the decision server cannot run without.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	switch c.Audit.Driver {
	case "none", "memory":
	case "postgres":
		if c.Audit.PostgresDSN == "" {
			return errors.New("audit.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown audit driver %q", c.Audit.Driver)
	}
	switch c.Repayment.TermUnit {
	case "months", "years":
	default:
		return fmt.Errorf("unknown repayment term unit %q", c.Repayment.TermUnit)
	}
	if c.RateLimit.Capacity <= 0 || c.RateLimit.Refill <= 0 {
		return errors.New("rate_limit capacity and refill must be positive")
	}
	return nil
}
