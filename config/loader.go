package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// APIKeyEnv is read directly, outside the viper key namespace.
const APIKeyEnv = "GOOGLE_GENERATIVE_AI_API_KEY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("model.path", "models/loan_approval_model.json.gz")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_output_tokens", 512)
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.timeout", "30s")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("audit.driver", "none")
	v.SetDefault("audit.postgres_dsn", "")
	v.SetDefault("audit.memory_limit", 1000)

	v.SetDefault("rate_limit.capacity", 5)
	v.SetDefault("rate_limit.refill", "1m")

	v.SetDefault("repayment.annual_rate", 8.5)
	v.SetDefault("repayment.term_unit", "years")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads .env (when present), an optional config.yaml and the
// environment. Environment keys use underscores, e.g. SERVER_ADDR.
func Load(paths ...string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Gemini.APIKey = key
	}
	cfg.Audit.Driver = strings.ToLower(strings.TrimSpace(cfg.Audit.Driver))
	cfg.Repayment.TermUnit = strings.ToLower(strings.TrimSpace(cfg.Repayment.TermUnit))

	return &cfg, nil
}

func loadEnvFile() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}
