package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(APIKeyEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "models/loan_approval_model.json.gz", cfg.Model.Path)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.InDelta(t, 0.3, cfg.Gemini.Temperature, 1e-6)
	assert.InDelta(t, 0.9, cfg.Gemini.TopP, 1e-6)
	assert.Equal(t, int32(512), cfg.Gemini.MaxOutputTokens)
	assert.Equal(t, "none", cfg.Audit.Driver)
	assert.Equal(t, 8.5, cfg.Repayment.AnnualRate)
	assert.Equal(t, "years", cfg.Repayment.TermUnit)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
	assert.Equal(t, time.Minute, cfg.RateLimit.Refill)

	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(APIKeyEnv, "secret")
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("AUDIT_DRIVER", "Memory")
	t.Setenv("CACHE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Audit.Driver)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(APIKeyEnv, "k")

	yaml := "model:\n  path: /srv/model.json.gz\nrepayment:\n  term_unit: months\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/model.json.gz", cfg.Model.Path)
	assert.Equal(t, "months", cfg.Repayment.TermUnit)
}

func TestValidate_Errors(t *testing.T) {
	base := func() Config {
		return Config{
			Model:     ModelConfig{Path: "m"},
			Gemini:    GeminiConfig{APIKey: "k"},
			Audit:     AuditConfig{Driver: "none"},
			RateLimit: RateLimitConfig{Capacity: 1, Refill: time.Second},
			Repayment: RepaymentConfig{TermUnit: "months"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Audit.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Audit.Driver = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Repayment.TermUnit = "weeks"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.RateLimit.Capacity = 0
	assert.Error(t, cfg.Validate())
}
