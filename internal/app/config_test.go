package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/adbroker-backend/internal/domain"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "BILLING_EPOCH", "CLASSIFIER_API_KEY", "OPENAI_API_KEY", "CLASSIFIER_TIMEOUT", "CLASSIFIER_TEMPERATURE", "REDIS_KEY_PREFIX"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.True(t, cfg.BillingEpoch.Equal(domain.DefaultBillingEpoch))
	assert.Equal(t, "gpt-4.1", cfg.Classification.Model)
	assert.Equal(t, 20*time.Second, cfg.Classification.Timeout)
	assert.Equal(t, int64(8), cfg.Classification.MaxConcurrency)
	assert.InDelta(t, 0.0005, cfg.Classification.Rates.InputPer1K, 1e-12)
	assert.InDelta(t, 0.1, cfg.Classification.Temperature, 1e-12)
	assert.Equal(t, "adbroker:", cfg.RedisKeyPrefix)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("BILLING_EPOCH", "2025-06-01")
	t.Setenv("CLASSIFIER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("CLASSIFIER_TIMEOUT", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("CLASSIFIER_TEMPERATURE", "0")

	cfg := LoadConfig(logger.Nop())

	assert.Equal(t, StoreDriverRedis, cfg.StoreDriver)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cfg.BillingEpoch)
	assert.Equal(t, "sk-fallback", cfg.Engine.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Zero(t, cfg.Classification.Temperature)
}
