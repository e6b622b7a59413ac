package app

import (
	"strings"
	"time"

	"github.com/yungbote/adbroker-backend/internal/data/db"
	"github.com/yungbote/adbroker-backend/internal/domain"
	"github.com/yungbote/adbroker-backend/internal/inference/config"
	"github.com/yungbote/adbroker-backend/internal/platform/envutil"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
	"github.com/yungbote/adbroker-backend/internal/services"
)

type StoreDriver string

const (
	StoreDriverSQLite   StoreDriver = "sqlite"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverRedis    StoreDriver = "redis"
)

type Config struct {
	Port            string
	ServiceName     string
	Environment     string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	StoreDriver     StoreDriver
	StoreMaxRetries int
	SQLitePath      string
	Postgres        db.PostgresConfig
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string

	BillingEpoch         time.Time
	CompanyDirectoryPath string
	SnowflakeNode        int64

	Engine         config.EngineConfig
	Classification services.ClassificationConfig

	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	apiKey := envutil.String("CLASSIFIER_API_KEY", "", log)
	if apiKey == "" {
		apiKey = envutil.String("OPENAI_API_KEY", "", log)
	}
	timeout := envutil.Duration("CLASSIFIER_TIMEOUT", 20*time.Second, log)

	return Config{
		Port:            envutil.String("PORT", "8000", log),
		ServiceName:     envutil.String("SERVICE_NAME", "adbroker", log),
		Environment:     envutil.String("APP_ENV", "development", log),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 10*time.Second, log),
		CORSOrigins:     splitList(envutil.String("CORS_ALLOW_ORIGINS", "", log)),

		StoreDriver:     StoreDriver(strings.ToLower(envutil.String("STORE_DRIVER", string(StoreDriverSQLite), log))),
		StoreMaxRetries: envutil.Int("STORE_MAX_RETRIES", 8, log),
		SQLitePath:      envutil.String("SQLITE_PATH", "adbroker.db", log),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost", log),
			Port:     envutil.String("POSTGRES_PORT", "5432", log),
			User:     envutil.String("POSTGRES_USER", "postgres", log),
			Password: envutil.String("POSTGRES_PASSWORD", "", log),
			Name:     envutil.String("POSTGRES_NAME", "adbroker", log),
		},
		RedisAddr:      envutil.String("REDIS_ADDR", "", log),
		RedisPassword:  envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:        envutil.Int("REDIS_DB", 0, log),
		RedisKeyPrefix: envutil.String("REDIS_KEY_PREFIX", "adbroker:", log),

		BillingEpoch:         envutil.Date("BILLING_EPOCH", domain.DefaultBillingEpoch, log),
		CompanyDirectoryPath: envutil.String("COMPANY_DIRECTORY_PATH", "", log),
		SnowflakeNode:        int64(envutil.Int("SNOWFLAKE_NODE", 1, log)),

		Engine: config.EngineConfig{
			Type:                envutil.String("CLASSIFIER_ENGINE", "mock", log),
			BaseURL:             envutil.String("CLASSIFIER_BASE_URL", "", log),
			APIKey:              apiKey,
			ChatCompletionsPath: envutil.String("CLASSIFIER_CHAT_PATH", "", log),
			Timeout:             timeout,
		},
		Classification: services.ClassificationConfig{
			Model:          envutil.String("CLASSIFIER_MODEL", "gpt-4.1", log),
			Timeout:        timeout,
			MaxConcurrency: int64(envutil.Int("CLASSIFIER_MAX_CONCURRENCY", 8, log)),
			Rates: domain.CostRates{
				InputPer1K:  envutil.Float("CLASSIFIER_COST_INPUT_PER_1K", 0.0005, log),
				OutputPer1K: envutil.Float("CLASSIFIER_COST_OUTPUT_PER_1K", 0.0015, log),
			},
			Temperature: envutil.Float("CLASSIFIER_TEMPERATURE", 0.1, log),
			MaxTokens:   envutil.Int("CLASSIFIER_MAX_TOKENS", 1000, log),
		},

		MetricsAddr: envutil.String("METRICS_ADDR", "", log),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
