package app

import (
	"time"

	"github.com/yungbote/leadops-backend/internal/data/db"
	"github.com/yungbote/leadops-backend/internal/platform/envutil"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type Config struct {
	HTTPAddr        string
	Environment     string
	ServiceName     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	Postgres    db.PostgresConfig
	AutoMigrate bool

	RedisAddr string

	PurgeParallelism     int
	PurgeRequireExisting bool
	PurgeLockTTL         time.Duration

	TracingEnabled bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		HTTPAddr:        envutil.String("HTTP_ADDR", ":8080"),
		Environment:     envutil.String("APP_ENV", "development"),
		ServiceName:     envutil.String("SERVICE_NAME", "leadops"),
		ShutdownTimeout: envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil),

		Postgres:    db.PostgresConfigFromEnv(),
		AutoMigrate: envutil.Bool("POSTGRES_AUTO_MIGRATE", true),

		RedisAddr: envutil.String("REDIS_ADDR", ""),

		PurgeParallelism:     envutil.Int("LEAD_PURGE_PARALLELISM", 4),
		PurgeRequireExisting: envutil.Bool("LEAD_PURGE_REQUIRE_EXISTING", false),
		PurgeLockTTL:         envutil.Duration("LEAD_PURGE_LOCK_TTL", 2*time.Minute),

		TracingEnabled: envutil.Bool("OTEL_ENABLED", false),
	}
	if cfg.PurgeParallelism < 1 {
		log.Warn("LEAD_PURGE_PARALLELISM below 1; running batches sequentially", "value", cfg.PurgeParallelism)
		cfg.PurgeParallelism = 1
	}
	return cfg
}
