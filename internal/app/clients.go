package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/leadops-backend/internal/clients/redis"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type Clients struct {
	Redis     *goredis.Client
	PurgeLock redis.PurgeLock
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	rdb, err := redis.NewClient(ctx, log, cfg.RedisAddr)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		return Clients{}, nil
	}
	lock, err := redis.NewPurgeLock(log, rdb, cfg.PurgeLockTTL)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init purge lock: %w", err)
	}
	return Clients{Redis: rdb, PurgeLock: lock}, nil
}
