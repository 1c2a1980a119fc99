package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

const (
	defaultPurgeLockTTL    = 2 * time.Minute
	defaultPurgeLockPrefix = "leadops:purge:"
)

// ErrLockHeld is returned when another caller is already purging the lead.
var ErrLockHeld = errors.New("lead purge already in progress")

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type ReleaseFunc func(ctx context.Context) error

// PurgeLock serializes cascade runs per lead across processes.
type PurgeLock interface {
	Acquire(ctx context.Context, leadID uuid.UUID) (ReleaseFunc, error)
}

type purgeLock struct {
	log    *logger.Logger
	rdb    goredis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewPurgeLock(log *logger.Logger, rdb goredis.Cmdable, ttl time.Duration) (PurgeLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = defaultPurgeLockTTL
	}
	return &purgeLock{
		log:    log.With("service", "RedisPurgeLock"),
		rdb:    rdb,
		ttl:    ttl,
		prefix: defaultPurgeLockPrefix,
	}, nil
}

func (l *purgeLock) key(leadID uuid.UUID) string { return l.prefix + leadID.String() }

func (l *purgeLock) Acquire(ctx context.Context, leadID uuid.UUID) (ReleaseFunc, error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redis purge lock not initialized")
	}
	key := l.key(leadID)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire purge lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int64()
		if err != nil {
			return fmt.Errorf("release purge lock: %w", err)
		}
		if n == 0 {
			l.log.Warn("purge lock expired before release", "lead_id", leadID, "ttl", l.ttl.String())
		}
		return nil
	}, nil
}
