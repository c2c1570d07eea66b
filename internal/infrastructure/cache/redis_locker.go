package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	stockapp "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "labstock:lock:item:"

// ErrLockTimeout is returned when the item stays locked for longer than the wait budget.
var ErrLockTimeout = shared.ErrConcurrencyConflict

// releaseScript deletes the key only if it still carries our token, so an
// expired lock taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisItemLocker serializes item mutations across service instances with
// SET NX PX and a token checked on release.
type RedisItemLocker struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	wait      time.Duration
	poll      time.Duration
	logger    *zap.Logger
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisItemLocker creates a locker on an existing client.
func NewRedisItemLocker(client redis.UniversalClient, cfg config.StockConfig, logger *zap.Logger) *RedisItemLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &RedisItemLocker{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       cfg.LockTTL,
		wait:      cfg.LockWait,
		poll:      25 * time.Millisecond,
		logger:    logger,
	}
	if l.ttl <= 0 {
		l.ttl = 10 * time.Second
	}
	if l.wait <= 0 {
		l.wait = 5 * time.Second
	}
	return l
}

func (l *RedisItemLocker) key(itemID uuid.UUID) string {
	return l.keyPrefix + itemID.String()
}

// Lock polls SET NX until it wins, the wait budget runs out or ctx is done.
func (l *RedisItemLocker) Lock(ctx context.Context, itemID uuid.UUID) (func(), error) {
	key := l.key(itemID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock item %s: %w", itemID, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-time.After(l.poll):
		case <-ctx.Done():
			return nil, fmt.Errorf("lock item %s: %w", itemID, ctx.Err())
		}
	}

	return func() {
		// the caller's ctx may already be cancelled
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("failed to release item lock", zap.String("item_id", itemID.String()), zap.Error(err))
		}
	}, nil
}

var _ stockapp.ItemLocker = (*RedisItemLocker)(nil)
