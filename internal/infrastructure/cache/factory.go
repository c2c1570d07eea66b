package cache

import (
	"context"
	"fmt"
	"io"

	stockapp "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewItemLocker builds the locker selected by stock.locker. The returned
// closer releases the Redis connection and is a no-op for the memory locker.
func NewItemLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (stockapp.ItemLocker, io.Closer, error) {
	switch cfg.Stock.Locker {
	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using Redis item locker", zap.String("addr", cfg.Redis.Addr()))
		return NewRedisItemLocker(client, cfg.Stock, logger), client, nil
	case "memory", "":
		logger.Info("using in-memory item locker")
		return NewInMemoryItemLocker(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown item locker %q", cfg.Stock.Locker)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
