package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/config"
)

// Redis wraps the shared go-redis client used for the maintenance cache
// and the PayPal token cache. An unreachable Redis degrades those paths
// but never blocks startup.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects the client and probes it once.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Ping verifies Redis connectivity for readiness probes.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}
