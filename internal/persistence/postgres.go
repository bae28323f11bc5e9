package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/config"
)

// Postgres owns the pgx pool backing every repository. A nil pool is a
// valid degraded state so the API can boot without a database locally.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres builds and verifies the connection pool. Without a DSN the
// service starts with persistence disabled and readiness reports it.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; skipping database connection")
		return &Postgres{}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	applyPoolLimits(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("connected to postgres",
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns))
	return &Postgres{Pool: pool}, nil
}

func applyPoolLimits(poolCfg *pgxpool.Config, cfg config.PostgresConfig) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
}

// Ping verifies database connectivity for readiness probes.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// PoolHandle returns the underlying pgx pool, nil when disabled.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
