package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName tags the service's sessions in pg_stat_activity.
const ApplicationName = "claim-scrubber"

type PoolOptions struct {
	URL      string
	MaxConns int32
	MinConns int32
	// Schema is put first on every connection's search_path. Empty means
	// DefaultSchema.
	Schema string
}

// NewPool connects and pings the database.
func NewPool(ctx context.Context, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = opts.MaxConns
	cfg.MinConns = opts.MinConns
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	schema := opts.Schema
	if schema == "" {
		schema = DefaultSchema
	}
	rp := cfg.ConnConfig.RuntimeParams
	rp["search_path"] = `"` + identQuoter.Replace(schema) + `"`
	if _, ok := rp["application_name"]; !ok {
		rp["application_name"] = ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
