package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stwalsh4118/landrecords/internal/config"
)

// Database wraps the pgx connection pool.
type Database struct {
	Pool *pgxpool.Pool
}

// DSN builds a PostgreSQL connection string from cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

// NewPostgresPool creates a pgx pool sized by cfg and verifies it with a ping.
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	return Open(ctx, DSN(cfg), cfg.PoolMin, cfg.PoolMax)
}

// Open creates a pool from a DSN. Test containers hand out DSNs directly.
func Open(ctx context.Context, dsn string, poolMin, poolMax int) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = int32(poolMin)
	poolConfig.MaxConns = int32(poolMax)

	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Second
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{Pool: pool}, nil
}

// Ping checks if the database connection is alive.
func (db *Database) Ping(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	return db.Pool.Ping(ctx)
}

// Close closes the pool, waiting for acquired connections to be released.
func (db *Database) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}

// Stats returns statistics about the connection pool.
func (db *Database) Stats() *pgxpool.Stat {
	if db == nil || db.Pool == nil {
		return nil
	}
	return db.Pool.Stat()
}
