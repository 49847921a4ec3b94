//go:build integration

// Package containers starts throwaway Postgres and Redis instances for
// integration tests.
package containers

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stwalsh4118/landrecords/internal/database"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// StartPostgres starts Postgres 16, applies the schema and returns an open
// Database. TEST_PG_DSN reuses an existing database instead.
func StartPostgres(t *testing.T) *database.Database {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		pgC, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("landrecords"),
			tcpostgres.WithUsername("testuser"),
			tcpostgres.WithPassword("testpass"),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

		dsn, err = pgC.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("failed to get postgres connection string: %v", err)
		}
	}

	db, err := database.Open(ctx, dsn, 1, 4)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// StartRedis starts Redis 7 and returns a connected client.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	addr, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	opts, err := redis.ParseURL(addr)
	if err != nil {
		t.Fatalf("failed to parse redis URL: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("failed to ping redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client
}
