package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq" // postgres driver
)

const dialTimeout = 2 * time.Minute

// Postgres opens and pings a Postgres connection, retrying with exponential
// backoff so workers survive a database that is still coming up.
func Postgres(ctx context.Context, url string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ping := func() error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("postgres not ready, retrying", "error", err)
			return err
		}
		return nil
	}
	if err := retry(ctx, ping); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Info("connected to postgres")
	return db, nil
}

// Redis connects and pings a Redis client with the same retry behavior.
func Redis(ctx context.Context, addr string, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ping := func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not ready, retrying", "error", err)
			return err
		}
		return nil
	}
	if err := retry(ctx, ping); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("connected to redis")
	return client, nil
}

func retry(ctx context.Context, op backoff.Operation) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = dialTimeout
	return backoff.Retry(op, backoff.WithContext(policy, ctx))
}
