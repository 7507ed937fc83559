// Package pg implements the data-access collaborator against
// PostgreSQL with one JSONB table per collection (a single `doc jsonb`
// column).
package pg

import (
	"context"
	"fmt"
	"time"

	"docbench/bench"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Connect opens a pgx pool against the target and pings it.
func Connect(c bench.ConnConfig, sslmode string) (*pgxpool.Pool, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres dsn")
	}
	config.MaxConns = 10
	config.MinConns = 2

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "postgres connect")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres ping")
	}
	return pool, nil
}
