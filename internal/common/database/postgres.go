// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"adinsight-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// Connection lifetimes are kept short of the typical cloud LB idle
// timeout so the pool never hands a worker a half-dead connection.
const (
	connMaxLifetime = 30 * time.Minute
	connMaxIdleTime = 4 * time.Minute
)

// PostgresClient owns the connection pool shared by every worker that
// touches the campaign store. Handlers receive the embedded *sql.DB
// directly; the wrapper exists for lifecycle management and probes.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a lazily-connected pool against the campaign
// database. The first query dials, so a broken address surfaces on
// Ping rather than here.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	maxOpen := cfg.MaxConnections
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen / 5
		if maxIdle < 2 {
			maxIdle = 2
		}
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	return &PostgresClient{DB: db}, nil
}

// Ping dials if needed and verifies the pool can reach the database.
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close releases the pool. Safe to call on a nil-initialized client.
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
