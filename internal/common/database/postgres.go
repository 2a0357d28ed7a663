// internal/common/database/postgres.go
// PostgreSQL connection and configuration

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresConfig holds connection pool configuration
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	PingTimeout  time.Duration
}

// DefaultPostgresConfig returns the pool settings used when only a URL is known
func DefaultPostgresConfig(databaseURL string) *PostgresConfig {
	return &PostgresConfig{
		URL:          databaseURL,
		MaxOpenConns: 25,
		MaxIdleConns: 5,
		MaxLifetime:  5 * time.Minute,
		PingTimeout:  5 * time.Second,
	}
}

// NewPostgresDB creates a new PostgreSQL connection
func NewPostgresDB(config *PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), config.PingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewPostgresDBFromURL creates a connection from a URL with default pool settings
func NewPostgresDBFromURL(databaseURL string) (*sqlx.DB, error) {
	return NewPostgresDB(DefaultPostgresConfig(databaseURL))
}
