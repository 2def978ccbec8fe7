package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"

	"gitlab.connectwisedev.com/product-scanner/pkg/config"
)

// DBClient holds the PostgreSQL database connection
type DBClient struct {
	db *sql.DB
}

// NewPostgresClient opens and pings a PostgreSQL connection pool.
func NewPostgresClient(ctx context.Context, cfg config.DBConfig) (*DBClient, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("Successfully connected to PostgreSQL")
	return &DBClient{db: db}, nil
}

// NewDBClient wraps an already opened pool.
func NewDBClient(db *sql.DB) *DBClient {
	return &DBClient{db: db}
}

// Close closes the database connection
func (c *DBClient) Close() {
	if c != nil && c.db != nil {
		c.db.Close()
		log.Info().Msg("PostgreSQL connection closed.")
	}
}

// GetDB returns the underlying *sql.DB instance
func (c *DBClient) GetDB() *sql.DB {
	if c == nil {
		return nil
	}
	return c.db
}
