package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"proofpop/internal/config"
)

var ErrNotFound = errors.New("not found")

var DB *sqlx.DB

func InitDB(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	DB, err = sqlx.Connect("postgres", cfg.DatabaseDSN())
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := DB.Ping(); err != nil {
		slog.Error("Failed to ping database", "error", err)
		return fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to database", "host", cfg.DBHost, "name", cfg.DBName)
	return nil
}

// Store runs the service's queries against one connection pool.
type Store struct {
	db *sqlx.DB
}

func NewStore(conn *sqlx.DB) *Store {
	return &Store{db: conn}
}
