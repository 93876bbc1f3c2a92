package migrations

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
)

// Up runs all available migrations
func Up(dbURL string) error {
	m, err := NewMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Migrations applied successfully")
	return nil
}

// Down rolls back one migration
func Down(dbURL string) error {
	m, err := NewMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("Migration rolled back successfully")
	return nil
}

// Force sets the recorded version without running anything, to recover
// from a dirty state.
func Force(dbURL, version string) error {
	v, err := strconv.Atoi(version)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}

	m, err := NewMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Force(v); err != nil {
		return fmt.Errorf("failed to force migration to version %d: %w", v, err)
	}

	slog.Info("Migration forced successfully", "version", v)
	return nil
}

func Version(dbURL string) (uint, bool, error) {
	m, err := NewMigrator(dbURL)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Reset drops every table and re-runs all migrations. Development only.
func Reset(dbURL string) error {
	m, err := NewMigrator(dbURL)
	if err != nil {
		return err
	}
	if err := m.Drop(); err != nil {
		m.Close()
		return fmt.Errorf("failed to drop database: %w", err)
	}
	m.Close()

	if err := Up(dbURL); err != nil {
		return fmt.Errorf("failed to run migrations after reset: %w", err)
	}
	return nil
}
