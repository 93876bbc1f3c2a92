//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"proofpop/internal/config"
	"proofpop/internal/migrations"
)

var binaries = []string{"server", "worker", "migrate", "preview"}

// MigrateUp runs all pending migrations
func MigrateUp() error {
	dbURL, err := databaseURL()
	if err != nil {
		return err
	}
	return migrations.Up(dbURL)
}

// MigrateDown rolls back the last migration
func MigrateDown() error {
	dbURL, err := databaseURL()
	if err != nil {
		return err
	}
	return migrations.Down(dbURL)
}

// MigrateReset rolls every migration back and applies them again
func MigrateReset() error {
	dbURL, err := databaseURL()
	if err != nil {
		return err
	}
	return migrations.Reset(dbURL)
}

// MigrateCreate creates new migration files
func MigrateCreate(name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	return run("migrate", "create", "-ext", "sql", "-dir", "internal/migrations/sql", "-seq", name)
}

// Build compiles every binary into bin/
func Build() error {
	for _, name := range binaries {
		if err := run("go", "build", "-o", "bin/"+name, "./cmd/"+name); err != nil {
			return err
		}
	}
	return nil
}

// Test runs the test suite
func Test() error {
	return run("go", "test", "./...")
}

// Preview plays a site's notifications in the terminal
func Preview(siteID string) error {
	return run("go", "run", "./cmd/preview", "-site", siteID)
}

// Helper functions

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return migrations.DatabaseURL(cfg), nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
