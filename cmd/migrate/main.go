package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"proofpop/internal/config"
	"proofpop/internal/migrations"
)

const usage = `usage: migrate <command>

commands:
  up              apply all pending migrations
  down            roll back the last migration
  force VERSION   mark VERSION as applied without running it
  version         print the current version
  reset           roll back everything and apply again`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	dbURL := migrations.DatabaseURL(cfg)

	switch os.Args[1] {
	case "up":
		err = migrations.Up(dbURL)
	case "down":
		err = migrations.Down(dbURL)
	case "force":
		if len(os.Args) < 3 {
			log.Fatal("force requires a version")
		}
		err = migrations.Force(dbURL, os.Args[2])
	case "version":
		version, dirty, verr := migrations.Version(dbURL)
		if verr == nil {
			fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		}
		err = verr
	case "reset":
		err = migrations.Reset(dbURL)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("Migration command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}
