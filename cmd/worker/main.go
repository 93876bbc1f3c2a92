package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"proofpop/internal/cache"
	"proofpop/internal/config"
	"proofpop/internal/db"
	"proofpop/internal/install"
	"proofpop/internal/kms"
	"proofpop/internal/queue"
	"proofpop/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.DB.Close()
	store := db.NewStore(db.DB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := cache.NewRedisClient(cfg.RedisAddr)
	defer rdb.Close()

	w := worker.NewWorker(worker.Options{
		RedisAddr:   cfg.RedisAddr,
		Concurrency: cfg.WorkerConcurrency,
		IPSalt:      cfg.IPSalt,
	}, store).WithBatchInvalidator(cache.New(rdb, cfg.BatchCacheTTL))

	if cfg.FirebaseEnabled {
		if err := config.InitFireStore(ctx); err != nil {
			slog.Error("Failed to initialize Firestore, install mirroring disabled", "error", err)
		} else if err := install.InitStatusService(); err == nil {
			w.WithInstallRecorder(install.GetStatusService())
			defer config.CloseFirebaseConnection()
		}
	}

	if cfg.KMSKeyID != "" {
		if err := config.InitKMS(ctx, cfg.KMSKeyID); err != nil {
			slog.Error("Failed to initialize KMS, secret rotation disabled", "error", err)
		} else {
			scheduler := queue.NewClient(cfg.RedisAddr)
			defer scheduler.Close()

			rotator := kms.NewRotator(store, scheduler)
			if err := rotator.InitRotation(ctx, cfg.KMSKeyID); err != nil {
				slog.Error("Failed to initialize secret rotation", "error", err)
			}
			w.WithSecretRotator(rotator)
		}
	}

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
