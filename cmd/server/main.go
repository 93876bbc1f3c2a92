package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"proofpop/internal/auth"
	"proofpop/internal/cache"
	"proofpop/internal/config"
	"proofpop/internal/db"
	"proofpop/internal/handlers"
	"proofpop/internal/install"
	"proofpop/internal/notification"
	"proofpop/internal/queue"
	"proofpop/internal/routes"
	"proofpop/internal/security"
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

	auth.InitSecurity(cfg.TrackRatePerMinute)

	tasks := queue.NewClient(cfg.RedisAddr)
	defer tasks.Close()

	rdb := cache.NewRedisClient(cfg.RedisAddr)
	defer rdb.Close()

	ctx := context.Background()

	var ingest *auth.IngestAuth
	if cfg.KMSKeyID != "" {
		if err := config.InitKMS(ctx, cfg.KMSKeyID); err != nil {
			slog.Error("Failed to initialize KMS, ingest API disabled", "error", err)
		} else {
			ingest = auth.NewIngestAuth(store)
		}
	}

	opts := handlers.Options{
		Widgets: store,
		Sites:   store,
		Deriver: notification.NewDeriver(store),
		Cache:   cache.New(rdb, cfg.BatchCacheTTL),
		Tasks:   tasks,
	}
	if cfg.FirebaseEnabled {
		if err := config.InitFireStore(ctx); err != nil {
			slog.Error("Failed to initialize Firestore, install status disabled", "error", err)
		} else if err := install.InitStatusService(); err == nil {
			opts.Installs = install.GetStatusService()
			defer config.CloseFirebaseConnection()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	api := e.Group("/api")
	routes.SetupRoutes(api, handlers.New(opts), ingest, security.NewKeyLimiter(cfg.IngestRatePerSec, int(cfg.IngestRatePerSec)*2))

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
}
