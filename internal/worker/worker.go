package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"proofpop/internal/db"
	"proofpop/internal/install"
	"proofpop/internal/queue"
	"proofpop/internal/security"
)

// EventStore is the write side used by the task handlers.
type EventStore interface {
	GetSite(ctx context.Context, siteID string) (*db.Site, error)
	InsertEvent(ctx context.Context, e db.EventRecord) (string, error)
	MarkVerified(ctx context.Context, siteID string, at time.Time) error
}

// InstallRecorder mirrors verifications for the dashboard.
type InstallRecorder interface {
	RecordVerification(ctx context.Context, v install.Verification) error
}

// BatchInvalidator drops cached widget batches so new events show up
// before the cache entry expires.
type BatchInvalidator interface {
	InvalidateSite(ctx context.Context, siteID string) error
}

type SecretRotator interface {
	Rotate(ctx context.Context, keyID string) error
}

type Options struct {
	RedisAddr   string
	Concurrency int
	// IPSalt keys the hash of masked visitor addresses.
	IPSalt string
}

type Worker struct {
	server   *asynq.Server
	store    EventStore
	installs InstallRecorder
	rotator  SecretRotator
	batches  BatchInvalidator
	ipSalt   string
}

func NewWorker(opts Options, store EventStore) *Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}

	server := asynq.NewServer(
		queue.RedisOpt(opts.RedisAddr),
		asynq.Config{
			Concurrency: opts.Concurrency,
			Queues: map[string]int{
				queue.QueueTrackEvent:     10,
				queue.QueueVerifyPixel:    3,
				queue.QueueSecretRotation: 1,
			},
		},
	)

	return &Worker{
		server: server,
		store:  store,
		ipSalt: opts.IPSalt,
	}
}

// WithInstallRecorder enables Firestore mirroring of verifications.
func (w *Worker) WithInstallRecorder(r InstallRecorder) *Worker {
	w.installs = r
	return w
}

func (w *Worker) WithBatchInvalidator(b BatchInvalidator) *Worker {
	w.batches = b
	return w
}

func (w *Worker) WithSecretRotator(r SecretRotator) *Worker {
	w.rotator = r
	return w
}

func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.QueueTrackEvent, w.handleTrackEvent)
	mux.HandleFunc(queue.QueueVerifyPixel, w.handleVerifyPixel)
	if w.rotator != nil {
		mux.HandleFunc(queue.QueueSecretRotation, w.handleSecretRotation)
	}
	return mux
}

func (w *Worker) Start(ctx context.Context) error {
	slog.Info("Starting worker",
		"queues", []string{queue.QueueTrackEvent, queue.QueueVerifyPixel, queue.QueueSecretRotation})

	if err := w.server.Start(w.Mux()); err != nil {
		return err
	}

	slog.Info("Worker started successfully")
	<-ctx.Done()

	w.server.Shutdown()
	slog.Info("Worker stopped")
	return nil
}

func (w *Worker) handleTrackEvent(ctx context.Context, t *asynq.Task) error {
	var p queue.TrackPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid track payload: %v: %w", err, asynq.SkipRetry)
	}

	site, err := w.store.GetSite(ctx, p.SiteID)
	if errors.Is(err, db.ErrNotFound) {
		slog.Warn("Dropping event for unknown site", "site_id", p.SiteID, "event_type", p.EventType)
		return nil
	}
	if err != nil {
		return err
	}

	record := db.EventRecord{
		SiteID:    p.SiteID,
		SessionID: p.SessionID,
		EventType: p.EventType,
		URL:       p.URL,
		Referrer:  p.Referrer,
		UserAgent: p.UserAgent,
		Metadata:  p.EventData,
		CreatedAt: p.Timestamp,
	}
	if site.MaskIP {
		record.IPHash = security.HashIP(p.IP, w.ipSalt)
	} else {
		record.IP = p.IP
	}

	id, err := w.store.InsertEvent(ctx, record)
	if err != nil {
		slog.Error("Failed to store event", "error", err, "site_id", p.SiteID, "event_type", p.EventType)
		return err
	}

	if w.batches != nil {
		if err := w.batches.InvalidateSite(ctx, p.SiteID); err != nil {
			slog.Warn("Failed to invalidate cached batches", "error", err, "site_id", p.SiteID)
		}
	}

	slog.Debug("Stored event", "event_id", id, "site_id", p.SiteID, "event_type", p.EventType)
	return nil
}

func (w *Worker) handleVerifyPixel(ctx context.Context, t *asynq.Task) error {
	var p queue.VerifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid verify payload: %v: %w", err, asynq.SkipRetry)
	}

	at := p.CheckedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if err := w.store.MarkVerified(ctx, p.SiteID, at); err != nil {
		slog.Error("Failed to mark site verified", "error", err, "site_id", p.SiteID)
		return err
	}

	if w.installs != nil {
		err := w.installs.RecordVerification(ctx, install.Verification{
			SiteID:     p.SiteID,
			URL:        p.URL,
			UserAgent:  p.UserAgent,
			SessionID:  p.SessionID,
			Platform:   p.Platform,
			VerifiedAt: at,
		})
		if err != nil {
			slog.Warn("Failed to mirror pixel verification", "error", err, "site_id", p.SiteID)
		}
	}

	slog.Info("Pixel verified", "site_id", p.SiteID, "platform", p.Platform)
	return nil
}

func (w *Worker) handleSecretRotation(ctx context.Context, t *asynq.Task) error {
	var p queue.SecretRotationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid rotation payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.rotator.Rotate(ctx, p.KeyID)
}
