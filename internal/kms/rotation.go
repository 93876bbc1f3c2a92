// Package kms keeps site ingest secrets encrypted under the current KMS key.
package kms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"proofpop/internal/config"
	"proofpop/internal/db"
)

type SecretStore interface {
	EnsureSecretRotation(ctx context.Context, keyID string, now time.Time) (bool, error)
	CompleteSecretRotation(ctx context.Context, keyID string, now time.Time) error
	SiteSecrets(ctx context.Context) ([]db.SiteSecret, error)
	UpdateIngestSecret(ctx context.Context, siteID, encrypted string) error
}

type Scheduler interface {
	ScheduleSecretRotation(keyID string, in time.Duration) error
}

type Rotator struct {
	store     SecretStore
	scheduler Scheduler
	reencrypt func(ctx context.Context, encrypted string) (string, error)
	now       func() time.Time
}

func NewRotator(store SecretStore, scheduler Scheduler) *Rotator {
	return &Rotator{
		store:     store,
		scheduler: scheduler,
		reencrypt: config.ReEncryptSecret,
		now:       time.Now,
	}
}

// InitRotation makes sure a rotation record exists for keyID and that the
// next rotation is scheduled.
func (r *Rotator) InitRotation(ctx context.Context, keyID string) error {
	if keyID == "" {
		return errors.New("AWS_KMS_KEY_ID environment variable not set")
	}

	created, err := r.store.EnsureSecretRotation(ctx, keyID, r.now())
	if err != nil {
		slog.Error("failed to check rotation record", "error", err)
		return err
	}
	if created {
		slog.Info("Created new secret rotation record", "key_id", keyID)
	}

	if err := r.scheduler.ScheduleSecretRotation(keyID, db.SecretRotationInterval); err != nil {
		slog.Error("failed to schedule secret rotation", "error", err)
		return err
	}
	return nil
}

// Rotate re-encrypts every stored site secret under keyID. A site that
// fails is logged and left on its old ciphertext, which stays decryptable.
func (r *Rotator) Rotate(ctx context.Context, keyID string) error {
	secrets, err := r.store.SiteSecrets(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, s := range secrets {
		encrypted, err := r.reencrypt(ctx, s.IngestSecret)
		if err != nil {
			slog.Error("Failed to re-encrypt ingest secret", "site_id", s.SiteID, "error", err)
			failed++
			continue
		}
		if err := r.store.UpdateIngestSecret(ctx, s.SiteID, encrypted); err != nil {
			slog.Error("Failed to store re-encrypted secret", "site_id", s.SiteID, "error", err)
			failed++
		}
	}

	if err := r.store.CompleteSecretRotation(ctx, keyID, r.now()); err != nil {
		return err
	}
	if err := r.scheduler.ScheduleSecretRotation(keyID, db.SecretRotationInterval); err != nil {
		return fmt.Errorf("failed to schedule next rotation: %w", err)
	}

	slog.Info("Rotated site ingest secrets", "key_id", keyID, "sites", len(secrets), "failed", failed)
	return nil
}
