package db

import (
	"context"
	"fmt"
	"time"
)

// SecretRotationInterval is how often site ingest secrets are re-encrypted.
const SecretRotationInterval = 3 * 30 * 24 * time.Hour

// EnsureSecretRotation creates the rotation record for keyID when it does
// not exist yet and reports whether it did.
func (s *Store) EnsureSecretRotation(ctx context.Context, keyID string, now time.Time) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM secret_rotation
			WHERE key_id = $1
		)
	`, keyID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing rotation record: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO secret_rotation (key_id, last_rotated_at, next_rotation_at)
		VALUES ($1, $2, $3)
	`, keyID, now, now.Add(SecretRotationInterval))
	if err != nil {
		return false, fmt.Errorf("failed to create rotation record: %w", err)
	}
	return true, nil
}

func (s *Store) CompleteSecretRotation(ctx context.Context, keyID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE secret_rotation
		SET last_rotated_at = $2,
			next_rotation_at = $3,
			updated_at = $2
		WHERE key_id = $1
	`, keyID, now, now.Add(SecretRotationInterval))
	if err != nil {
		return fmt.Errorf("failed to update rotation record: %w", err)
	}
	return nil
}
