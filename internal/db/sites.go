package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Site struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Domain       string         `db:"domain" json:"domain"`
	MaskIP       bool           `db:"mask_ip" json:"mask_ip"`
	IngestSecret sql.NullString `db:"ingest_secret" json:"-"`
	VerifiedAt   sql.NullTime   `db:"verified_at" json:"verified_at"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

func (s *Store) GetSite(ctx context.Context, siteID string) (*Site, error) {
	site := &Site{}
	err := s.db.GetContext(ctx, site, `
		SELECT id, name, COALESCE(domain, '') AS domain, mask_ip, ingest_secret, verified_at, created_at
		FROM sites WHERE id = $1
	`, siteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return site, nil
}

// IngestSecret returns the KMS ciphertext of the site's ingest secret.
func (s *Store) IngestSecret(ctx context.Context, siteID string) (string, error) {
	var secret sql.NullString
	err := s.db.GetContext(ctx, &secret, `SELECT ingest_secret FROM sites WHERE id = $1`, siteID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !secret.Valid) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get ingest secret: %w", err)
	}
	return secret.String, nil
}

func (s *Store) MarkVerified(ctx context.Context, siteID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sites SET verified_at = $2 WHERE id = $1`, siteID, at)
	if err != nil {
		return fmt.Errorf("failed to mark site verified: %w", err)
	}
	return nil
}

type SiteSecret struct {
	SiteID       string `db:"id"`
	IngestSecret string `db:"ingest_secret"`
}

func (s *Store) SiteSecrets(ctx context.Context) ([]SiteSecret, error) {
	var secrets []SiteSecret
	err := s.db.SelectContext(ctx, &secrets, `
		SELECT id, ingest_secret FROM sites WHERE ingest_secret IS NOT NULL ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list site secrets: %w", err)
	}
	return secrets, nil
}

func (s *Store) UpdateIngestSecret(ctx context.Context, siteID, encrypted string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sites SET ingest_secret = $2 WHERE id = $1`, siteID, encrypted)
	if err != nil {
		return fmt.Errorf("failed to update ingest secret: %w", err)
	}
	return nil
}
