// Package install mirrors pixel verification results into Firestore so the
// dashboard can show whether a site has the pixel installed.
package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"proofpop/internal/config"
)

const (
	installsCollection = "pixel_installs"
	checksCollection   = "checks"
)

// Verification is one pixel check reported by a visitor's browser.
type Verification struct {
	SiteID     string    `firestore:"site_id" json:"site_id"`
	URL        string    `firestore:"url" json:"url"`
	UserAgent  string    `firestore:"user_agent" json:"user_agent"`
	SessionID  string    `firestore:"session_id" json:"session_id"`
	Platform   string    `firestore:"platform" json:"platform"`
	VerifiedAt time.Time `firestore:"verified_at" json:"verified_at"`
}

// Status is the per-site install summary document.
type Status struct {
	SiteID     string    `firestore:"site_id" json:"site_id"`
	Verified   bool      `firestore:"verified" json:"verified"`
	LastURL    string    `firestore:"last_url" json:"last_url"`
	Platform   string    `firestore:"platform" json:"platform"`
	LastSeenAt time.Time `firestore:"last_seen_at" json:"last_seen_at"`
	Checks     int64     `firestore:"verification_count" json:"verification_count"`
}

type StatusService struct {
	db *firestore.Client
}

var StatusServices *StatusService

func NewStatusService(firestoreDB *firestore.Client) *StatusService {
	return &StatusService{db: firestoreDB}
}

func InitStatusService() error {
	if config.FirebaseConnection == nil || config.FirebaseConnection.Firestore == nil {
		return errors.New("firebase connection not initialized. Call config.InitFireStore() first")
	}

	StatusServices = NewStatusService(config.FirebaseConnection.Firestore)
	slog.Info("Install status service initialized successfully")
	return nil
}

// GetStatusService returns nil when Firestore mirroring is not configured.
func GetStatusService() *StatusService {
	return StatusServices
}

// RecordVerification stores the check and folds it into the site summary.
func (s *StatusService) RecordVerification(ctx context.Context, v Verification) error {
	if v.SiteID == "" {
		return errors.New("site id is required")
	}
	if v.VerifiedAt.IsZero() {
		v.VerifiedAt = time.Now().UTC()
	}

	site := s.db.Collection(installsCollection).Doc(v.SiteID)

	if _, err := site.Collection(checksCollection).Doc(uuid.New().String()).Set(ctx, v); err != nil {
		return fmt.Errorf("failed to store pixel check: %w", err)
	}

	_, err := site.Set(ctx, summaryUpdate(v), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update install status: %w", err)
	}
	return nil
}

func summaryUpdate(v Verification) map[string]interface{} {
	update := map[string]interface{}{
		"site_id":            v.SiteID,
		"verified":           true,
		"last_url":           v.URL,
		"last_seen_at":       v.VerifiedAt,
		"verification_count": firestore.Increment(1),
	}
	if v.Platform != "" {
		update["platform"] = v.Platform
	}
	return update
}

func (s *StatusService) GetStatus(ctx context.Context, siteID string) (*Status, error) {
	doc, err := s.db.Collection(installsCollection).Doc(siteID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get install status: %w", err)
	}

	var status Status
	if err := doc.DataTo(&status); err != nil {
		return nil, fmt.Errorf("failed to parse install status: %w", err)
	}
	return &status, nil
}

// RecentChecks lists the newest pixel checks for a site.
func (s *StatusService) RecentChecks(ctx context.Context, siteID string, limit int) ([]*Verification, error) {
	query := s.db.Collection(installsCollection).Doc(siteID).Collection(checksCollection).
		OrderBy("verified_at", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var result []*Verification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get pixel checks: %w", err)
		}

		var v Verification
		if err := doc.DataTo(&v); err != nil {
			slog.Warn("failed to parse pixel check", "doc_id", doc.Ref.ID, "error", err)
			continue
		}
		result = append(result, &v)
	}
	return result, nil
}
