package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"proofpop/internal/notification"
)

type eventRow struct {
	ID        string    `db:"id"`
	SiteID    string    `db:"site_id"`
	SessionID string    `db:"session_id"`
	EventType string    `db:"event_type"`
	CreatedAt time.Time `db:"created_at"`
	Metadata  []byte    `db:"metadata"`
}

// EventRecord is one visitor action as written by the tracking worker.
type EventRecord struct {
	ID        string
	SiteID    string
	SessionID string
	EventType string
	URL       string
	Referrer  string
	UserAgent string
	// IPHash is empty unless the site asked for masked addresses.
	IPHash    string
	IP        string
	Metadata  map[string]any
	CreatedAt time.Time
}

const recentEventsQuery = `
	SELECT id, site_id, COALESCE(session_id, '') AS session_id, event_type, created_at,
		COALESCE(metadata, '{}'::jsonb) AS metadata
	FROM events
	WHERE site_id = $1 AND event_type = ANY($2) AND created_at >= $3
	ORDER BY created_at DESC
	LIMIT $4`

func (s *Store) RecentEvents(ctx context.Context, q notification.EventQuery) ([]notification.Event, error) {
	types := make([]string, len(q.Types))
	for i, t := range q.Types {
		types[i] = string(t)
	}

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, recentEventsQuery, q.SiteID, pq.Array(types), q.Since, q.Limit); err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	events := make([]notification.Event, 0, len(rows))
	for _, row := range rows {
		e := notification.Event{
			ID:        row.ID,
			SiteID:    row.SiteID,
			SessionID: row.SessionID,
			EventType: notification.EventType(row.EventType),
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal(row.Metadata, &e.Metadata); err != nil {
			slog.Warn("Ignoring malformed event metadata", "event_id", row.ID, "error", err)
		}
		events = append(events, e)
	}
	return events, nil
}

const liveSessionsQuery = `
	SELECT COUNT(DISTINCT session_id)
	FROM events
	WHERE site_id = $1 AND event_type = 'page_view' AND created_at >= $2
		AND session_id IS NOT NULL AND session_id <> ''`

func (s *Store) CountLiveSessions(ctx context.Context, siteID string, since time.Time) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, liveSessionsQuery, siteID, since); err != nil {
		return 0, fmt.Errorf("failed to count live sessions: %w", err)
	}
	return count, nil
}

func (s *Store) InsertEvent(ctx context.Context, e EventRecord) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}

	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to encode event metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, site_id, session_id, event_type, url, referrer, user_agent, ip_address, ip_hash, metadata, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11)
	`, e.ID, e.SiteID, e.SessionID, e.EventType, e.URL, e.Referrer, e.UserAgent, e.IP, e.IPHash, metadata, e.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return e.ID, nil
}
