package pixel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"proofpop/internal/api"
	"proofpop/internal/engine"
)

// Tracker sends tracking calls in the background. Calls over the rate
// limit are dropped; nothing waits for a call to finish.
type Tracker struct {
	client  *Client
	limiter *rate.Limiter
	clock   engine.Clock
	timeout time.Duration

	siteID    string
	sessionID string
	url       string
	referrer  string
	userAgent string

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

func newTracker(client *Client, limit rate.Limit, burst int, clock engine.Clock, h Host, siteID, sessionID string) *Tracker {
	return &Tracker{
		client:    client,
		limiter:   rate.NewLimiter(limit, burst),
		clock:     clock,
		timeout:   5 * time.Second,
		siteID:    siteID,
		sessionID: sessionID,
		url:       h.URL,
		referrer:  h.Referrer,
		userAgent: h.UserAgent,
	}
}

// Track fires one tracking call. It never blocks.
func (t *Tracker) Track(eventType string, data map[string]any) {
	eventType = normalizeEventName(eventType)
	if eventType == "" {
		return
	}

	body := api.TrackRequest{
		SiteID:    t.siteID,
		SessionID: t.sessionID,
		EventType: eventType,
		URL:       t.url,
		UserAgent: t.userAgent,
		Referrer:  t.referrer,
		Timestamp: t.clock.Now().UTC(),
		EventData: data,
	}
	t.async(eventType, func(ctx context.Context) error {
		return t.client.Track(ctx, body)
	})
}

// async runs send in its own goroutine unless the tracker is closed or
// over its rate.
func (t *Tracker) async(label string, send func(ctx context.Context) error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	if !t.limiter.Allow() {
		slog.Debug("Tracking call dropped by rate limit", "event_type", label)
		return false
	}

	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := send(ctx); err != nil {
			slog.Debug("Tracking call failed", "event_type", label, "error", err)
		}
	}()
	return true
}

// Close stops new calls. Calls already in flight finish on their own.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// Wait blocks until in-flight calls are done.
func (t *Tracker) Wait() {
	t.pending.Wait()
}
