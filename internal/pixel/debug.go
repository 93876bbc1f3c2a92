package pixel

import (
	"strconv"

	"proofpop/internal/engine"
	"proofpop/internal/notification"
	"proofpop/internal/widget"
)

// Debug exposes troubleshooting helpers for a running pixel.
type Debug struct {
	p *Pixel
}

func (p *Pixel) Debug() Debug { return Debug{p: p} }

// State is a dump of the pixel for support sessions.
type State struct {
	SiteID        string          `json:"site_id"`
	SessionID     string          `json:"session_id"`
	Platform      Platform        `json:"platform"`
	Verified      bool            `json:"verified"`
	Stopped       bool            `json:"stopped"`
	Widgets       []string        `json:"widgets"`
	Notifications int             `json:"notifications"`
	Playback      engine.Snapshot `json:"playback"`
}

func (d Debug) State() State {
	p := d.p
	p.mu.Lock()
	st := State{
		SiteID:        p.siteID,
		SessionID:     p.sessionID,
		Platform:      p.platform,
		Verified:      p.verified,
		Stopped:       p.stopped,
		Widgets:       append([]string(nil), p.order...),
		Notifications: p.queued,
	}
	p.mu.Unlock()

	st.Playback = p.scheduler.Snapshot()
	return st
}

// TriggerTest shows a synthetic notification right away, styled like the
// first loaded widget.
func (d Debug) TriggerTest() *notification.Notification {
	p := d.p

	p.mu.Lock()
	settings := widget.Normalize(widget.Record{TemplateID: widget.TemplateRecentPurchase})
	widgetID := "test"
	if len(p.order) > 0 {
		widgetID = p.order[0]
		settings = p.widgets[widgetID]
	}
	p.mu.Unlock()

	now := p.clock.Now()
	value := 49.99
	n := notification.Notification{
		ID:         "test_" + strconv.FormatInt(now.UnixMilli(), 10),
		WidgetID:   widgetID,
		EventType:  notification.EventPurchase,
		Title:      "Test notification",
		Message:    "Someone just purchased a test product",
		Icon:       "🧪",
		TimeAgo:    "Just now",
		OccurredAt: now,
		Details: notification.Details{
			CustomerName: "Test Customer",
			ProductName:  "Test Product",
			Value:        &value,
		},
	}
	injected := n.WithSettings(settings)
	p.scheduler.Inject(injected)
	return injected
}
