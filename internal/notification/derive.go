package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"proofpop/internal/format"
	"proofpop/internal/widget"
)

// LiveWindow is how recent a page view must be to count as a live visitor.
const LiveWindow = 5 * time.Minute

// DefaultEventTypes feed widgets whose type cannot be inferred.
var DefaultEventTypes = []EventType{EventPurchase, EventSignup, EventFormSubmit}

var templateEventTypes = map[string]EventType{
	widget.TemplateRecentPurchase: EventPurchase,
	widget.TemplateNewSignup:      EventSignup,
	widget.TemplateFormSubmission: EventFormSubmit,
	widget.TemplateCustomerReview: EventReview,
	widget.TemplateCartActivity:   EventAddToCart,
	widget.TemplateActiveSessions: EventPageView,
}

// Checked in order against the lower-cased widget name.
var nameEventTypes = []struct {
	hint string
	kind EventType
}{
	{"purchase", EventPurchase},
	{"sale", EventPurchase},
	{"signup", EventSignup},
	{"sign up", EventSignup},
	{"review", EventReview},
	{"cart", EventAddToCart},
	{"form", EventFormSubmit},
}

// Widget is what derivation needs to know about one widget.
type Widget struct {
	ID         string
	SiteID     string
	Name       string
	TemplateID string
	Settings   widget.Settings
}

// EventQuery selects stored events for one widget.
type EventQuery struct {
	SiteID string
	Types  []EventType
	Since  time.Time
	Limit  int
}

// EventStore is the read side of the event log.
type EventStore interface {
	RecentEvents(ctx context.Context, q EventQuery) ([]Event, error)
	CountLiveSessions(ctx context.Context, siteID string, since time.Time) (int, error)
}

// ResolveEventTypes prefers explicit configuration, then the template id,
// then hints in the widget name, then DefaultEventTypes.
func ResolveEventTypes(explicit []string, templateID, name string) []EventType {
	if len(explicit) > 0 {
		types := make([]EventType, 0, len(explicit))
		for _, t := range explicit {
			types = append(types, EventType(strings.ToLower(strings.TrimSpace(t))))
		}
		return types
	}

	if t, ok := templateEventTypes[strings.ToLower(strings.TrimSpace(templateID))]; ok {
		return []EventType{t}
	}

	lower := strings.ToLower(name)
	for _, h := range nameEventTypes {
		if strings.Contains(lower, h.hint) {
			return []EventType{h.kind}
		}
	}

	return append([]EventType(nil), DefaultEventTypes...)
}

type Deriver struct {
	store EventStore
	now   func() time.Time
}

func NewDeriver(store EventStore) *Deriver {
	return &Deriver{store: store, now: time.Now}
}

// WithClock replaces the time source used for windows and time-ago labels.
func (d *Deriver) WithClock(now func() time.Time) *Deriver {
	d.now = now
	return d
}

// ForWidget returns the widget's notifications newest first, at most the
// widget's own fetch limit. A positive limit lowers that cap further.
func (d *Deriver) ForWidget(ctx context.Context, w Widget, limit int) ([]*Notification, error) {
	now := d.now()

	if widget.IsLiveVisitors(w.TemplateID, w.Name) {
		count, err := d.store.CountLiveSessions(ctx, w.SiteID, now.Add(-LiveWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to count live sessions for widget %s: %w", w.ID, err)
		}
		if count < 1 {
			return nil, nil
		}
		return []*Notification{LiveVisitors(w, count, now)}, nil
	}

	fetch := w.Settings.Source.Limit
	if limit > 0 && (fetch <= 0 || limit < fetch) {
		fetch = limit
	}
	fetch = min(fetch, 50)

	events, err := d.store.RecentEvents(ctx, EventQuery{
		SiteID: w.SiteID,
		Types:  ResolveEventTypes(w.Settings.Source.EventTypes, w.TemplateID, w.Name),
		Since:  now.Add(-w.Settings.Source.Window()),
		Limit:  fetch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load events for widget %s: %w", w.ID, err)
	}

	notifications := make([]*Notification, 0, len(events))
	for _, e := range events {
		notifications = append(notifications, Derive(e, w, now))
	}
	return notifications, nil
}

// ForWidgets derives every widget; a widget that fails is logged and left out.
func (d *Deriver) ForWidgets(ctx context.Context, widgets []Widget, limit int) map[string][]*Notification {
	result := make(map[string][]*Notification, len(widgets))
	for _, w := range widgets {
		list, err := d.ForWidget(ctx, w, limit)
		if err != nil {
			slog.Error("Failed to derive notifications", "widget_id", w.ID, "site_id", w.SiteID, "error", err)
			continue
		}
		result[w.ID] = list
	}
	return result
}

// LiveVisitors synthesizes the single live visitor count notification.
func LiveVisitors(w Widget, count int, now time.Time) *Notification {
	details := Details{Count: count}
	c := copyFor(EventVisitorActive, copyInput{Details: details})
	return &Notification{
		ID:         "live_" + w.ID,
		WidgetID:   w.ID,
		EventType:  EventVisitorActive,
		Title:      c.Title,
		Message:    c.Message,
		Icon:       c.Icon,
		OccurredAt: now,
		Details:    details,
		Settings:   w.Settings,
	}
}

// Derive turns one stored event into a display-ready notification.
func Derive(e Event, w Widget, now time.Time) *Notification {
	s := w.Settings
	kind := EventType(strings.ToLower(string(e.EventType)))

	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}

	details := extractDetails(e.Metadata)
	name := details.CustomerName
	switch {
	case name == "" || containsContact(name, s.Privacy):
		name = anonymousFallback(kind)
		details.CustomerName = ""
	case s.Privacy.AnonymizeNames:
		name = format.Anonymize(name, s.Privacy.Style, id)
		details.CustomerName = name
	}

	details.ProductName = scrub(details.ProductName, s.Privacy)
	details.Location = scrub(details.Location, s.Privacy)
	details.ReviewText = scrub(details.ReviewText, s.Privacy)

	content := s.Content
	if details.Currency != "" {
		content.Currency = details.Currency
	}
	value := ""
	if s.Content.ShowValue && details.Value != nil {
		value = format.Value(*details.Value, content)
	}

	c := copyFor(kind, copyInput{
		Name:     name,
		Details:  details,
		Value:    value,
		FormType: scrub(firstString(e.Metadata, formKeys...), s.Privacy),
		Page:     scrub(firstString(e.Metadata, pageKeys...), s.Privacy),
	})

	return &Notification{
		ID:         id,
		WidgetID:   w.ID,
		EventType:  kind,
		Title:      c.Title,
		Message:    c.Message,
		Icon:       c.Icon,
		TimeAgo:    format.TimeAgo(now, e.CreatedAt),
		OccurredAt: e.CreatedAt,
		Details:    details,
		Settings:   s,
	}
}
