package notification

import (
	"time"

	"proofpop/internal/widget"
)

type EventType string

const (
	EventPurchase      EventType = "purchase"
	EventSignup        EventType = "signup"
	EventFormSubmit    EventType = "form_submit"
	EventReview        EventType = "review"
	EventAddToCart     EventType = "add_to_cart"
	EventPageView      EventType = "page_view"
	EventVisitorActive EventType = "visitor_active"
	EventClick         EventType = "click"
	EventNotifyClick   EventType = "notification_click"
)

// Event is a recorded visitor action.
type Event struct {
	ID        string         `db:"id" json:"id"`
	SiteID    string         `db:"site_id" json:"site_id"`
	SessionID string         `db:"session_id" json:"session_id"`
	EventType EventType      `db:"event_type" json:"event_type"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	Metadata  map[string]any `db:"-" json:"metadata,omitempty"`
}

// Details are the event fields the renderer formats at paint time.
type Details struct {
	CustomerName string   `json:"customer_name,omitempty"`
	ProductName  string   `json:"product_name,omitempty"`
	Location     string   `json:"location,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Rating       int      `json:"rating,omitempty"`
	ReviewText   string   `json:"review_text,omitempty"`
	AvatarURL    string   `json:"avatar_url,omitempty"`
	ProductImage string   `json:"product_image,omitempty"`
	Count        int      `json:"count,omitempty"`
}

// Notification is one display-ready unit. It is never mutated after
// derivation; the playback queue holds pointers to it.
type Notification struct {
	ID         string          `json:"id"`
	WidgetID   string          `json:"widget_id"`
	EventType  EventType       `json:"event_type"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Icon       string          `json:"icon"`
	TimeAgo    string          `json:"time_ago"`
	OccurredAt time.Time       `json:"timestamp"`
	Details    Details         `json:"metadata"`
	Settings   widget.Settings `json:"-"`
}

// WithSettings returns a copy carrying a settings snapshot.
func (n Notification) WithSettings(s widget.Settings) *Notification {
	n.Settings = s
	return &n
}
