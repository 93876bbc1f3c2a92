// Package api holds the JSON bodies exchanged between the pixel runtime
// and the backend.
package api

import (
	"time"

	"proofpop/internal/notification"
	"proofpop/internal/widget"
)

// BatchResponse is the body of GET /api/widgets/batch.
type BatchResponse struct {
	Success bool          `json:"success"`
	Widgets []BatchWidget `json:"widgets"`
}

// BatchWidget carries one widget's resolved settings, its flat columns and
// its derived notifications. The embedded columns are fully populated, so
// normalizing them again gives back Display.
type BatchWidget struct {
	WidgetID      string                       `json:"widget_id"`
	WidgetName    string                       `json:"widget_name"`
	WidgetType    string                       `json:"widget_type"`
	Display       widget.Settings              `json:"display"`
	Notifications []*notification.Notification `json:"notifications"`
	Count         int                          `json:"count"`
	widget.Columns
}

// Record rebuilds the raw widget record a client normalizes.
func (w BatchWidget) Record(siteID string) widget.Record {
	return widget.Record{
		ID:         w.WidgetID,
		SiteID:     siteID,
		Name:       w.WidgetName,
		TemplateID: w.WidgetType,
		Columns:    w.Columns,
	}
}

// TrackRequest is the body of POST /api/track.
type TrackRequest struct {
	SiteID    string         `json:"site_id" validate:"required,max=64"`
	SessionID string         `json:"session_id" validate:"max=128"`
	EventType string         `json:"event_type" validate:"required,event_type"`
	URL       string         `json:"url" validate:"max=2048"`
	UserAgent string         `json:"user_agent" validate:"max=512"`
	Referrer  string         `json:"referrer" validate:"max=2048"`
	Timestamp time.Time      `json:"timestamp"`
	EventData map[string]any `json:"event_data"`
}

// VerifyRequest is the body of POST /api/verify-pixel.
type VerifyRequest struct {
	SiteID    string `json:"site_id" validate:"required,max=64"`
	URL       string `json:"url" validate:"max=2048"`
	UserAgent string `json:"user_agent" validate:"max=512"`
	SessionID string `json:"session_id" validate:"max=128"`
	Platform  string `json:"platform" validate:"max=32"`
}

type VerifyResponse struct {
	Success  bool `json:"success"`
	Verified bool `json:"verified"`
}

// IngestRequest is the body of POST /api/v1/events. The site comes from
// the bearer token.
type IngestRequest struct {
	EventType string         `json:"event_type" validate:"required,event_type"`
	SessionID string         `json:"session_id" validate:"max=128"`
	URL       string         `json:"url" validate:"max=2048"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}
