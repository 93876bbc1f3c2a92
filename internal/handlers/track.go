package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"proofpop/internal/api"
	"proofpop/internal/auth"
	"proofpop/internal/queue"
)

// Track accepts a tracking call from the pixel and hands it to the worker.
func (h *Handler) Track(c echo.Context) error {
	var req api.TrackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := auth.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ts := req.Timestamp
	if ts.IsZero() || ts.After(h.now()) {
		ts = h.now().UTC()
	}

	_, err := h.tasks.EnqueueTrack(c.Request().Context(), queue.TrackPayload{
		SiteID:    req.SiteID,
		SessionID: req.SessionID,
		EventType: req.EventType,
		URL:       req.URL,
		UserAgent: req.UserAgent,
		Referrer:  req.Referrer,
		Timestamp: ts,
		EventData: req.EventData,
		IP:        c.RealIP(),
	})
	if err != nil {
		slog.Error("Failed to enqueue tracking event", "site_id", req.SiteID, "event_type", req.EventType, "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Failed to record event"})
	}

	return c.JSON(http.StatusAccepted, map[string]bool{"success": true})
}

// Ingest accepts one event from a merchant back end. IngestAuth has
// already authenticated the site.
func (h *Handler) Ingest(c echo.Context) error {
	siteID, _ := c.Get(auth.SiteIDKey).(string)
	if siteID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
	}

	var req api.IngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := auth.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ts := req.Timestamp
	if ts.IsZero() || ts.After(h.now()) {
		ts = h.now().UTC()
	}

	taskID, err := h.tasks.EnqueueTrack(c.Request().Context(), queue.TrackPayload{
		SiteID:    siteID,
		SessionID: req.SessionID,
		EventType: req.EventType,
		URL:       req.URL,
		UserAgent: c.Request().UserAgent(),
		Timestamp: ts,
		EventData: req.Data,
	})
	if err != nil {
		slog.Error("Failed to enqueue ingested event", "site_id", siteID, "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Failed to record event"})
	}

	slog.Info("Ingested event", "site_id", siteID, "event_type", req.EventType, "task_id", taskID)
	return c.JSON(http.StatusAccepted, map[string]interface{}{"success": true, "task_id": taskID})
}
