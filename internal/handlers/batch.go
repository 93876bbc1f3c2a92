package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"proofpop/internal/api"
	"proofpop/internal/cache"
	"proofpop/internal/notification"
	"proofpop/internal/widget"
)

const maxBatchLimit = 50

// GetWidgetBatch returns every active widget of a site with its derived
// notifications. An unknown site is an empty batch, not an error.
func (h *Handler) GetWidgetBatch(c echo.Context) error {
	siteID := c.QueryParam("site_id")
	if siteID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "site_id is required"})
	}
	widgetID := c.QueryParam("widget_id")
	limit := parseLimit(c.QueryParam("limit"))
	ctx := c.Request().Context()

	key := cache.BatchKey(siteID, widgetID, limit)
	if h.cache != nil {
		var cached api.BatchResponse
		err := h.cache.Get(ctx, key, &cached)
		if err == nil {
			return c.JSON(http.StatusOK, cached)
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("Batch cache read failed", "site_id", siteID, "error", err)
		}
	}

	records, err := h.widgets.ActiveWidgets(ctx, siteID, widgetID)
	if err != nil {
		slog.Error("Failed to load widgets", "site_id", siteID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load widgets"})
	}

	resp := api.BatchResponse{Success: true, Widgets: []api.BatchWidget{}}
	if len(records) > 0 {
		resp.Widgets = h.buildBatch(c, records, limit)
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, resp); err != nil {
			slog.Warn("Batch cache write failed", "site_id", siteID, "error", err)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) buildBatch(c echo.Context, records []widget.Record, limit int) []api.BatchWidget {
	widgets := make([]notification.Widget, 0, len(records))
	for _, r := range records {
		widgets = append(widgets, notification.Widget{
			ID:         r.ID,
			SiteID:     r.SiteID,
			Name:       r.Name,
			TemplateID: r.TemplateID,
			Settings:   widget.Normalize(r),
		})
	}

	derived := h.deriver.ForWidgets(c.Request().Context(), widgets, limit)

	out := make([]api.BatchWidget, 0, len(widgets))
	for _, w := range widgets {
		list := derived[w.ID]
		if list == nil {
			list = []*notification.Notification{}
		}
		out = append(out, api.BatchWidget{
			WidgetID:      w.ID,
			WidgetName:    w.Name,
			WidgetType:    w.TemplateID,
			Display:       w.Settings,
			Notifications: list,
			Count:         len(list),
			Columns:       widget.Flatten(w.Settings),
		})
	}
	return out
}

// parseLimit parses the optional cap on notifications per widget. Zero leaves
// every widget at its own fetch limit.
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0
	}
	return min(limit, maxBatchLimit)
}
