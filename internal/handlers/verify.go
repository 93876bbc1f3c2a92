package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"proofpop/internal/api"
	"proofpop/internal/auth"
	"proofpop/internal/db"
	"proofpop/internal/queue"
)

// VerifyPixel confirms the pixel is installed on a known site. Recording
// the check happens in the worker.
func (h *Handler) VerifyPixel(c echo.Context) error {
	var req api.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := auth.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	if _, err := h.sites.GetSite(ctx, req.SiteID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.VerifyResponse{Success: false, Verified: false})
		}
		slog.Error("Failed to look up site", "site_id", req.SiteID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to verify pixel"})
	}

	_, err := h.tasks.EnqueueVerify(ctx, queue.VerifyPayload{
		SiteID:    req.SiteID,
		URL:       req.URL,
		UserAgent: req.UserAgent,
		SessionID: req.SessionID,
		Platform:  req.Platform,
		CheckedAt: h.now().UTC(),
	})
	if err != nil {
		slog.Error("Failed to enqueue pixel verification", "site_id", req.SiteID, "error", err)
	}

	return c.JSON(http.StatusOK, api.VerifyResponse{Success: true, Verified: true})
}

// InstallStatus reports the pixel install summary and the latest checks of
// the authenticated site.
func (h *Handler) InstallStatus(c echo.Context) error {
	siteID, _ := c.Get(auth.SiteIDKey).(string)
	if siteID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
	}
	if h.installs == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Install status is not configured"})
	}

	ctx := c.Request().Context()
	status, err := h.installs.GetStatus(ctx, siteID)
	if err != nil {
		slog.Warn("Install status not found", "site_id", siteID, "error", err)
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No pixel check recorded yet"})
	}

	checks, err := h.installs.RecentChecks(ctx, siteID, 10)
	if err != nil {
		slog.Error("Failed to load pixel checks", "site_id", siteID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load pixel checks"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
