package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"proofpop/internal/db"
	"proofpop/internal/install"
	"proofpop/internal/notification"
	"proofpop/internal/queue"
	"proofpop/internal/widget"
)

type WidgetSource interface {
	ActiveWidgets(ctx context.Context, siteID, widgetID string) ([]widget.Record, error)
}

type SiteLookup interface {
	GetSite(ctx context.Context, siteID string) (*db.Site, error)
}

type BatchCache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
}

type TaskQueue interface {
	EnqueueTrack(ctx context.Context, p queue.TrackPayload) (string, error)
	EnqueueVerify(ctx context.Context, p queue.VerifyPayload) (string, error)
}

// InstallReader serves the mirrored install status. It is nil when
// Firestore is not configured.
type InstallReader interface {
	GetStatus(ctx context.Context, siteID string) (*install.Status, error)
	RecentChecks(ctx context.Context, siteID string, limit int) ([]*install.Verification, error)
}

type Handler struct {
	widgets  WidgetSource
	sites    SiteLookup
	deriver  *notification.Deriver
	cache    BatchCache
	tasks    TaskQueue
	installs InstallReader
	now      func() time.Time
}

type Options struct {
	Widgets WidgetSource
	Sites   SiteLookup
	Deriver *notification.Deriver
	// Cache may be nil.
	Cache    BatchCache
	Tasks    TaskQueue
	Installs InstallReader
}

func New(opts Options) *Handler {
	return &Handler{
		widgets:  opts.Widgets,
		sites:    opts.Sites,
		deriver:  opts.Deriver,
		cache:    opts.Cache,
		tasks:    opts.Tasks,
		installs: opts.Installs,
		now:      time.Now,
	}
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
