// Package pixel is the runtime a site embeds: it identifies the visitor
// session, tracks the page view, verifies the install, loads the site's
// widgets and plays their notifications back.
package pixel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"proofpop/internal/engine"
	"proofpop/internal/notification"
	"proofpop/internal/render"
	"proofpop/internal/trigger"
	"proofpop/internal/widget"
	"proofpop/utils"
)

var ErrMissingSiteID = errors.New("pixel: script tag has no data-site-id")

const (
	sessionIDKey = "proofpop_session_id"

	DefaultFetchTimeout = 10 * time.Second
	DefaultHeartbeat    = 30 * time.Second
)

type Options struct {
	Host       Host
	BaseURL    string
	HTTPClient *http.Client
	Surface    render.Surface
	// Dispatcher lets the host subscribe before Boot emits anything.
	Dispatcher *Dispatcher
	// Clock defaults to the real clock.
	Clock engine.Clock
	// Rand shuffles queue rounds; defaults to a time seeded source.
	Rand engine.Shuffler
	// Limit is the per widget notification limit sent to the batch
	// endpoint. Zero lets the server decide.
	Limit        int
	FetchTimeout time.Duration
	Heartbeat    time.Duration
	TrackRate    rate.Limit
	TrackBurst   int
}

// Pixel is one page load. Create it with Boot and tear it down with Stop.
type Pixel struct {
	siteID    string
	sessionID string
	platform  Platform
	host      Host

	clock      engine.Clock
	shuffle    engine.Shuffler
	client     *Client
	tracker    *Tracker
	dispatcher *Dispatcher
	renderer   *render.Renderer
	scheduler  *engine.Scheduler

	mu        sync.Mutex
	widgets   map[string]widget.Settings
	order     []string
	queued    int
	heartbeat engine.Timer
	interval  time.Duration
	stopped   bool
	verified  bool

	background sync.WaitGroup
}

// Boot starts the pixel on a page. It returns ErrMissingSiteID, with
// nothing started, when the script tag carries no site id. Any later
// failure is logged and leaves a pixel that shows nothing.
func Boot(ctx context.Context, opts Options) (*Pixel, error) {
	siteID, _ := opts.Host.Script.Attr(attrSiteID)
	if siteID == "" {
		slog.Warn("ProofPop pixel not started", "error", ErrMissingSiteID)
		return nil, ErrMissingSiteID
	}

	p := newPixel(siteID, opts)
	p.tracker.Track(string(notification.EventPageView), map[string]any{
		"page_title": opts.Host.Title,
		"platform":   string(p.platform),
	})
	p.verifyInstall()
	p.dispatcher.Emit(EventLoaded, map[string]any{"site_id": siteID, "platform": string(p.platform)})

	p.load(ctx, opts.Limit, orDefault(opts.FetchTimeout, DefaultFetchTimeout))
	p.armHeartbeat()
	return p, nil
}

func newPixel(siteID string, opts Options) *Pixel {
	clock := opts.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	shuffle := opts.Rand
	if shuffle == nil {
		shuffle = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	trackRate := opts.TrackRate
	if trackRate == 0 {
		trackRate = rate.Every(time.Second)
	}
	burst := opts.TrackBurst
	if burst <= 0 {
		burst = 5
	}

	h := opts.Host
	p := &Pixel{
		siteID:     siteID,
		sessionID:  sessionID(h.Session),
		platform:   DetectPlatform(h),
		host:       h,
		clock:      clock,
		shuffle:    shuffle,
		client:     NewClient(opts.BaseURL, opts.HTTPClient),
		dispatcher: dispatcher,
		interval:   orDefault(opts.Heartbeat, DefaultHeartbeat),
		widgets:    make(map[string]widget.Settings),
	}
	p.tracker = newTracker(p.client, trackRate, burst, clock, h, siteID, p.sessionID)

	surface := opts.Surface
	if surface == nil {
		surface = render.NewTerminalSurface(io.Discard)
	}
	env := render.Env{
		Mobile:        p.page().Device() == trigger.DeviceMobile,
		ReducedMotion: h.ReducedMotion,
	}
	p.renderer = render.NewRenderer(surface, clock, env).WithTracker(p.tracker)
	p.renderer.OnClick(func(n *notification.Notification) {
		p.dispatcher.Emit(EventClick, notificationDetail(n))
	})
	p.renderer.OnClose(func(n *notification.Notification) {
		p.scheduler.Dismiss(n)
	})
	p.renderer.OnHover(func(n *notification.Notification, over bool) {
		if over {
			p.scheduler.Pause(n)
			return
		}
		p.scheduler.Resume(n)
	})

	caps := engine.NewCaps(h.Session, h.Persistent, clock.Now)
	p.scheduler = engine.NewScheduler(clock, p.renderer, caps)
	p.scheduler.OnDisplay(func(n *notification.Notification) {
		p.dispatcher.Emit(EventDisplay, notificationDetail(n))
	})
	return p
}

// load fetches the batch once, filters it for this page and starts
// playback.
func (p *Pixel) load(ctx context.Context, limit int, timeout time.Duration) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	batch, err := p.client.FetchBatch(fetchCtx, p.siteID, limit)
	if err != nil {
		slog.Warn("Failed to load notifications", "site_id", p.siteID, "error", err)
		return
	}

	settings := make(map[string]widget.Settings, len(batch.Widgets))
	order := make([]string, 0, len(batch.Widgets))
	for _, w := range batch.Widgets {
		if _, dup := settings[w.WidgetID]; dup {
			continue
		}
		settings[w.WidgetID] = widget.Normalize(w.Record(p.siteID))
		order = append(order, w.WidgetID)
	}

	eligible := trigger.Filter(settings, order, p.page())

	lists := make(map[string][]*notification.Notification, len(eligible))
	for _, w := range batch.Widgets {
		if !slices.Contains(eligible, w.WidgetID) || lists[w.WidgetID] != nil {
			continue
		}
		s := settings[w.WidgetID]
		list := make([]*notification.Notification, 0, len(w.Notifications))
		for _, n := range w.Notifications {
			if n == nil {
				continue
			}
			list = append(list, n.WithSettings(s))
		}
		lists[w.WidgetID] = list
	}

	queue := engine.BuildQueue(lists, p.shuffle)

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.widgets = settings
	p.order = eligible
	p.queued = len(queue)
	p.mu.Unlock()

	p.scheduler.Start(queue)
	p.dispatcher.Emit(EventReady, map[string]any{
		"widgets":       len(eligible),
		"notifications": len(queue),
	})
	slog.Debug("ProofPop ready", "site_id", p.siteID, "widgets", len(eligible), "notifications", len(queue))
}

// verifyInstall confirms the install in the background and reports the
// result to host listeners.
func (p *Pixel) verifyInstall() {
	p.background.Add(1)
	go func() {
		defer p.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), DefaultFetchTimeout)
		defer cancel()

		resp, err := p.client.Verify(ctx, verifyRequest(p))
		verified := err == nil && resp.Verified
		if err != nil {
			slog.Debug("Pixel verification failed", "site_id", p.siteID, "error", err)
		}

		p.mu.Lock()
		p.verified = verified
		stopped := p.stopped
		p.mu.Unlock()

		if !stopped {
			p.dispatcher.Emit(EventVerified, map[string]any{"verified": verified, "site_id": p.siteID})
		}
	}()
}

// armHeartbeat schedules the next visitor_active ping.
func (p *Pixel) armHeartbeat() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.heartbeat = p.clock.AfterFunc(p.interval, func() {
		p.mu.Lock()
		stopped := p.stopped
		p.mu.Unlock()
		if stopped {
			return
		}
		p.tracker.Track(string(notification.EventVisitorActive), nil)
		p.armHeartbeat()
	})
}

// Stop tears the page load down: the playback timer and the heartbeat are
// cancelled together and no further tracking call is sent.
func (p *Pixel) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if p.heartbeat != nil {
		p.heartbeat.Stop()
		p.heartbeat = nil
	}
	p.mu.Unlock()

	p.scheduler.Stop()
	p.tracker.Close()
}

// Wait blocks until background calls started by the pixel have finished.
func (p *Pixel) Wait() {
	p.background.Wait()
	p.tracker.Wait()
}

func (p *Pixel) page() trigger.Page {
	return trigger.NewPage(p.host.URL, p.host.ViewportWidth)
}

// sessionID reuses the id stored for this browser session, or creates one.
func sessionID(store engine.Storage) string {
	if store != nil {
		if id, ok, err := store.Get(sessionIDKey); err == nil && ok && id != "" {
			return id
		}
	}

	id, err := utils.NewSessionID()
	if err != nil {
		id = "sess_" + time.Now().Format("20060102150405000000")
	}

	if store != nil {
		if err := store.Set(sessionIDKey, id); err != nil {
			slog.Debug("Session id not persisted", "error", err)
		}
	}
	return id
}

func notificationDetail(n *notification.Notification) map[string]any {
	return map[string]any{
		"notification_id": n.ID,
		"widget_id":       n.WidgetID,
		"event_type":      string(n.EventType),
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
