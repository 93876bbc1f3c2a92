package pixel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofpop/internal/api"
	"proofpop/internal/engine"
	"proofpop/internal/notification"
	"proofpop/internal/render"
	"proofpop/internal/widget"
)

var start = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu        sync.Mutex
	batch     api.BatchResponse
	failBatch bool
	tracked   []api.TrackRequest
	verifies  []api.VerifyRequest
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/widgets/batch", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failBatch {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(b.batch)
	})
	mux.HandleFunc("/api/track", func(w http.ResponseWriter, r *http.Request) {
		var req api.TrackRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.tracked = append(b.tracked, req)
		b.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/api/verify-pixel", func(w http.ResponseWriter, r *http.Request) {
		var req api.VerifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.verifies = append(b.verifies, req)
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(api.VerifyResponse{Success: true, Verified: true})
	})
	return mux
}

func (b *fakeBackend) trackedTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, 0, len(b.tracked))
	for _, t := range b.tracked {
		types = append(types, t.EventType)
	}
	return types
}

type countingSurface struct {
	mu      sync.Mutex
	mounted []string
	removed int
}

type surfaceContainer struct{}

func (surfaceContainer) Attached() bool { return true }

type surfaceElement struct{}

func (surfaceElement) OnClick(func()) {}

func (s *countingSurface) NewContainer(widget.Position, render.Style) (render.Container, error) {
	return surfaceContainer{}, nil
}

func (s *countingSurface) Mount(_ render.Container, node render.Node) (render.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = append(s.mounted, node.NotificationID)
	return surfaceElement{}, nil
}

func (s *countingSurface) Apply(render.Element, render.Phase) {}

func (s *countingSurface) Remove(render.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed++
}

func (s *countingSurface) Open(render.Link) {}

func (s *countingSurface) mounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.mounted...)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(d *Dispatcher, names ...string) {
	for _, name := range names {
		d.On(name, func(e Event) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
		})
	}
}

func (r *recorder) named(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func batchWidget(id string, cols widget.Columns, notes ...string) api.BatchWidget {
	rec := widget.Record{ID: id, SiteID: "site-1", Name: id, TemplateID: widget.TemplateRecentPurchase, Columns: cols}
	s := widget.Normalize(rec)
	bw := api.BatchWidget{
		WidgetID:   id,
		WidgetName: id,
		WidgetType: widget.TemplateRecentPurchase,
		Display:    s,
		Columns:    widget.Flatten(s),
	}
	for i, n := range notes {
		bw.Notifications = append(bw.Notifications, &notification.Notification{
			ID:         n,
			WidgetID:   id,
			EventType:  notification.EventPurchase,
			Title:      "New purchase",
			Message:    "A customer purchased an item",
			OccurredAt: start.Add(-time.Duration(i+1) * time.Minute),
		})
	}
	bw.Count = len(bw.Notifications)
	return bw
}

func timing() widget.Columns {
	return widget.Columns{
		ShowAfterDelay:            ptr(2.0),
		DisplayDuration:           ptr(4.0),
		FadeOutDuration:           ptr(300),
		DelayBetweenNotifications: ptr(3.0),
	}
}

type harness struct {
	backend *fakeBackend
	server  *httptest.Server
	clock   *engine.ManualClock
	surface *countingSurface
	events  *recorder
	opts    Options
}

func newHarness(t *testing.T, widgets ...api.BatchWidget) *harness {
	t.Helper()
	h := &harness{
		backend: &fakeBackend{batch: api.BatchResponse{Success: true, Widgets: widgets}},
		clock:   engine.NewManualClock(start),
		surface: &countingSurface{},
		events:  &recorder{},
	}
	if h.backend.batch.Widgets == nil {
		h.backend.batch.Widgets = []api.BatchWidget{}
	}
	h.server = httptest.NewServer(h.backend.handler())
	t.Cleanup(h.server.Close)

	dispatcher := NewDispatcher()
	h.events.listen(dispatcher, EventLoaded, EventReady, EventVerified, EventDisplay, EventClick)

	h.opts = Options{
		Host: Host{
			Script:        Element{Tag: "script", Attrs: map[string]string{"data-site-id": "site-1"}},
			URL:           "https://shop.test/checkout",
			Title:         "Checkout",
			UserAgent:     "test-agent",
			ViewportWidth: 1280,
			Markers:       []string{"Shopify"},
			Session:       engine.NewMemoryStorage(),
			Persistent:    engine.NewMemoryStorage(),
		},
		BaseURL:    h.server.URL,
		Surface:    h.surface,
		Dispatcher: dispatcher,
		Clock:      h.clock,
		Rand:       noShuffle{},
	}
	return h
}

type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

func TestBoot_MissingSiteID(t *testing.T) {
	h := newHarness(t)
	h.opts.Host.Script = Element{Tag: "script"}

	p, err := Boot(context.Background(), h.opts)
	assert.ErrorIs(t, err, ErrMissingSiteID)
	assert.Nil(t, p)
	assert.Zero(t, h.clock.Pending())
	assert.Empty(t, h.backend.trackedTypes())
	assert.Empty(t, h.events.named(EventLoaded))
}

func TestBoot_PlaysEligibleWidgets(t *testing.T) {
	excluded := timing()
	excluded.URLPatterns = &widget.URLPatterns{Exclude: []widget.URLPattern{{Pattern: "/checkout", Type: widget.MatchStarts}}}

	h := newHarness(t,
		batchWidget("sales", timing(), "n1", "n2"),
		batchWidget("hidden", excluded, "n3"),
	)

	p, err := Boot(context.Background(), h.opts)
	require.NoError(t, err)
	p.Wait()

	assert.Equal(t, "site-1", p.SiteID())
	assert.Equal(t, PlatformShopify, p.Platform())
	assert.Contains(t, p.SessionID(), "sess_")
	assert.Equal(t, []string{"page_view"}, h.backend.trackedTypes())
	h.backend.mu.Lock()
	require.Len(t, h.backend.verifies, 1)
	assert.Equal(t, "shopify", h.backend.verifies[0].Platform)
	h.backend.mu.Unlock()

	verified := h.events.named(EventVerified)
	require.Len(t, verified, 1)
	assert.Equal(t, true, verified[0].Detail["verified"])

	ready := h.events.named(EventReady)
	require.Len(t, ready, 1)
	assert.Equal(t, 1, ready[0].Detail["widgets"])
	assert.Equal(t, 2, ready[0].Detail["notifications"])

	assert.Empty(t, h.surface.mounts())
	h.clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"n1"}, h.surface.mounts())
	require.Len(t, h.events.named(EventDisplay), 1)

	h.clock.Advance(4*time.Second + 300*time.Millisecond + 3*time.Second)
	assert.Equal(t, []string{"n1", "n2"}, h.surface.mounts())

	state := p.Debug().State()
	assert.Equal(t, []string{"sales"}, state.Widgets)
	assert.Equal(t, 2, state.Notifications)
	assert.True(t, state.Verified)
	assert.Equal(t, "displaying", state.Playback.Stage)

	p.Stop()
	assert.Zero(t, h.clock.Pending())
	h.clock.Advance(time.Hour)
	assert.Len(t, h.surface.mounts(), 2)
	assert.True(t, p.Debug().State().Stopped)
}

func TestBoot_BatchFailureShowsNothing(t *testing.T) {
	h := newHarness(t)
	h.backend.failBatch = true

	p, err := Boot(context.Background(), h.opts)
	require.NoError(t, err)
	defer p.Stop()

	h.clock.Advance(time.Minute)
	assert.Empty(t, h.surface.mounts())
	assert.Empty(t, h.events.named(EventReady))
	assert.Equal(t, "idle", p.Debug().State().Playback.Stage)
}

func TestHeartbeat_StopsWithPixel(t *testing.T) {
	h := newHarness(t)
	h.opts.Heartbeat = 30 * time.Second

	p, err := Boot(context.Background(), h.opts)
	require.NoError(t, err)

	h.clock.Advance(30 * time.Second)
	h.clock.Advance(30 * time.Second)
	p.Wait()
	assert.ElementsMatch(t, []string{"page_view", "visitor_active", "visitor_active"}, h.backend.trackedTypes())

	p.Stop()
	h.clock.Advance(5 * time.Minute)
	p.Track("purchase", nil)
	p.Wait()
	assert.Len(t, h.backend.trackedTypes(), 3)
}

func TestTriggerTest(t *testing.T) {
	h := newHarness(t, batchWidget("sales", timing(), "n1"))

	p, err := Boot(context.Background(), h.opts)
	require.NoError(t, err)
	defer p.Stop()

	n := p.Debug().TriggerTest()
	assert.Equal(t, "sales", n.WidgetID)
	assert.Equal(t, []string{n.ID}, h.surface.mounts())
	assert.Equal(t, 4*time.Second, n.Settings.Timing.DisplayDuration)
}

func TestDisplayListenerCanCallBack(t *testing.T) {
	h := newHarness(t, batchWidget("sales", timing(), "n1"))

	var p *Pixel
	var states []State
	var injected *notification.Notification
	h.opts.Dispatcher.On(EventDisplay, func(Event) {
		states = append(states, p.Debug().State())
		if injected == nil {
			injected = p.Debug().TriggerTest()
		}
	})

	p, err := Boot(context.Background(), h.opts)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.clock.Advance(2 * time.Second)
		p.Stop()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("display listener blocked playback")
	}

	require.NotNil(t, injected)
	assert.Equal(t, []string{"n1", injected.ID}, h.surface.mounts())
	require.Len(t, states, 2)
	assert.Equal(t, "n1", states[0].Playback.CurrentID)
	assert.Equal(t, injected.ID, states[1].Playback.CurrentID)
	assert.Equal(t, "stopped", p.Debug().State().Playback.Stage)
}

func TestTrackShortcuts(t *testing.T) {
	h := newHarness(t)
	h.opts.TrackBurst = 10

	p, err := Boot(context.Background(), h.opts)
	require.NoError(t, err)
	defer p.Stop()

	p.TrackPurchase(map[string]any{"product_name": "Mug", "value": 12.5})
	p.TrackSignup(nil)
	p.TrackReview(map[string]any{"rating": 5})
	p.Track("Newsletter Joined", nil)
	p.Wait()

	assert.ElementsMatch(t,
		[]string{"page_view", "purchase", "signup", "review", "newsletter_joined"},
		h.backend.trackedTypes())

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	for _, req := range h.backend.tracked {
		assert.Equal(t, "site-1", req.SiteID)
		assert.Equal(t, p.SessionID(), req.SessionID)
		assert.True(t, req.Timestamp.Equal(start))
	}
}

func TestTracker_DropsOverRate(t *testing.T) {
	h := newHarness(t)
	h.opts.TrackBurst = 2
	h.opts.TrackRate = 0.0001

	p, err := Boot(context.Background(), h.opts)
	require.NoError(t, err)
	defer p.Stop()

	for i := 0; i < 5; i++ {
		p.Track("click", nil)
	}
	p.Wait()
	assert.ElementsMatch(t, []string{"page_view", "click"}, h.backend.trackedTypes())
}

func TestSessionID_ReusedFromStorage(t *testing.T) {
	store := engine.NewMemoryStorage()
	first := sessionID(store)
	assert.Equal(t, first, sessionID(store))
	assert.Len(t, first, len("sess_")+16)

	a := sessionID(engine.UnavailableStorage{})
	b := sessionID(engine.UnavailableStorage{})
	assert.NotEqual(t, a, b)
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		host Host
		want Platform
	}{
		{Host{Markers: []string{"Shopify"}}, PlatformShopify},
		{Host{URL: "https://demo.myshopify.com/products/x"}, PlatformShopify},
		{Host{Markers: []string{"/wp-content/plugins/woocommerce/"}}, PlatformWooCommerce},
		{Host{Markers: []string{"/wp-content/themes/x/style.css"}}, PlatformWordPress},
		{Host{Markers: []string{"static.wixstatic.com"}}, PlatformWix},
		{Host{Markers: []string{"Static.SQUARESPACE_CONTEXT"}}, PlatformSquarespace},
		{Host{Markers: []string{"Webflow"}}, PlatformWebflow},
		{Host{Markers: []string{"BCData"}}, PlatformBigCommerce},
		{Host{URL: "https://example.com/"}, PlatformCustom},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectPlatform(tt.host), "%+v", tt.host)
	}
}
