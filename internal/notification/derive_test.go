package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"proofpop/internal/widget"
)

// --- Mock store ---
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) RecentEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Event), args.Error(1)
}

func (m *MockEventStore) CountLiveSessions(ctx context.Context, siteID string, since time.Time) (int, error) {
	args := m.Called(ctx, siteID, since)
	return args.Int(0), args.Error(1)
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testWidget(id, templateID string) Widget {
	return Widget{
		ID:         id,
		SiteID:     "site-1",
		Name:       "Widget " + id,
		TemplateID: templateID,
		Settings:   widget.Normalize(widget.Record{TemplateID: templateID}),
	}
}

func TestResolveEventTypes(t *testing.T) {
	assert.Equal(t, []EventType{"review", "signup"}, ResolveEventTypes([]string{"Review", " signup"}, widget.TemplateRecentPurchase, ""))
	assert.Equal(t, []EventType{EventPurchase}, ResolveEventTypes(nil, "recent_purchase", ""))
	assert.Equal(t, []EventType{EventAddToCart}, ResolveEventTypes(nil, "cart_activity", ""))
	assert.Equal(t, []EventType{EventPageView}, ResolveEventTypes(nil, "active_sessions", ""))
	assert.Equal(t, []EventType{EventReview}, ResolveEventTypes(nil, "custom", "Happy Reviews"))
	assert.Equal(t, DefaultEventTypes, ResolveEventTypes(nil, "", "My widget"))
}

func TestDerive_Templates(t *testing.T) {
	w := testWidget("w1", widget.TemplateRecentPurchase)

	cases := []struct {
		name string
		kind EventType
		meta map[string]any
		want string
	}{
		{"purchase with value", EventPurchase, map[string]any{"customer_name": "Ana", "product_name": "Desk", "value": 49.99}, "Ana purchased Desk for $49.99"},
		{"purchase without name", EventPurchase, map[string]any{"product": "Lamp"}, "A customer purchased Lamp"},
		{"signup with location", EventSignup, map[string]any{"first_name": "Li", "last_name": "Wei", "city": "Lagos", "country": "Nigeria"}, "Li Wei signed up from Lagos, Nigeria"},
		{"form submit", EventFormSubmit, map[string]any{"user_name": "Kim", "form_type": "a demo request"}, "Kim submitted a demo request"},
		{"review", EventReview, map[string]any{"name": "Sam", "rating": 4.0}, "Sam left a 4-star review"},
		{"cart", EventAddToCart, map[string]any{"product_name": "Mug"}, "A customer added Mug to cart"},
		{"page view", EventPageView, map[string]any{"page_title": "Pricing"}, "Someone is browsing Pricing"},
		{"unknown type", "newsletter_join", nil, "newsletter join"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := Derive(Event{ID: "e1", EventType: tc.kind, CreatedAt: now.Add(-90 * time.Second), Metadata: tc.meta}, w, now)
			assert.Equal(t, tc.want, n.Message)
			assert.Equal(t, "1 minute ago", n.TimeAgo)
			assert.Equal(t, "w1", n.WidgetID)
		})
	}
}

func TestDerive_HidesValueWhenDisabled(t *testing.T) {
	w := testWidget("w1", widget.TemplateRecentPurchase)
	w.Settings.Content.ShowValue = false

	n := Derive(Event{ID: "e1", EventType: EventPurchase, CreatedAt: now, Metadata: map[string]any{"customer_name": "Ana", "product_name": "Desk", "value": "49.99"}}, w, now)

	assert.Equal(t, "Ana purchased Desk", n.Message)
	require.NotNil(t, n.Details.Value)
	assert.Equal(t, 49.99, *n.Details.Value)
}

func TestDerive_Privacy(t *testing.T) {
	w := testWidget("w1", widget.TemplateNewSignup)
	w.Settings.Privacy.AnonymizeNames = true
	w.Settings.Privacy.Style = widget.AnonymizeFirstInitial

	n := Derive(Event{ID: "e1", EventType: EventSignup, CreatedAt: now, Metadata: map[string]any{"customer_name": "John Smith"}}, w, now)
	assert.Equal(t, "John S. signed up", n.Message)
	assert.Equal(t, "John S.", n.Details.CustomerName)

	n = Derive(Event{ID: "e2", EventType: EventSignup, CreatedAt: now, Metadata: map[string]any{"customer_name": "john@example.com"}}, w, now)
	assert.Equal(t, "Someone signed up", n.Message)
	assert.Empty(t, n.Details.CustomerName)

	n = Derive(Event{ID: "e3", EventType: EventReview, CreatedAt: now, Metadata: map[string]any{"review_text": "call me on +1 555 123 4567"}}, w, now)
	assert.Equal(t, "call me on [phone hidden]", n.Details.ReviewText)
}

func TestDeriver_LiveVisitors(t *testing.T) {
	store := new(MockEventStore)
	store.On("CountLiveSessions", mock.Anything, "site-1", now.Add(-LiveWindow)).Return(3, nil).Once()

	d := NewDeriver(store).WithClock(func() time.Time { return now })
	list, err := d.ForWidget(context.Background(), testWidget("live", widget.TemplateLiveVisitors), 0)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "3", list[0].Title)
	assert.Equal(t, "people viewing now", list[0].Message)
	assert.Equal(t, EventVisitorActive, list[0].EventType)
	assert.Equal(t, time.Duration(0), list[0].Settings.Timing.DisplayDuration)
	store.AssertExpectations(t)
}

func TestDeriver_QueriesWindowAndLimit(t *testing.T) {
	w := testWidget("w1", widget.TemplateCustomerReview)
	w.Settings.Source.TimeWindow = widget.WindowLast24h

	store := new(MockEventStore)
	store.On("RecentEvents", mock.Anything, EventQuery{
		SiteID: "site-1",
		Types:  []EventType{EventReview},
		Since:  now.Add(-24 * time.Hour),
		Limit:  5,
	}).Return([]Event{
		{ID: "b", EventType: EventReview, CreatedAt: now.Add(-time.Hour)},
		{ID: "a", EventType: EventReview, CreatedAt: now.Add(-2 * time.Hour)},
	}, nil).Once()

	list, err := NewDeriver(store).WithClock(func() time.Time { return now }).ForWidget(context.Background(), w, 5)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "1 hour ago", list[0].TimeAgo)
	store.AssertExpectations(t)
}

func TestDeriver_ForWidgetsSkipsFailures(t *testing.T) {
	store := new(MockEventStore)
	store.On("RecentEvents", mock.Anything, mock.MatchedBy(func(q EventQuery) bool { return q.Types[0] == EventPurchase })).
		Return(nil, errors.New("connection reset")).Once()
	store.On("RecentEvents", mock.Anything, mock.MatchedBy(func(q EventQuery) bool { return q.Types[0] == EventSignup })).
		Return([]Event{{ID: "s1", EventType: EventSignup, CreatedAt: now}}, nil).Once()
	store.On("CountLiveSessions", mock.Anything, "site-1", mock.Anything).Return(0, nil).Once()

	d := NewDeriver(store).WithClock(func() time.Time { return now })
	got := d.ForWidgets(context.Background(), []Widget{
		testWidget("broken", widget.TemplateRecentPurchase),
		testWidget("ok", widget.TemplateNewSignup),
		testWidget("empty-live", widget.TemplateLiveVisitors),
	}, 0)

	assert.NotContains(t, got, "broken")
	assert.Len(t, got["ok"], 1)
	assert.Contains(t, got, "empty-live")
	assert.Empty(t, got["empty-live"])
	store.AssertExpectations(t)
}

func TestDeriver_FetchLimitCap(t *testing.T) {
	w := testWidget("w1", widget.TemplateRecentPurchase)
	w.Settings.Source.Limit = 3

	for _, tc := range []struct {
		limit, want int
	}{
		{limit: 0, want: 3},
		{limit: 2, want: 2},
		{limit: 20, want: 3},
	} {
		store := new(MockEventStore)
		store.On("RecentEvents", mock.Anything, mock.MatchedBy(func(q EventQuery) bool {
			return q.Limit == tc.want
		})).Return([]Event{}, nil).Once()

		_, err := NewDeriver(store).WithClock(func() time.Time { return now }).ForWidget(context.Background(), w, tc.limit)
		require.NoError(t, err)
		store.AssertExpectations(t)
	}
}
