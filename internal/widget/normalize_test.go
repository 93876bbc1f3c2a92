package widget

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EmptyRecordIsFullyDefaulted(t *testing.T) {
	s := Normalize(Record{})

	assert.Equal(t, PositionBottomLeft, s.Visual.Position)
	assert.Equal(t, LayoutCard, s.Visual.Layout)
	assert.Equal(t, "#ffffff", s.Visual.Background.Color)
	assert.Equal(t, ShadowMedium, s.Visual.Shadow.Size)
	assert.Equal(t, 5*time.Second, s.Timing.DisplayDuration)
	assert.Equal(t, 300*time.Millisecond, s.Timing.FadeIn)
	assert.Equal(t, 300*time.Millisecond, s.Timing.FadeOut)
	assert.Equal(t, AnimationSlide, s.Timing.Animation)
	assert.Equal(t, EdgeBottom, s.Timing.ProgressEdge)
	assert.Equal(t, ValueCurrency, s.Content.ValueFormat)
	assert.Equal(t, "USD", s.Content.Currency)
	assert.Equal(t, SymbolBefore, s.Content.CurrencyPosition)
	assert.Equal(t, AnonymizeFirstInitial, s.Privacy.Style)
	assert.Equal(t, ClickNone, s.Interaction.Action)
	assert.Equal(t, TargetBlank, s.Interaction.LinkTarget)
	assert.Equal(t, PositionBottomLeft, s.Responsive.MobilePosition)
	assert.Equal(t, 3*time.Second, s.Triggers.ShowAfterDelay)
	assert.Equal(t, 5*time.Second, s.Triggers.DelayBetween)
	assert.Equal(t, FrequencyAllTime, s.Triggers.Frequency)
	assert.Equal(t, 10, s.Triggers.MaxPerSession)
	assert.Empty(t, s.Triggers.URLPatterns.Include)
	assert.Equal(t, WindowLast7Days, s.Source.TimeWindow)
	assert.Equal(t, 7*24*time.Hour, s.Source.Window())
	assert.Equal(t, 10, s.Source.Limit)
}

func TestNormalize_EmptyJSONLevels(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"columns":{},"config":{}}`,
		`{"columns":{},"config":{"display":{},"triggers":{}}}`,
		`{"config":{"triggers":{"url_patterns":null}}}`,
	} {
		var r Record
		require.NoError(t, json.Unmarshal([]byte(raw), &r), raw)
		assert.Equal(t, Normalize(Record{}), Normalize(r), raw)
	}
}

func TestNormalize_Precedence(t *testing.T) {
	r := Record{
		TemplateID: TemplateCustomerReview,
		Columns: Columns{
			Position: ptr("top-right"),
		},
		Config: LegacyConfig{
			Display: LegacyDisplay{
				Position:  ptr("bottom-right"),
				Animation: ptr("fade"),
			},
			Triggers: LegacyTriggers{
				Interval: ptr(8.0),
			},
		},
	}

	s := Normalize(r)

	assert.Equal(t, PositionTopRight, s.Visual.Position, "flat column wins")
	assert.Equal(t, AnimationFade, s.Timing.Animation, "legacy fills gap")
	assert.Equal(t, 8*time.Second, s.Triggers.DelayBetween)
	assert.Equal(t, 7*time.Second, s.Timing.DisplayDuration, "template default")
	assert.False(t, s.Content.ShowValue, "template default")
	assert.Equal(t, 3*time.Second, s.Triggers.ShowAfterDelay, "built-in default")
}

func TestNormalize_InvalidValuesFallBack(t *testing.T) {
	r := Record{Columns: Columns{
		Position:        ptr("middle"),
		AnimationType:   ptr("spin"),
		BackgroundColor: ptr("red;position:absolute"),
		TextColor:       ptr("#12"),
		Currency:        ptr("dollars"),
		DisplayDuration: ptr(-4.0),
		FetchLimit:      ptr(5000),
	}}

	s := Normalize(r)

	assert.Equal(t, PositionBottomLeft, s.Visual.Position)
	assert.Equal(t, AnimationSlide, s.Timing.Animation)
	assert.Equal(t, "#ffffff", s.Visual.Background.Color)
	assert.Equal(t, "#1f2937", s.Visual.TextColor)
	assert.Equal(t, "USD", s.Content.Currency)
	assert.Equal(t, time.Duration(0), s.Timing.DisplayDuration)
	assert.Equal(t, 50, s.Source.Limit)
}

func TestNormalize_AnonymizationAliases(t *testing.T) {
	cases := map[string]AnonymizationStyle{
		"first-name-last-initial": AnonymizeFirstInitial,
		"all-initials":            AnonymizeInitials,
		"first-last-initial":      AnonymizeInitials,
		"random-id":               AnonymizeRandom,
		"random":                  AnonymizeRandom,
	}
	for in, want := range cases {
		s := Normalize(Record{Columns: Columns{AnonymizationStyle: ptr(in)}})
		assert.Equal(t, want, s.Privacy.Style, in)
	}
}

func TestNormalize_LiveVisitorTemplateStaysVisible(t *testing.T) {
	s := Normalize(Record{TemplateID: TemplateLiveVisitors})
	assert.Equal(t, time.Duration(0), s.Timing.DisplayDuration)

	s = Normalize(Record{TemplateID: TemplateLiveVisitors, Columns: Columns{DisplayDuration: ptr(6.0)}})
	assert.Equal(t, 6*time.Second, s.Timing.DisplayDuration)
}

func TestNormalize_CustomTimeWindow(t *testing.T) {
	s := Normalize(Record{Columns: Columns{TimeWindow: ptr("custom"), CustomTimeHours: ptr(36)}})
	assert.Equal(t, 36*time.Hour, s.Source.Window())

	s = Normalize(Record{Columns: Columns{TimeWindow: ptr("custom")}})
	assert.Equal(t, 7*24*time.Hour, s.Source.Window())
}

func TestNormalize_Idempotent(t *testing.T) {
	r := Record{
		TemplateID: TemplateRecentPurchase,
		Columns: Columns{
			Glassmorphism:  ptr(true),
			EventTypes:     []string{"Purchase", "purchase", " signup "},
			URLPatterns:    &URLPatterns{Include: []URLPattern{{Pattern: "/shop", Type: MatchStarts}}},
			ShowAfterDelay: ptr(1.5),
		},
		Config: LegacyConfig{Display: LegacyDisplay{FadeOut: ptr(450)}},
	}

	once := Normalize(r)
	twice := Normalize(Record{Columns: Flatten(once)})

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"purchase", "signup"}, once.Source.EventTypes)
}

func TestURLPatterns_DecodesShapes(t *testing.T) {
	var obj URLPatterns
	require.NoError(t, json.Unmarshal([]byte(`{"include":[{"pattern":"/a","type":"starts_with"}],"exclude":["/b"]}`), &obj))
	assert.Equal(t, []URLPattern{{Pattern: "/a", Type: MatchStarts}}, obj.Include)
	assert.Equal(t, []URLPattern{{Pattern: "/b", Type: MatchContains}}, obj.Exclude)

	var list URLPatterns
	require.NoError(t, json.Unmarshal([]byte(`[{"url":"/x","match_type":"exact"},"/y",""]`), &list))
	assert.Equal(t, []URLPattern{{Pattern: "/x", Type: MatchExact}, {Pattern: "/y", Type: MatchContains}}, list.Include)
	assert.Empty(t, list.Exclude)
}

func TestIsLiveVisitors(t *testing.T) {
	assert.True(t, IsLiveVisitors("live_visitors", ""))
	assert.True(t, IsLiveVisitors("", "Live Visitor Counter"))
	assert.False(t, IsLiveVisitors(TemplateActiveSessions, "Browsing now"))
	assert.False(t, IsLiveVisitors(TemplateRecentPurchase, "Recent sales"))
}
