package widget

import "time"

type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
	PositionCenterTop   Position = "center-top"
)

var Positions = []Position{
	PositionTopLeft, PositionTopRight, PositionBottomLeft, PositionBottomRight, PositionCenterTop,
}

type Layout string

const (
	LayoutCard      Layout = "card"
	LayoutCompact   Layout = "compact"
	LayoutMinimal   Layout = "minimal"
	LayoutFullWidth Layout = "full-width"
)

type ShadowSize string

const (
	ShadowSmall  ShadowSize = "sm"
	ShadowMedium ShadowSize = "md"
	ShadowLarge  ShadowSize = "lg"
	ShadowXL     ShadowSize = "xl"
)

type Animation string

const (
	AnimationSlide  Animation = "slide"
	AnimationFade   Animation = "fade"
	AnimationBounce Animation = "bounce"
	AnimationZoom   Animation = "zoom"
	AnimationNone   Animation = "none"
)

type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

type ValueFormat string

const (
	ValueCurrency ValueFormat = "currency"
	ValueNumber   ValueFormat = "number"
)

type SymbolPosition string

const (
	SymbolBefore SymbolPosition = "before"
	SymbolAfter  SymbolPosition = "after"
)

type AnonymizationStyle string

const (
	// AnonymizeFirstInitial keeps the first name and the last initial: "John S.".
	AnonymizeFirstInitial AnonymizationStyle = "first-initial"
	// AnonymizeInitials reduces every word to an initial: "J. S.".
	AnonymizeInitials AnonymizationStyle = "first-last-initial"
	AnonymizeRandom   AnonymizationStyle = "random"
)

type Frequency string

const (
	FrequencyAllTime        Frequency = "all_time"
	FrequencyOncePerSession Frequency = "once_per_session"
	FrequencyOncePerDay     Frequency = "once_per_day"
)

type ClickAction string

const (
	ClickNone    ClickAction = "none"
	ClickOpenURL ClickAction = "open_url"
)

type LinkTarget string

const (
	TargetBlank LinkTarget = "_blank"
	TargetSelf  LinkTarget = "_self"
)

type TimeWindow string

const (
	WindowLastHour   TimeWindow = "last_hour"
	WindowLast24h    TimeWindow = "last_24_hours"
	WindowLast7Days  TimeWindow = "last_7_days"
	WindowLast30Days TimeWindow = "last_30_days"
	WindowCustom     TimeWindow = "custom"
)

// Settings is the canonical per-widget configuration. Every field holds a
// resolved value; nothing downstream of Normalize checks for absence.
type Settings struct {
	Visual      Visual      `json:"visual"`
	Timing      Timing      `json:"timing"`
	Content     Content     `json:"content"`
	Privacy     Privacy     `json:"privacy"`
	Interaction Interaction `json:"interaction"`
	Responsive  Responsive  `json:"responsive"`
	Triggers    Triggers    `json:"triggers"`
	Source      Source      `json:"source"`
}

type Visual struct {
	Position   Position   `json:"position"`
	OffsetX    int        `json:"offset_x"`
	OffsetY    int        `json:"offset_y"`
	Layout     Layout     `json:"layout"`
	MinWidth   int        `json:"min_width"`
	MaxWidth   int        `json:"max_width"`
	TextColor  string     `json:"text_color"`
	Border     Border     `json:"border"`
	Shadow     Shadow     `json:"shadow"`
	Background Background `json:"background"`
}

type Border struct {
	Radius      int    `json:"radius"`
	Width       int    `json:"width"`
	Color       string `json:"color"`
	Accent      bool   `json:"accent"`
	AccentWidth int    `json:"accent_width"`
	AccentColor string `json:"accent_color"`
}

type Shadow struct {
	Enabled bool       `json:"enabled"`
	Size    ShadowSize `json:"size"`
}

type Background struct {
	Color             string `json:"color"`
	Gradient          bool   `json:"gradient"`
	GradientDirection string `json:"gradient_direction"`
	GradientStart     string `json:"gradient_start"`
	GradientEnd       string `json:"gradient_end"`
	Glass             bool   `json:"glass"`
	BlurRadius        int    `json:"blur_radius"`
}

type Timing struct {
	// DisplayDuration of zero keeps the notification up until it is replaced.
	DisplayDuration time.Duration `json:"display_duration"`
	FadeIn          time.Duration `json:"fade_in"`
	FadeOut         time.Duration `json:"fade_out"`
	Animation       Animation     `json:"animation"`
	ProgressBar     bool          `json:"progress_bar"`
	ProgressColor   string        `json:"progress_color"`
	ProgressEdge    Edge          `json:"progress_edge"`
}

type Content struct {
	ShowTimestamp    bool           `json:"show_timestamp"`
	TimestampPrefix  string         `json:"timestamp_prefix"`
	ShowLocation     bool           `json:"show_location"`
	ShowAvatar       bool           `json:"show_avatar"`
	ShowEventIcon    bool           `json:"show_event_icon"`
	ShowValue        bool           `json:"show_value"`
	ValueFormat      ValueFormat    `json:"value_format"`
	Currency         string         `json:"currency"`
	CurrencyPosition SymbolPosition `json:"currency_position"`
}

type Privacy struct {
	AnonymizeNames bool               `json:"anonymize_names"`
	Style          AnonymizationStyle `json:"style"`
	HideEmails     bool               `json:"hide_emails"`
	HidePhones     bool               `json:"hide_phones"`
	MaskIP         bool               `json:"mask_ip"`
	GDPR           bool               `json:"gdpr"`
}

type Interaction struct {
	Clickable     bool        `json:"clickable"`
	Action        ClickAction `json:"action"`
	TargetURL     string      `json:"target_url"`
	LinkTarget    LinkTarget  `json:"link_target"`
	CloseButton   bool        `json:"close_button"`
	ClosePosition Position    `json:"close_position"`
	PauseOnHover  bool        `json:"pause_on_hover"`
	ExpandOnHover bool        `json:"expand_on_hover"`
}

type Responsive struct {
	MobilePosition Position `json:"mobile_position"`
	MobileMaxWidth int      `json:"mobile_max_width"`
	HideOnMobile   bool     `json:"hide_on_mobile"`
	HideOnDesktop  bool     `json:"hide_on_desktop"`
	StackOnMobile  bool     `json:"stack_on_mobile"`
	ReducedMotion  bool     `json:"reduced_motion"`
}

type Triggers struct {
	ShowAfterDelay time.Duration `json:"show_after_delay"`
	DelayBetween   time.Duration `json:"delay_between"`
	Frequency      Frequency     `json:"frequency"`
	MaxPerSession  int           `json:"max_per_session"`
	URLPatterns    URLPatterns   `json:"url_patterns"`
}

// Source controls which stored events feed the widget.
type Source struct {
	EventTypes  []string   `json:"event_types"`
	TimeWindow  TimeWindow `json:"time_window"`
	CustomHours int        `json:"custom_hours"`
	Limit       int        `json:"limit"`
}

// Window returns how far back events are considered.
func (s Source) Window() time.Duration {
	switch s.TimeWindow {
	case WindowLastHour:
		return time.Hour
	case WindowLast24h:
		return 24 * time.Hour
	case WindowLast30Days:
		return 30 * 24 * time.Hour
	case WindowCustom:
		if s.CustomHours > 0 {
			return time.Duration(s.CustomHours) * time.Hour
		}
	}
	return 7 * 24 * time.Hour
}
