package widget

// Record is a widget row as stored: typed flat columns, the legacy nested
// config blob and identity. Nil column pointers mean "not set".
type Record struct {
	ID         string       `json:"id"`
	SiteID     string       `json:"site_id"`
	Name       string       `json:"name"`
	TemplateID string       `json:"template_id"`
	Columns    Columns      `json:"columns"`
	Config     LegacyConfig `json:"config"`
}

// Columns are the flat design/behaviour columns. Seconds for display
// duration and delays, milliseconds for fades.
type Columns struct {
	Position          *string  `json:"position,omitempty"`
	OffsetX           *int     `json:"offset_x,omitempty"`
	OffsetY           *int     `json:"offset_y,omitempty"`
	Layout            *string  `json:"layout,omitempty"`
	MinWidth          *int     `json:"min_width,omitempty"`
	MaxWidth          *int     `json:"max_width,omitempty"`
	TextColor         *string  `json:"text_color,omitempty"`
	BorderRadius      *int     `json:"border_radius,omitempty"`
	BorderWidth       *int     `json:"border_width,omitempty"`
	BorderColor       *string  `json:"border_color,omitempty"`
	AccentEnabled     *bool    `json:"border_left_accent,omitempty"`
	AccentWidth       *int     `json:"border_left_accent_width,omitempty"`
	AccentColor       *string  `json:"border_left_accent_color,omitempty"`
	ShadowEnabled     *bool    `json:"shadow_enabled,omitempty"`
	ShadowSize        *string  `json:"shadow_size,omitempty"`
	BackgroundColor   *string  `json:"background_color,omitempty"`
	GradientEnabled   *bool    `json:"gradient_enabled,omitempty"`
	GradientDirection *string  `json:"gradient_direction,omitempty"`
	GradientStart     *string  `json:"gradient_start,omitempty"`
	GradientEnd       *string  `json:"gradient_end,omitempty"`
	Glassmorphism     *bool    `json:"glassmorphism,omitempty"`
	BackdropBlur      *int     `json:"backdrop_blur,omitempty"`
	DisplayDuration   *float64 `json:"display_duration,omitempty"`
	FadeInDuration    *int     `json:"fade_in_duration,omitempty"`
	FadeOutDuration   *int     `json:"fade_out_duration,omitempty"`
	AnimationType     *string  `json:"animation_type,omitempty"`
	ProgressBar       *bool    `json:"progress_bar,omitempty"`
	ProgressBarColor  *string  `json:"progress_bar_color,omitempty"`
	ProgressBarEdge   *string  `json:"progress_bar_position,omitempty"`

	ShowTimestamp    *bool   `json:"show_timestamp,omitempty"`
	TimestampPrefix  *string `json:"timestamp_prefix,omitempty"`
	ShowLocation     *bool   `json:"show_location,omitempty"`
	ShowAvatar       *bool   `json:"show_avatar,omitempty"`
	ShowEventIcon    *bool   `json:"show_event_icon,omitempty"`
	ShowValue        *bool   `json:"show_value,omitempty"`
	ValueFormat      *string `json:"value_format,omitempty"`
	Currency         *string `json:"currency,omitempty"`
	CurrencyPosition *string `json:"currency_position,omitempty"`

	AnonymizeNames     *bool   `json:"anonymize_names,omitempty"`
	AnonymizationStyle *string `json:"anonymization_style,omitempty"`
	HideEmails         *bool   `json:"hide_emails,omitempty"`
	HidePhones         *bool   `json:"hide_phone_numbers,omitempty"`
	MaskIP             *bool   `json:"mask_ip_addresses,omitempty"`
	GDPRCompliant      *bool   `json:"gdpr_compliant,omitempty"`

	Clickable           *bool   `json:"clickable,omitempty"`
	ClickAction         *string `json:"click_action,omitempty"`
	TargetURL           *string `json:"target_url,omitempty"`
	LinkTarget          *string `json:"link_target,omitempty"`
	ShowCloseButton     *bool   `json:"show_close_button,omitempty"`
	CloseButtonPosition *string `json:"close_button_position,omitempty"`
	PauseOnHover        *bool   `json:"pause_on_hover,omitempty"`
	ExpandOnHover       *bool   `json:"expand_on_hover,omitempty"`

	MobilePosition *string `json:"mobile_position,omitempty"`
	MobileMaxWidth *int    `json:"mobile_max_width,omitempty"`
	HideOnMobile   *bool   `json:"hide_on_mobile,omitempty"`
	HideOnDesktop  *bool   `json:"hide_on_desktop,omitempty"`
	StackOnMobile  *bool   `json:"stack_on_mobile,omitempty"`
	ReducedMotion  *bool   `json:"respect_reduced_motion,omitempty"`

	ShowAfterDelay             *float64     `json:"show_after_delay,omitempty"`
	DelayBetweenNotifications  *float64     `json:"delay_between_notifications,omitempty"`
	DisplayFrequency           *string      `json:"display_frequency,omitempty"`
	MaxNotificationsPerSession *int         `json:"max_notifications_per_session,omitempty"`
	URLPatterns                *URLPatterns `json:"url_patterns,omitempty"`

	EventTypes      []string `json:"event_types,omitempty"`
	TimeWindow      *string  `json:"time_window,omitempty"`
	CustomTimeHours *int     `json:"custom_time_hours,omitempty"`
	FetchLimit      *int     `json:"fetch_limit,omitempty"`
}

// LegacyConfig is the older nested config blob. Several fields overlap the
// flat columns under different names.
type LegacyConfig struct {
	Display    LegacyDisplay  `json:"display"`
	Triggers   LegacyTriggers `json:"triggers"`
	EventTypes []string       `json:"event_types,omitempty"`
	TimeWindow *string        `json:"time_window,omitempty"`
}

type LegacyDisplay struct {
	Position        *string  `json:"position,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
	Animation       *string  `json:"animation,omitempty"`
	FadeIn          *int     `json:"fade_in,omitempty"`
	FadeOut         *int     `json:"fade_out,omitempty"`
	BackgroundColor *string  `json:"background_color,omitempty"`
	TextColor       *string  `json:"text_color,omitempty"`
	BorderRadius    *int     `json:"border_radius,omitempty"`
	MaxWidth        *int     `json:"max_width,omitempty"`
	ShowTimestamp   *bool    `json:"show_timestamp,omitempty"`
	ShowAvatar      *bool    `json:"show_avatar,omitempty"`
	ShowLocation    *bool    `json:"show_location,omitempty"`
	ShowProgress    *bool    `json:"show_progress,omitempty"`
	Anonymize       *bool    `json:"anonymize,omitempty"`
	Shadow          *bool    `json:"shadow,omitempty"`
	Clickable       *bool    `json:"clickable,omitempty"`
	URL             *string  `json:"url,omitempty"`
	Currency        *string  `json:"currency,omitempty"`
}

type LegacyTriggers struct {
	Delay         *float64     `json:"delay,omitempty"`
	Interval      *float64     `json:"interval,omitempty"`
	Frequency     *string      `json:"frequency,omitempty"`
	MaxPerSession *int         `json:"max_per_session,omitempty"`
	URLPatterns   *URLPatterns `json:"url_patterns,omitempty"`
}

// columns maps the legacy blob onto the flat column names.
func (l LegacyConfig) columns() Columns {
	d, t := l.Display, l.Triggers
	return Columns{
		Position:                   d.Position,
		DisplayDuration:            d.Duration,
		AnimationType:              d.Animation,
		FadeInDuration:             d.FadeIn,
		FadeOutDuration:            d.FadeOut,
		BackgroundColor:            d.BackgroundColor,
		TextColor:                  d.TextColor,
		BorderRadius:               d.BorderRadius,
		MaxWidth:                   d.MaxWidth,
		ShowTimestamp:              d.ShowTimestamp,
		ShowAvatar:                 d.ShowAvatar,
		ShowLocation:               d.ShowLocation,
		ProgressBar:                d.ShowProgress,
		AnonymizeNames:             d.Anonymize,
		ShadowEnabled:              d.Shadow,
		Clickable:                  d.Clickable,
		TargetURL:                  d.URL,
		Currency:                   d.Currency,
		ShowAfterDelay:             t.Delay,
		DelayBetweenNotifications:  t.Interval,
		DisplayFrequency:           t.Frequency,
		MaxNotificationsPerSession: t.MaxPerSession,
		URLPatterns:                t.URLPatterns,
		EventTypes:                 l.EventTypes,
		TimeWindow:                 l.TimeWindow,
	}
}
