package widget

import (
	"math"
	"slices"
	"strings"
	"time"
)

// Normalize resolves a raw record into Settings. Flat columns win over the
// legacy config, which wins over template defaults, which win over the
// built-in defaults. It never fails.
func Normalize(r Record) Settings {
	c := r.Columns
	c.fill(r.Config.columns())
	if tpl, ok := templateDefaults[strings.ToLower(r.TemplateID)]; ok {
		c.fill(tpl)
	}
	c.fill(builtinDefaults())
	return settingsFromColumns(c)
}

// Flatten renders settings back into fully populated flat columns.
func Flatten(s Settings) Columns {
	patterns := s.Triggers.URLPatterns.clone()
	return Columns{
		Position:          ptr(string(s.Visual.Position)),
		OffsetX:           ptr(s.Visual.OffsetX),
		OffsetY:           ptr(s.Visual.OffsetY),
		Layout:            ptr(string(s.Visual.Layout)),
		MinWidth:          ptr(s.Visual.MinWidth),
		MaxWidth:          ptr(s.Visual.MaxWidth),
		TextColor:         ptr(s.Visual.TextColor),
		BorderRadius:      ptr(s.Visual.Border.Radius),
		BorderWidth:       ptr(s.Visual.Border.Width),
		BorderColor:       ptr(s.Visual.Border.Color),
		AccentEnabled:     ptr(s.Visual.Border.Accent),
		AccentWidth:       ptr(s.Visual.Border.AccentWidth),
		AccentColor:       ptr(s.Visual.Border.AccentColor),
		ShadowEnabled:     ptr(s.Visual.Shadow.Enabled),
		ShadowSize:        ptr(string(s.Visual.Shadow.Size)),
		BackgroundColor:   ptr(s.Visual.Background.Color),
		GradientEnabled:   ptr(s.Visual.Background.Gradient),
		GradientDirection: ptr(s.Visual.Background.GradientDirection),
		GradientStart:     ptr(s.Visual.Background.GradientStart),
		GradientEnd:       ptr(s.Visual.Background.GradientEnd),
		Glassmorphism:     ptr(s.Visual.Background.Glass),
		BackdropBlur:      ptr(s.Visual.Background.BlurRadius),
		DisplayDuration:   ptr(s.Timing.DisplayDuration.Seconds()),
		FadeInDuration:    ptr(int(s.Timing.FadeIn.Milliseconds())),
		FadeOutDuration:   ptr(int(s.Timing.FadeOut.Milliseconds())),
		AnimationType:     ptr(string(s.Timing.Animation)),
		ProgressBar:       ptr(s.Timing.ProgressBar),
		ProgressBarColor:  ptr(s.Timing.ProgressColor),
		ProgressBarEdge:   ptr(string(s.Timing.ProgressEdge)),

		ShowTimestamp:    ptr(s.Content.ShowTimestamp),
		TimestampPrefix:  ptr(s.Content.TimestampPrefix),
		ShowLocation:     ptr(s.Content.ShowLocation),
		ShowAvatar:       ptr(s.Content.ShowAvatar),
		ShowEventIcon:    ptr(s.Content.ShowEventIcon),
		ShowValue:        ptr(s.Content.ShowValue),
		ValueFormat:      ptr(string(s.Content.ValueFormat)),
		Currency:         ptr(s.Content.Currency),
		CurrencyPosition: ptr(string(s.Content.CurrencyPosition)),

		AnonymizeNames:     ptr(s.Privacy.AnonymizeNames),
		AnonymizationStyle: ptr(string(s.Privacy.Style)),
		HideEmails:         ptr(s.Privacy.HideEmails),
		HidePhones:         ptr(s.Privacy.HidePhones),
		MaskIP:             ptr(s.Privacy.MaskIP),
		GDPRCompliant:      ptr(s.Privacy.GDPR),

		Clickable:           ptr(s.Interaction.Clickable),
		ClickAction:         ptr(string(s.Interaction.Action)),
		TargetURL:           ptr(s.Interaction.TargetURL),
		LinkTarget:          ptr(string(s.Interaction.LinkTarget)),
		ShowCloseButton:     ptr(s.Interaction.CloseButton),
		CloseButtonPosition: ptr(string(s.Interaction.ClosePosition)),
		PauseOnHover:        ptr(s.Interaction.PauseOnHover),
		ExpandOnHover:       ptr(s.Interaction.ExpandOnHover),

		MobilePosition: ptr(string(s.Responsive.MobilePosition)),
		MobileMaxWidth: ptr(s.Responsive.MobileMaxWidth),
		HideOnMobile:   ptr(s.Responsive.HideOnMobile),
		HideOnDesktop:  ptr(s.Responsive.HideOnDesktop),
		StackOnMobile:  ptr(s.Responsive.StackOnMobile),
		ReducedMotion:  ptr(s.Responsive.ReducedMotion),

		ShowAfterDelay:             ptr(s.Triggers.ShowAfterDelay.Seconds()),
		DelayBetweenNotifications:  ptr(s.Triggers.DelayBetween.Seconds()),
		DisplayFrequency:           ptr(string(s.Triggers.Frequency)),
		MaxNotificationsPerSession: ptr(s.Triggers.MaxPerSession),
		URLPatterns:                &patterns,

		EventTypes:      slices.Clone(s.Source.EventTypes),
		TimeWindow:      ptr(string(s.Source.TimeWindow)),
		CustomTimeHours: ptr(s.Source.CustomHours),
		FetchLimit:      ptr(s.Source.Limit),
	}
}

func builtinDefaults() Columns {
	return Columns{
		Position:          ptr(string(PositionBottomLeft)),
		OffsetX:           ptr(20),
		OffsetY:           ptr(20),
		Layout:            ptr(string(LayoutCard)),
		MinWidth:          ptr(280),
		MaxWidth:          ptr(380),
		TextColor:         ptr("#1f2937"),
		BorderRadius:      ptr(12),
		BorderWidth:       ptr(0),
		BorderColor:       ptr("#e5e7eb"),
		AccentEnabled:     ptr(false),
		AccentWidth:       ptr(4),
		AccentColor:       ptr("#3b82f6"),
		ShadowEnabled:     ptr(true),
		ShadowSize:        ptr(string(ShadowMedium)),
		BackgroundColor:   ptr("#ffffff"),
		GradientEnabled:   ptr(false),
		GradientDirection: ptr("135deg"),
		GradientStart:     ptr("#667eea"),
		GradientEnd:       ptr("#764ba2"),
		Glassmorphism:     ptr(false),
		BackdropBlur:      ptr(10),
		DisplayDuration:   ptr(5.0),
		FadeInDuration:    ptr(300),
		FadeOutDuration:   ptr(300),
		AnimationType:     ptr(string(AnimationSlide)),
		ProgressBar:       ptr(false),
		ProgressBarColor:  ptr("#3b82f6"),
		ProgressBarEdge:   ptr(string(EdgeBottom)),

		ShowTimestamp:    ptr(true),
		TimestampPrefix:  ptr(""),
		ShowLocation:     ptr(true),
		ShowAvatar:       ptr(true),
		ShowEventIcon:    ptr(true),
		ShowValue:        ptr(true),
		ValueFormat:      ptr(string(ValueCurrency)),
		Currency:         ptr("USD"),
		CurrencyPosition: ptr(string(SymbolBefore)),

		AnonymizeNames:     ptr(false),
		AnonymizationStyle: ptr(string(AnonymizeFirstInitial)),
		HideEmails:         ptr(true),
		HidePhones:         ptr(true),
		MaskIP:             ptr(true),
		GDPRCompliant:      ptr(false),

		Clickable:           ptr(false),
		ClickAction:         ptr(string(ClickNone)),
		TargetURL:           ptr(""),
		LinkTarget:          ptr(string(TargetBlank)),
		ShowCloseButton:     ptr(false),
		CloseButtonPosition: ptr(string(PositionTopRight)),
		PauseOnHover:        ptr(true),
		ExpandOnHover:       ptr(false),

		MobilePosition: ptr(string(PositionBottomLeft)),
		MobileMaxWidth: ptr(320),
		HideOnMobile:   ptr(false),
		HideOnDesktop:  ptr(false),
		StackOnMobile:  ptr(true),
		ReducedMotion:  ptr(true),

		ShowAfterDelay:             ptr(3.0),
		DelayBetweenNotifications:  ptr(5.0),
		DisplayFrequency:           ptr(string(FrequencyAllTime)),
		MaxNotificationsPerSession: ptr(10),
		URLPatterns:                &URLPatterns{},

		TimeWindow:      ptr(string(WindowLast7Days)),
		CustomTimeHours: ptr(0),
		FetchLimit:      ptr(10),
	}
}

// templateDefaults hold per-template overrides of the built-in defaults.
var templateDefaults = map[string]Columns{
	TemplateRecentPurchase: {
		ShowValue:   ptr(true),
		AccentColor: ptr("#10b981"),
	},
	TemplateNewSignup: {
		ShowValue: ptr(false),
	},
	TemplateFormSubmission: {
		ShowValue: ptr(false),
	},
	TemplateCustomerReview: {
		ShowValue:       ptr(false),
		DisplayDuration: ptr(7.0),
	},
	TemplateCartActivity: {
		ShowValue: ptr(true),
	},
	TemplateActiveSessions: {
		ShowValue:  ptr(false),
		TimeWindow: ptr(string(WindowLastHour)),
	},
	TemplateLiveVisitors: {
		DisplayDuration: ptr(0.0),
		ShowTimestamp:   ptr(false),
		ShowValue:       ptr(false),
		ShowAvatar:      ptr(false),
	},
}

func settingsFromColumns(c Columns) Settings {
	d := builtinDefaults()

	return Settings{
		Visual: Visual{
			Position:  enum(*c.Position, *d.Position, Positions),
			OffsetX:   clampInt(*c.OffsetX, 0, 500),
			OffsetY:   clampInt(*c.OffsetY, 0, 500),
			Layout:    enum(*c.Layout, *d.Layout, []Layout{LayoutCard, LayoutCompact, LayoutMinimal, LayoutFullWidth}),
			MinWidth:  clampInt(*c.MinWidth, 0, 2000),
			MaxWidth:  clampInt(*c.MaxWidth, 0, 2000),
			TextColor: color(*c.TextColor, *d.TextColor),
			Border: Border{
				Radius:      clampInt(*c.BorderRadius, 0, 100),
				Width:       clampInt(*c.BorderWidth, 0, 20),
				Color:       color(*c.BorderColor, *d.BorderColor),
				Accent:      *c.AccentEnabled,
				AccentWidth: clampInt(*c.AccentWidth, 0, 20),
				AccentColor: color(*c.AccentColor, *d.AccentColor),
			},
			Shadow: Shadow{
				Enabled: *c.ShadowEnabled,
				Size:    enum(*c.ShadowSize, *d.ShadowSize, []ShadowSize{ShadowSmall, ShadowMedium, ShadowLarge, ShadowXL}),
			},
			Background: Background{
				Color:             color(*c.BackgroundColor, *d.BackgroundColor),
				Gradient:          *c.GradientEnabled,
				GradientDirection: nonEmpty(*c.GradientDirection, *d.GradientDirection),
				GradientStart:     color(*c.GradientStart, *d.GradientStart),
				GradientEnd:       color(*c.GradientEnd, *d.GradientEnd),
				Glass:             *c.Glassmorphism,
				BlurRadius:        clampInt(*c.BackdropBlur, 0, 100),
			},
		},
		Timing: Timing{
			DisplayDuration: seconds(*c.DisplayDuration),
			FadeIn:          millis(*c.FadeInDuration),
			FadeOut:         millis(*c.FadeOutDuration),
			Animation:       enum(*c.AnimationType, *d.AnimationType, []Animation{AnimationSlide, AnimationFade, AnimationBounce, AnimationZoom, AnimationNone}),
			ProgressBar:     *c.ProgressBar,
			ProgressColor:   color(*c.ProgressBarColor, *d.ProgressBarColor),
			ProgressEdge:    enum(*c.ProgressBarEdge, *d.ProgressBarEdge, []Edge{EdgeTop, EdgeBottom}),
		},
		Content: Content{
			ShowTimestamp:    *c.ShowTimestamp,
			TimestampPrefix:  *c.TimestampPrefix,
			ShowLocation:     *c.ShowLocation,
			ShowAvatar:       *c.ShowAvatar,
			ShowEventIcon:    *c.ShowEventIcon,
			ShowValue:        *c.ShowValue,
			ValueFormat:      enum(*c.ValueFormat, *d.ValueFormat, []ValueFormat{ValueCurrency, ValueNumber}),
			Currency:         currencyCode(*c.Currency, *d.Currency),
			CurrencyPosition: enum(*c.CurrencyPosition, *d.CurrencyPosition, []SymbolPosition{SymbolBefore, SymbolAfter}),
		},
		Privacy: Privacy{
			AnonymizeNames: *c.AnonymizeNames,
			Style:          anonymizationStyle(*c.AnonymizationStyle),
			HideEmails:     *c.HideEmails,
			HidePhones:     *c.HidePhones,
			MaskIP:         *c.MaskIP,
			GDPR:           *c.GDPRCompliant,
		},
		Interaction: Interaction{
			Clickable:     *c.Clickable,
			Action:        enum(*c.ClickAction, *d.ClickAction, []ClickAction{ClickNone, ClickOpenURL}),
			TargetURL:     strings.TrimSpace(*c.TargetURL),
			LinkTarget:    enum(*c.LinkTarget, *d.LinkTarget, []LinkTarget{TargetBlank, TargetSelf}),
			CloseButton:   *c.ShowCloseButton,
			ClosePosition: enum(*c.CloseButtonPosition, *d.CloseButtonPosition, []Position{PositionTopLeft, PositionTopRight}),
			PauseOnHover:  *c.PauseOnHover,
			ExpandOnHover: *c.ExpandOnHover,
		},
		Responsive: Responsive{
			MobilePosition: enum(*c.MobilePosition, *d.MobilePosition, Positions),
			MobileMaxWidth: clampInt(*c.MobileMaxWidth, 0, 2000),
			HideOnMobile:   *c.HideOnMobile,
			HideOnDesktop:  *c.HideOnDesktop,
			StackOnMobile:  *c.StackOnMobile,
			ReducedMotion:  *c.ReducedMotion,
		},
		Triggers: Triggers{
			ShowAfterDelay: seconds(*c.ShowAfterDelay),
			DelayBetween:   seconds(*c.DelayBetweenNotifications),
			Frequency:      frequency(*c.DisplayFrequency),
			MaxPerSession:  clampInt(*c.MaxNotificationsPerSession, 1, 1000),
			URLPatterns:    c.URLPatterns.clone(),
		},
		Source: Source{
			EventTypes:  cleanEventTypes(c.EventTypes),
			TimeWindow:  enum(*c.TimeWindow, *d.TimeWindow, []TimeWindow{WindowLastHour, WindowLast24h, WindowLast7Days, WindowLast30Days, WindowCustom}),
			CustomHours: clampInt(*c.CustomTimeHours, 0, 24*365),
			Limit:       clampInt(*c.FetchLimit, 1, 50),
		},
	}
}

// fill sets every unset column from src.
func (c *Columns) fill(src Columns) {
	fillPtr(&c.Position, src.Position)
	fillPtr(&c.OffsetX, src.OffsetX)
	fillPtr(&c.OffsetY, src.OffsetY)
	fillPtr(&c.Layout, src.Layout)
	fillPtr(&c.MinWidth, src.MinWidth)
	fillPtr(&c.MaxWidth, src.MaxWidth)
	fillPtr(&c.TextColor, src.TextColor)
	fillPtr(&c.BorderRadius, src.BorderRadius)
	fillPtr(&c.BorderWidth, src.BorderWidth)
	fillPtr(&c.BorderColor, src.BorderColor)
	fillPtr(&c.AccentEnabled, src.AccentEnabled)
	fillPtr(&c.AccentWidth, src.AccentWidth)
	fillPtr(&c.AccentColor, src.AccentColor)
	fillPtr(&c.ShadowEnabled, src.ShadowEnabled)
	fillPtr(&c.ShadowSize, src.ShadowSize)
	fillPtr(&c.BackgroundColor, src.BackgroundColor)
	fillPtr(&c.GradientEnabled, src.GradientEnabled)
	fillPtr(&c.GradientDirection, src.GradientDirection)
	fillPtr(&c.GradientStart, src.GradientStart)
	fillPtr(&c.GradientEnd, src.GradientEnd)
	fillPtr(&c.Glassmorphism, src.Glassmorphism)
	fillPtr(&c.BackdropBlur, src.BackdropBlur)
	fillPtr(&c.DisplayDuration, src.DisplayDuration)
	fillPtr(&c.FadeInDuration, src.FadeInDuration)
	fillPtr(&c.FadeOutDuration, src.FadeOutDuration)
	fillPtr(&c.AnimationType, src.AnimationType)
	fillPtr(&c.ProgressBar, src.ProgressBar)
	fillPtr(&c.ProgressBarColor, src.ProgressBarColor)
	fillPtr(&c.ProgressBarEdge, src.ProgressBarEdge)

	fillPtr(&c.ShowTimestamp, src.ShowTimestamp)
	fillPtr(&c.TimestampPrefix, src.TimestampPrefix)
	fillPtr(&c.ShowLocation, src.ShowLocation)
	fillPtr(&c.ShowAvatar, src.ShowAvatar)
	fillPtr(&c.ShowEventIcon, src.ShowEventIcon)
	fillPtr(&c.ShowValue, src.ShowValue)
	fillPtr(&c.ValueFormat, src.ValueFormat)
	fillPtr(&c.Currency, src.Currency)
	fillPtr(&c.CurrencyPosition, src.CurrencyPosition)

	fillPtr(&c.AnonymizeNames, src.AnonymizeNames)
	fillPtr(&c.AnonymizationStyle, src.AnonymizationStyle)
	fillPtr(&c.HideEmails, src.HideEmails)
	fillPtr(&c.HidePhones, src.HidePhones)
	fillPtr(&c.MaskIP, src.MaskIP)
	fillPtr(&c.GDPRCompliant, src.GDPRCompliant)

	fillPtr(&c.Clickable, src.Clickable)
	fillPtr(&c.ClickAction, src.ClickAction)
	fillPtr(&c.TargetURL, src.TargetURL)
	fillPtr(&c.LinkTarget, src.LinkTarget)
	fillPtr(&c.ShowCloseButton, src.ShowCloseButton)
	fillPtr(&c.CloseButtonPosition, src.CloseButtonPosition)
	fillPtr(&c.PauseOnHover, src.PauseOnHover)
	fillPtr(&c.ExpandOnHover, src.ExpandOnHover)

	fillPtr(&c.MobilePosition, src.MobilePosition)
	fillPtr(&c.MobileMaxWidth, src.MobileMaxWidth)
	fillPtr(&c.HideOnMobile, src.HideOnMobile)
	fillPtr(&c.HideOnDesktop, src.HideOnDesktop)
	fillPtr(&c.StackOnMobile, src.StackOnMobile)
	fillPtr(&c.ReducedMotion, src.ReducedMotion)

	fillPtr(&c.ShowAfterDelay, src.ShowAfterDelay)
	fillPtr(&c.DelayBetweenNotifications, src.DelayBetweenNotifications)
	fillPtr(&c.DisplayFrequency, src.DisplayFrequency)
	fillPtr(&c.MaxNotificationsPerSession, src.MaxNotificationsPerSession)
	fillPtr(&c.URLPatterns, src.URLPatterns)

	if len(c.EventTypes) == 0 && len(src.EventTypes) > 0 {
		c.EventTypes = slices.Clone(src.EventTypes)
	}
	fillPtr(&c.TimeWindow, src.TimeWindow)
	fillPtr(&c.CustomTimeHours, src.CustomTimeHours)
	fillPtr(&c.FetchLimit, src.FetchLimit)
}

func fillPtr[T any](dst **T, src *T) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func ptr[T any](v T) *T {
	return &v
}

func enum[T ~string](value, fallback string, allowed []T) T {
	v := T(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(allowed, v) {
		return v
	}
	return T(fallback)
}

func frequency(value string) Frequency {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "once_per_session", "once-per-session", "session":
		return FrequencyOncePerSession
	case "once_per_day", "once-per-day", "daily":
		return FrequencyOncePerDay
	default:
		return FrequencyAllTime
	}
}

func anonymizationStyle(value string) AnonymizationStyle {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "first-last-initial", "all-initials", "initials":
		return AnonymizeInitials
	case "random", "random-id":
		return AnonymizeRandom
	default:
		return AnonymizeFirstInitial
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func seconds(v float64) time.Duration {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return time.Duration(math.Round(min(v, 3600) * float64(time.Second)))
}

func millis(v int) time.Duration {
	return time.Duration(clampInt(v, 0, 10000)) * time.Millisecond
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// SafeColor returns value when it is usable as a CSS colour, else fallback.
func SafeColor(value, fallback string) string {
	return color(value, fallback)
}

// color accepts hex, rgb()/rgba()/hsl() and bare css names; anything else
// falls back.
func color(value, fallback string) string {
	v := strings.TrimSpace(value)
	if v == "" || strings.ContainsAny(v, ";{}<>\"'") {
		return fallback
	}
	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) != 3 && len(hex) != 4 && len(hex) != 6 && len(hex) != 8 {
			return fallback
		}
		for _, r := range hex {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return fallback
			}
		}
		return v
	}
	return v
}

func currencyCode(value, fallback string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	if len(v) != 3 {
		return fallback
	}
	for _, r := range v {
		if r < 'A' || r > 'Z' {
			return fallback
		}
	}
	return v
}

func cleanEventTypes(types []string) []string {
	var out []string
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
