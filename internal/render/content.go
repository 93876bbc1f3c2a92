package render

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"proofpop/internal/format"
	"proofpop/internal/notification"
	"proofpop/internal/widget"
)

const reviewExcerptRunes = 80

// Env is what the renderer knows about the visitor's screen.
type Env struct {
	Mobile        bool
	ReducedMotion bool
}

// Build computes the full render record for a notification.
func Build(n *notification.Notification, env Env) Node {
	s := n.Settings

	anchor := s.Visual.Position
	if env.Mobile {
		anchor = s.Responsive.MobilePosition
	}
	if !validAnchor(anchor) {
		anchor = widget.PositionBottomLeft
	}

	animation := s.Timing.Animation
	if env.ReducedMotion && s.Responsive.ReducedMotion && animation != widget.AnimationNone {
		animation = widget.AnimationFade
	}
	enter, rest, exit := phases(animation, anchor, s.Timing.FadeIn, s.Timing.FadeOut)

	node := Node{
		NotificationID: n.ID,
		WidgetID:       n.WidgetID,
		Anchor:         anchor,
		Container:      containerStyle(anchor, s.Visual.OffsetX, s.Visual.OffsetY),
		Box:            boxStyle(s, env.Mobile),
		Enter:          enter,
		Rest:           rest,
		Exit:           exit,
		Content:        content(n),
	}

	if s.Timing.ProgressBar && s.Timing.DisplayDuration > 0 {
		edge := s.Timing.ProgressEdge
		if edge != widget.EdgeTop {
			edge = widget.EdgeBottom
		}
		node.Progress = &Progress{
			Color:    widget.SafeColor(s.Timing.ProgressColor, defaultAccent),
			Edge:     edge,
			Duration: s.Timing.DisplayDuration,
		}
	}

	if i := s.Interaction; i.Clickable && i.Action == widget.ClickOpenURL && i.TargetURL != "" {
		target := i.LinkTarget
		if target != widget.TargetSelf {
			target = widget.TargetBlank
		}
		node.Link = &Link{URL: i.TargetURL, Target: target}
	}
	return node
}

func content(n *notification.Notification) Content {
	s := n.Settings
	d := n.Details

	name := d.CustomerName
	if name != "" && s.Privacy.AnonymizeNames {
		name = format.Anonymize(name, s.Privacy.Style, n.ID)
	}

	c := Content{
		Title:       n.Title,
		Name:        name,
		Message:     n.Message,
		CloseButton: s.Interaction.CloseButton,

		ExpandOnHover: s.Interaction.ExpandOnHover,
	}
	if c.CloseButton {
		c.ClosePosition = s.Interaction.ClosePosition
	}

	if s.Content.ShowEventIcon {
		c.Icon = n.Icon
	}
	if s.Content.ShowAvatar {
		if d.AvatarURL != "" {
			c.AvatarURL = d.AvatarURL
		} else {
			c.AvatarLetter = avatarLetter(name, n.Title)
		}
	}

	if s.Content.ShowValue && d.Value != nil {
		cs := s.Content
		if d.Currency != "" {
			cs.Currency = d.Currency
		}
		if v := format.Value(*d.Value, cs); !strings.Contains(n.Message, v) {
			c.Value = v
		}
	}

	if n.EventType == notification.EventReview && d.Rating >= 1 && d.Rating <= 5 {
		c.Stars = d.Rating
	}
	if d.ReviewText != "" {
		c.Review = excerpt(d.ReviewText, reviewExcerptRunes)
	}

	c.Trailer = trailer(n)
	return c
}

func trailer(n *notification.Notification) string {
	s := n.Settings.Content
	var parts []string
	if s.ShowTimestamp && n.TimeAgo != "" {
		if prefix := strings.TrimSpace(s.TimestampPrefix); prefix != "" {
			parts = append(parts, prefix+" "+n.TimeAgo)
		} else {
			parts = append(parts, n.TimeAgo)
		}
	}
	if s.ShowLocation && n.Details.Location != "" {
		parts = append(parts, n.Details.Location)
	}
	return strings.Join(parts, " · ")
}

func avatarLetter(candidates ...string) string {
	for _, c := range candidates {
		for _, r := range c {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return string(unicode.ToUpper(r))
			}
		}
	}
	return "?"
}

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func validAnchor(p widget.Position) bool {
	for _, known := range widget.Positions {
		if p == known {
			return true
		}
	}
	return false
}

// Remaining is the bar width, as a fraction of full width, after elapsed.
func (p Progress) Remaining(elapsed time.Duration) float64 {
	if p.Duration <= 0 || elapsed >= p.Duration {
		return 0
	}
	if elapsed <= 0 {
		return 1
	}
	return 1 - float64(elapsed)/float64(p.Duration)
}
