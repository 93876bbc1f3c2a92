// Package render computes what a notification looks like and hands the
// result to a Surface, the platform's drawing primitive. It holds no
// scheduling logic.
package render

import (
	"sort"
	"strings"
	"time"

	"proofpop/internal/widget"
)

// Style is a set of CSS declarations.
type Style map[string]string

// String renders the declarations in a stable order.
func (s Style) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(s[k])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

// Phase is one animation state of a notification element.
type Phase struct {
	Transform  string  `json:"transform"`
	Opacity    float64 `json:"opacity"`
	Transition string  `json:"transition"`
}

// Node is everything a Surface needs to paint one notification.
type Node struct {
	NotificationID string          `json:"notification_id"`
	WidgetID       string          `json:"widget_id"`
	Anchor         widget.Position `json:"anchor"`
	Container      Style           `json:"container"`
	Box            Style           `json:"box"`
	Enter          Phase           `json:"enter"`
	Rest           Phase           `json:"rest"`
	Exit           Phase           `json:"exit"`
	Content        Content         `json:"content"`
	Progress       *Progress       `json:"progress,omitempty"`
	Link           *Link           `json:"link,omitempty"`
}

type Content struct {
	Icon         string `json:"icon,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	AvatarLetter string `json:"avatar_letter,omitempty"`
	Title        string `json:"title"`
	Name         string `json:"name,omitempty"`
	Message      string `json:"message"`
	Value        string `json:"value,omitempty"`
	Stars        int    `json:"stars,omitempty"`
	Review       string `json:"review,omitempty"`
	Trailer      string `json:"trailer,omitempty"`
	CloseButton  bool   `json:"close_button,omitempty"`
	// ClosePosition is the corner the close button sits in.
	ClosePosition widget.Position `json:"close_position,omitempty"`
	// ExpandOnHover lets the surface show the full message on hover.
	ExpandOnHover bool `json:"expand_on_hover,omitempty"`
}

// Progress is a bar that shrinks from full width to zero over Duration.
type Progress struct {
	Color    string        `json:"color"`
	Edge     widget.Edge   `json:"edge"`
	Duration time.Duration `json:"duration"`
}

// Link is where a click on the notification navigates.
type Link struct {
	URL    string            `json:"url"`
	Target widget.LinkTarget `json:"target"`
}
