package render

import (
	"fmt"
	"time"

	"proofpop/internal/widget"
)

const (
	easeOut    = "cubic-bezier(0.16, 1, 0.3, 1)"
	easeSpring = "cubic-bezier(0.68, -0.55, 0.265, 1.55)"
)

type motion struct {
	// from is the off-screen transform used for entering and exiting.
	from        func(anchor widget.Position) string
	rest        string
	easing      string
	opacityOnly bool
}

var motions = map[widget.Animation]motion{
	widget.AnimationSlide: {
		from: func(anchor widget.Position) string {
			switch anchor {
			case widget.PositionCenterTop:
				return "translateY(-120%)"
			case widget.PositionTopRight, widget.PositionBottomRight:
				return "translateX(120%)"
			}
			return "translateX(-120%)"
		},
		rest:   "translate(0, 0)",
		easing: easeOut,
	},
	widget.AnimationFade: {
		from:        func(widget.Position) string { return "none" },
		rest:        "none",
		easing:      "ease",
		opacityOnly: true,
	},
	widget.AnimationBounce: {
		from: func(anchor widget.Position) string {
			if isTop(anchor) {
				return "translateY(-20px)"
			}
			return "translateY(20px)"
		},
		rest:   "translateY(0)",
		easing: easeSpring,
	},
	widget.AnimationZoom: {
		from:   func(widget.Position) string { return "scale(0.9)" },
		rest:   "scale(1)",
		easing: easeOut,
	},
}

// phases returns the enter, resting and exit states for an animation.
// Unknown animations and "none" snap straight to the resting state.
func phases(a widget.Animation, anchor widget.Position, fadeIn, fadeOut time.Duration) (enter, rest, exit Phase) {
	m, ok := motions[a]
	if !ok {
		still := Phase{Transform: "none", Opacity: 1, Transition: "none"}
		return still, still, Phase{Transform: "none", Opacity: 0, Transition: "none"}
	}

	from := m.from(anchor)
	enter = Phase{Transform: from, Opacity: 0, Transition: "none"}
	rest = Phase{Transform: m.rest, Opacity: 1, Transition: transition(m, fadeIn)}
	exit = Phase{Transform: from, Opacity: 0, Transition: transition(m, fadeOut)}
	return enter, rest, exit
}

func transition(m motion, d time.Duration) string {
	ms := d.Milliseconds()
	if m.opacityOnly {
		return fmt.Sprintf("opacity %dms %s", ms, m.easing)
	}
	return fmt.Sprintf("transform %dms %s, opacity %dms %s", ms, m.easing, ms, m.easing)
}

func isTop(anchor widget.Position) bool {
	return anchor == widget.PositionTopLeft || anchor == widget.PositionTopRight || anchor == widget.PositionCenterTop
}
