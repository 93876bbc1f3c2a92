package render

import (
	"fmt"
	"strconv"
	"strings"

	"proofpop/internal/widget"
)

const (
	defaultBackground = "#ffffff"
	defaultText       = "#1f2937"
	defaultBorder     = "#e5e7eb"
	defaultAccent     = "#3b82f6"
	containerZIndex   = "2147483000"
)

var shadowPresets = map[widget.ShadowSize]string{
	widget.ShadowSmall:  "0 1px 3px rgba(0, 0, 0, 0.12)",
	widget.ShadowMedium: "0 4px 12px rgba(0, 0, 0, 0.15)",
	widget.ShadowLarge:  "0 10px 25px rgba(0, 0, 0, 0.18)",
	widget.ShadowXL:     "0 20px 40px rgba(0, 0, 0, 0.22)",
}

var layoutPadding = map[widget.Layout]string{
	widget.LayoutCard:      "16px",
	widget.LayoutCompact:   "10px 12px",
	widget.LayoutMinimal:   "8px",
	widget.LayoutFullWidth: "12px 16px",
}

// containerStyle pins the anchor container to its screen position.
func containerStyle(anchor widget.Position, offsetX, offsetY int) Style {
	s := Style{
		"position":       "fixed",
		"z-index":        containerZIndex,
		"display":        "flex",
		"flex-direction": "column",
		"gap":            "8px",
		"pointer-events": "none",
	}

	x := px(offsetX)
	y := px(offsetY)
	switch anchor {
	case widget.PositionTopLeft:
		s["top"], s["left"] = y, x
	case widget.PositionTopRight:
		s["top"], s["right"] = y, x
	case widget.PositionBottomRight:
		s["bottom"], s["right"] = y, x
	case widget.PositionCenterTop:
		s["top"] = y
		s["left"] = "50%"
		s["transform"] = "translateX(-50%)"
	default:
		s["bottom"], s["left"] = y, x
	}
	return s
}

// boxStyle is the notification element's chrome.
func boxStyle(s widget.Settings, mobile bool) Style {
	v := s.Visual
	text := widget.SafeColor(v.TextColor, defaultText)
	bg := widget.SafeColor(v.Background.Color, defaultBackground)

	box := Style{
		"pointer-events": "auto",
		"box-sizing":     "border-box",
		"color":          text,
		"border-radius":  px(v.Border.Radius),
		"padding":        padding(v.Layout),
		"min-width":      px(v.MinWidth),
		"max-width":      px(v.MaxWidth),
	}
	if v.Layout == widget.LayoutFullWidth {
		box["width"] = "100%"
		box["max-width"] = "none"
	}
	if mobile && s.Responsive.MobileMaxWidth > 0 {
		box["max-width"] = px(s.Responsive.MobileMaxWidth)
	}

	if v.Border.Width > 0 {
		box["border"] = fmt.Sprintf("%s solid %s", px(v.Border.Width), widget.SafeColor(v.Border.Color, defaultBorder))
	} else {
		box["border"] = "none"
	}
	if v.Border.Accent && v.Border.AccentWidth > 0 {
		box["border-left"] = fmt.Sprintf("%s solid %s", px(v.Border.AccentWidth), widget.SafeColor(v.Border.AccentColor, defaultAccent))
	}

	if v.Background.Gradient {
		box["background"] = fmt.Sprintf("linear-gradient(%s, %s, %s)",
			gradientDirection(v.Background.GradientDirection),
			widget.SafeColor(v.Background.GradientStart, bg),
			widget.SafeColor(v.Background.GradientEnd, bg))
	} else {
		box["background"] = bg
	}

	if v.Shadow.Enabled {
		box["box-shadow"] = shadow(v.Shadow.Size)
	} else {
		box["box-shadow"] = "none"
	}

	// Glass overrides the shadow preset and border colouring.
	if v.Background.Glass {
		blur := fmt.Sprintf("blur(%s)", px(max(v.Background.BlurRadius, 0)))
		if !v.Background.Gradient {
			box["background"] = translucent(bg, 0.7)
		}
		box["backdrop-filter"] = blur
		box["-webkit-backdrop-filter"] = blur
		box["border"] = "1px solid rgba(255, 255, 255, 0.3)"
		box["box-shadow"] = "0 8px 32px rgba(31, 38, 135, 0.15)"
	}

	if s.Interaction.Clickable {
		box["cursor"] = "pointer"
	}
	return box
}

func shadow(size widget.ShadowSize) string {
	if preset, ok := shadowPresets[size]; ok {
		return preset
	}
	return shadowPresets[widget.ShadowMedium]
}

func padding(l widget.Layout) string {
	if p, ok := layoutPadding[l]; ok {
		return p
	}
	return layoutPadding[widget.LayoutCard]
}

func gradientDirection(dir string) string {
	d := strings.TrimSpace(dir)
	if d == "" || strings.ContainsAny(d, ";{}<>\"'()") {
		return "135deg"
	}
	return d
}

// translucent turns a hex colour into rgba with the given alpha. Colours in
// other notations are passed through unchanged.
func translucent(hex string, alpha float64) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 || !strings.HasPrefix(hex, "#") {
		return hex
	}

	rgb := make([]int64, 3)
	for i := range rgb {
		v, err := strconv.ParseInt(h[i*2:i*2+2], 16, 64)
		if err != nil {
			return hex
		}
		rgb[i] = v
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", rgb[0], rgb[1], rgb[2], strconv.FormatFloat(alpha, 'f', -1, 64))
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}
