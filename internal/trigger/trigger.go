// Package trigger decides which widgets may show anything on a page load.
// It only looks at the page and the widget's rules; display caps are applied
// later by the scheduler so that eligibility is never persisted.
package trigger

import (
	"net/url"
	"strings"

	"proofpop/internal/widget"
)

// MobileBreakpoint is the viewport width below which a visitor is on mobile.
const MobileBreakpoint = 768

type Device string

const (
	DeviceMobile  Device = "mobile"
	DeviceDesktop Device = "desktop"
)

// Page describes the current page load.
type Page struct {
	URL           string
	ViewportWidth int
}

// NewPage builds a Page from a full URL and viewport width.
func NewPage(rawURL string, viewportWidth int) Page {
	return Page{URL: rawURL, ViewportWidth: viewportWidth}
}

// Path returns the path component of the page URL, or the raw value when it
// does not parse.
func (p Page) Path() string {
	u, err := url.Parse(p.URL)
	if err != nil || u.Path == "" {
		if strings.HasPrefix(p.URL, "/") {
			return p.URL
		}
		return "/"
	}
	return u.Path
}

func (p Page) Device() Device {
	if p.ViewportWidth > 0 && p.ViewportWidth < MobileBreakpoint {
		return DeviceMobile
	}
	return DeviceDesktop
}

// Eligible reports whether a widget may show notifications on this page.
func Eligible(s widget.Settings, p Page) bool {
	if !DeviceAllowed(s.Responsive, p.Device()) {
		return false
	}
	return URLAllowed(s.Triggers.URLPatterns, p)
}

func DeviceAllowed(r widget.Responsive, d Device) bool {
	if d == DeviceMobile && r.HideOnMobile {
		return false
	}
	if d == DeviceDesktop && r.HideOnDesktop {
		return false
	}
	return true
}

// URLAllowed applies include patterns (empty matches everything) and then
// lets any matching exclude pattern veto the page.
func URLAllowed(patterns widget.URLPatterns, p Page) bool {
	path := p.Path()

	for _, ex := range patterns.Exclude {
		if Match(ex, p.URL, path) {
			return false
		}
	}

	if len(patterns.Include) == 0 {
		return true
	}
	for _, in := range patterns.Include {
		if Match(in, p.URL, path) {
			return true
		}
	}
	return false
}

// Match tests one pattern against the full URL or the path.
func Match(pattern widget.URLPattern, fullURL, path string) bool {
	if pattern.Pattern == "" {
		return false
	}

	switch pattern.Type {
	case widget.MatchExact:
		return fullURL == pattern.Pattern || path == pattern.Pattern
	case widget.MatchStarts:
		return strings.HasPrefix(fullURL, pattern.Pattern) || strings.HasPrefix(path, pattern.Pattern)
	default:
		return strings.Contains(fullURL, pattern.Pattern) || strings.Contains(path, pattern.Pattern)
	}
}

// Filter returns the ids of the eligible widgets, keeping input order.
func Filter(settings map[string]widget.Settings, order []string, p Page) []string {
	var eligible []string
	for _, id := range order {
		s, ok := settings[id]
		if ok && Eligible(s, p) {
			eligible = append(eligible, id)
		}
	}
	return eligible
}
