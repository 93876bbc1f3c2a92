package pixel

import (
	"net/url"
	"strings"

	"proofpop/internal/engine"
)

// Host describes the page the pixel was loaded into.
type Host struct {
	// Script is the loader script tag; it must carry data-site-id.
	Script        Element
	URL           string
	Title         string
	Referrer      string
	UserAgent     string
	ViewportWidth int
	ReducedMotion bool
	// Markers are globals, generator tags and asset hosts found on the
	// page, such as "Shopify" or "/wp-content/".
	Markers []string
	// Session and Persistent back frequency caps and the session id.
	// Either may be nil or failing.
	Session    engine.Storage
	Persistent engine.Storage
}

type Platform string

const (
	PlatformShopify     Platform = "shopify"
	PlatformWooCommerce Platform = "woocommerce"
	PlatformWordPress   Platform = "wordpress"
	PlatformWix         Platform = "wix"
	PlatformSquarespace Platform = "squarespace"
	PlatformWebflow     Platform = "webflow"
	PlatformBigCommerce Platform = "bigcommerce"
	PlatformCustom      Platform = "custom"
)

// Order matters: WooCommerce pages also look like WordPress.
var platformHints = []struct {
	platform Platform
	hints    []string
}{
	{PlatformShopify, []string{"shopify", "cdn.shopify.com", ".myshopify.com"}},
	{PlatformWooCommerce, []string{"woocommerce", "wc-ajax"}},
	{PlatformWordPress, []string{"wp-content", "wp-includes", "wordpress"}},
	{PlatformWix, []string{"wix.com", "wixstatic", "wixbisession"}},
	{PlatformSquarespace, []string{"squarespace"}},
	{PlatformWebflow, []string{"webflow"}},
	{PlatformBigCommerce, []string{"bigcommerce", "bcdata"}},
}

// DetectPlatform guesses the store platform from page markers and the
// page host.
func DetectPlatform(h Host) Platform {
	signals := make([]string, 0, len(h.Markers)+1)
	for _, m := range h.Markers {
		signals = append(signals, strings.ToLower(m))
	}
	if u, err := url.Parse(h.URL); err == nil && u.Host != "" {
		signals = append(signals, strings.ToLower(u.Host))
	}

	for _, p := range platformHints {
		for _, hint := range p.hints {
			for _, s := range signals {
				if strings.Contains(s, hint) {
					return p.platform
				}
			}
		}
	}
	return PlatformCustom
}
