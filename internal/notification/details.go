package notification

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"proofpop/internal/widget"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{6,}\d`)
)

const (
	emailMask = "[email hidden]"
	phoneMask = "[phone hidden]"
)

// Metadata aliases in priority order.
var (
	nameKeys     = []string{"customer_name", "user_name", "name", "full_name"}
	productKeys  = []string{"product_name", "product", "item_name", "item"}
	locationKeys = []string{"location", "city"}
	valueKeys    = []string{"value", "amount", "price", "total"}
	reviewKeys   = []string{"review_text", "review", "comment"}
	avatarKeys   = []string{"avatar_url", "avatar"}
	imageKeys    = []string{"product_image", "image_url", "image"}
	formKeys     = []string{"form_type", "form_name", "form"}
	pageKeys     = []string{"page_title", "page", "url"}
)

// ResolveName picks the visitor name from metadata, or "" when none is set.
func ResolveName(meta map[string]any) string {
	if name := firstString(meta, nameKeys...); name != "" {
		return name
	}
	first := firstString(meta, "first_name")
	last := firstString(meta, "last_name")
	return strings.TrimSpace(first + " " + last)
}

// extractDetails lifts the paint-time fields out of free-form metadata.
func extractDetails(meta map[string]any) Details {
	d := Details{
		CustomerName: ResolveName(meta),
		ProductName:  firstString(meta, productKeys...),
		Location:     location(meta),
		Currency:     strings.ToUpper(firstString(meta, "currency")),
		ReviewText:   firstString(meta, reviewKeys...),
		AvatarURL:    firstString(meta, avatarKeys...),
		ProductImage: firstString(meta, imageKeys...),
	}
	if v, ok := firstNumber(meta, valueKeys...); ok {
		d.Value = &v
	}
	if r, ok := firstNumber(meta, "rating", "stars"); ok {
		d.Rating = int(r)
	}
	if c, ok := firstNumber(meta, "count"); ok {
		d.Count = int(c)
	}
	return d
}

func location(meta map[string]any) string {
	loc := firstString(meta, locationKeys...)
	country := firstString(meta, "country")
	switch {
	case loc == "":
		return country
	case country == "" || strings.Contains(loc, country):
		return loc
	default:
		return loc + ", " + country
	}
}

// scrub masks contact data the widget's privacy settings hide.
func scrub(s string, p widget.Privacy) string {
	if p.HideEmails {
		s = emailPattern.ReplaceAllString(s, emailMask)
	}
	if p.HidePhones {
		s = phonePattern.ReplaceAllString(s, phoneMask)
	}
	return s
}

// containsContact reports whether a name is really hidden contact data.
func containsContact(name string, p widget.Privacy) bool {
	return (p.HideEmails && emailPattern.MatchString(name)) || (p.HidePhones && phonePattern.MatchString(name))
}

func firstString(meta map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := meta[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(meta map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := meta[k].(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			s := strings.TrimLeft(strings.TrimSpace(v), "$€£")
			if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
