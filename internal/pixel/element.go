package pixel

import "strings"

// Element is a page element as seen by auto-tracking: its tag, attributes
// and parent chain.
type Element struct {
	Tag    string
	Attrs  map[string]string
	Text   string
	Parent *Element
}

func (e *Element) Attr(name string) (string, bool) {
	if e == nil || e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[name]
	return strings.TrimSpace(v), ok
}

// closest returns the nearest element, starting at e, carrying one of names.
func (e *Element) closest(names ...string) (*Element, string, string) {
	for el := e; el != nil; el = el.Parent {
		for _, name := range names {
			if v, ok := el.Attr(name); ok {
				return el, name, v
			}
		}
	}
	return nil, "", ""
}

func (e *Element) ignored() bool {
	el, _, _ := e.closest(attrIgnore)
	return el != nil
}

const (
	attrSiteID     = "data-site-id"
	attrEvent      = "data-proofpop-event"
	attrTrack      = "data-proofpop-track"
	attrIgnore     = "data-proofpop-ignore"
	attrProductID  = "data-product-id"
	legacyEvent    = "data-proof-event"
	legacyPurchase = "data-proof-purchase"
	legacyTrack    = "data-proof-track"
)

// clickEvent maps a click on el to a tracking event, if the element or one
// of its ancestors opted in.
func clickEvent(el *Element) (string, map[string]any, bool) {
	if el == nil || el.ignored() {
		return "", nil, false
	}

	target, name, value := el.closest(attrEvent, legacyEvent, legacyPurchase)
	if target == nil {
		return "", nil, false
	}

	eventType := normalizeEventName(value)
	data := map[string]any{"element": strings.ToLower(target.Tag)}
	if name == legacyPurchase {
		eventType = "purchase"
		if value != "" {
			data["product_name"] = value
		}
	}
	if eventType == "" {
		eventType = "click"
	}
	if text := strings.TrimSpace(target.Text); text != "" {
		data["text"] = text
	}
	if holder, _, id := el.closest(attrProductID); holder != nil && id != "" {
		data["product_id"] = id
	}
	return eventType, data, true
}

// submitEvent maps a form submission to a tracking event when the form
// opted in with data-proofpop-track or data-proof-track.
func submitEvent(form *Element) (string, map[string]any, bool) {
	if form == nil || form.ignored() {
		return "", nil, false
	}

	v, ok := form.Attr(attrTrack)
	if !ok {
		v, ok = form.Attr(legacyTrack)
	}
	if !ok {
		return "", nil, false
	}

	eventType := normalizeEventName(v)
	if eventType == "" || eventType == "true" {
		eventType = "form_submit"
	}

	data := map[string]any{}
	for _, key := range []string{"name", "id"} {
		if name, ok := form.Attr(key); ok && name != "" {
			data["form_type"] = name
			break
		}
	}
	if id, ok := form.Attr(attrProductID); ok && id != "" {
		data["product_id"] = id
	}
	return eventType, data, true
}

// normalizeEventName lowercases a host supplied name and joins its words
// with underscores.
func normalizeEventName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r == ' ' || r == '-' || r == '.':
			return '_'
		}
		return -1
	}, name)
}
