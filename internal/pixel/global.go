package pixel

import (
	"proofpop/internal/api"
	"proofpop/internal/notification"
)

// The methods below are the surface host page scripts call.

func (p *Pixel) SiteID() string     { return p.siteID }
func (p *Pixel) SessionID() string  { return p.sessionID }
func (p *Pixel) Platform() Platform { return p.platform }

// On subscribes a host listener to a pixel event.
func (p *Pixel) On(name string, fn func(Event)) {
	p.dispatcher.On(name, fn)
}

// Track records a custom named event.
func (p *Pixel) Track(name string, data map[string]any) {
	p.tracker.Track(name, data)
}

func (p *Pixel) TrackPurchase(data map[string]any) {
	p.tracker.Track(string(notification.EventPurchase), data)
}

func (p *Pixel) TrackSignup(data map[string]any) {
	p.tracker.Track(string(notification.EventSignup), data)
}

func (p *Pixel) TrackReview(data map[string]any) {
	p.tracker.Track(string(notification.EventReview), data)
}

// HandleClick auto-tracks a click on an element that opted in.
func (p *Pixel) HandleClick(el *Element) bool {
	eventType, data, ok := clickEvent(el)
	if ok {
		p.tracker.Track(eventType, data)
	}
	return ok
}

// HandleSubmit auto-tracks a submission of a form that opted in.
func (p *Pixel) HandleSubmit(form *Element) bool {
	eventType, data, ok := submitEvent(form)
	if ok {
		p.tracker.Track(eventType, data)
	}
	return ok
}

func verifyRequest(p *Pixel) api.VerifyRequest {
	return api.VerifyRequest{
		SiteID:    p.siteID,
		URL:       p.host.URL,
		UserAgent: p.host.UserAgent,
		SessionID: p.sessionID,
		Platform:  string(p.platform),
	}
}
