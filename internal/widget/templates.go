package widget

import "strings"

// Known template identifiers.
const (
	TemplateRecentPurchase = "recent_purchase"
	TemplateNewSignup      = "new_signup"
	TemplateFormSubmission = "form_submission"
	TemplateCustomerReview = "customer_review"
	TemplateCartActivity   = "cart_activity"
	TemplateActiveSessions = "active_sessions"
	TemplateLiveVisitors   = "live_visitors"
)

var liveVisitorTemplates = []string{TemplateLiveVisitors, "live_visitor_count", "visitor_count", "live_count"}

var liveVisitorNameHints = []string{"live visitor", "visitors now", "people viewing", "viewing now", "live count"}

// IsLiveVisitors reports whether a widget shows a live visitor count rather
// than stored events.
func IsLiveVisitors(templateID, name string) bool {
	tid := strings.ToLower(strings.TrimSpace(templateID))
	for _, t := range liveVisitorTemplates {
		if tid == t {
			return true
		}
	}

	lower := strings.ToLower(name)
	for _, hint := range liveVisitorNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
