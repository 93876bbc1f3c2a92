package notification

import (
	"strconv"
	"strings"
)

// Copy is the text a notification shows.
type Copy struct {
	Title   string
	Message string
	Icon    string
}

// copyInput is everything a message template may draw on. Strings are
// already scrubbed and the name already anonymized.
type copyInput struct {
	Name    string
	Details Details
	// Value is the formatted value, empty when it should not be shown.
	Value    string
	FormType string
	Page     string
}

type copyTemplate func(in copyInput) Copy

var copyTemplates = map[EventType]copyTemplate{
	EventPurchase: func(in copyInput) Copy {
		msg := in.Name + " purchased " + orDefault(in.Details.ProductName, "an item")
		if in.Value != "" {
			msg += " for " + in.Value
		}
		return Copy{Title: "New purchase", Message: msg, Icon: "🛍️"}
	},
	EventSignup: func(in copyInput) Copy {
		return Copy{Title: "New signup", Message: in.Name + " signed up" + from(in.Details.Location), Icon: "👋"}
	},
	EventFormSubmit: func(in copyInput) Copy {
		msg := in.Name + " submitted " + orDefault(in.FormType, "a form") + from(in.Details.Location)
		return Copy{Title: "Form submitted", Message: msg, Icon: "📝"}
	},
	EventReview: func(in copyInput) Copy {
		rating := in.Details.Rating
		if rating < 1 || rating > 5 {
			rating = 5
		}
		return Copy{Title: "New review", Message: in.Name + " left a " + strconv.Itoa(rating) + "-star review", Icon: "⭐"}
	},
	EventAddToCart: func(in copyInput) Copy {
		msg := in.Name + " added " + orDefault(in.Details.ProductName, "an item") + " to cart"
		return Copy{Title: "Added to cart", Message: msg, Icon: "🛒"}
	},
	EventPageView: func(in copyInput) Copy {
		return Copy{Title: "Browsing now", Message: in.Name + " is browsing " + orDefault(in.Page, "this site"), Icon: "👀"}
	},
	EventVisitorActive: func(in copyInput) Copy {
		return Copy{Title: strconv.Itoa(in.Details.Count), Message: "people viewing now", Icon: "🔥"}
	},
}

// genericCopy is used for event types without a template.
func genericCopy(t EventType) Copy {
	label := strings.ReplaceAll(string(t), "_", " ")
	return Copy{Title: "Recent activity", Message: label, Icon: "🔔"}
}

// copyFor renders the title, message and icon for an event type.
func copyFor(t EventType, in copyInput) Copy {
	if tmpl, ok := copyTemplates[t]; ok {
		return tmpl(in)
	}
	return genericCopy(t)
}

// anonymousFallback is the name used when an event carries none.
func anonymousFallback(t EventType) string {
	switch t {
	case EventPurchase, EventReview, EventAddToCart:
		return "A customer"
	}
	return "Someone"
}

func from(location string) string {
	if location == "" {
		return ""
	}
	return " from " + location
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
