// Package format holds the text formatting shared by notification
// derivation and rendering: value formatting, name anonymization and
// relative time labels.
package format

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"proofpop/internal/widget"
)

var printer = message.NewPrinter(language.English)

var randomName = regexp.MustCompile(`^User \d{4}$`)

// Value formats a monetary or plain value according to content settings.
// Currency values get the narrow symbol in front ("$49.99") or the ISO code
// after ("49.99 USD").
func Value(v float64, c widget.Content) string {
	if c.ValueFormat == widget.ValueNumber {
		if v == float64(int64(v)) {
			return printer.Sprintf("%d", int64(v))
		}
		return printer.Sprintf("%.2f", v)
	}

	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		unit = currency.USD
	}
	amount := printer.Sprintf("%.2f", v)

	if c.CurrencyPosition == widget.SymbolAfter {
		return amount + " " + unit.String()
	}
	return printer.Sprint(currency.NarrowSymbol(unit)) + amount
}

// Anonymize applies the configured style to a display name. The seed keeps
// the random style stable for a given notification. Already anonymized names
// come back unchanged.
func Anonymize(name string, style widget.AnonymizationStyle, seed string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return name
	}

	switch style {
	case widget.AnonymizeRandom:
		if randomName.MatchString(name) {
			return name
		}
		h := fnv.New32a()
		h.Write([]byte(seed + "|" + name))
		return fmt.Sprintf("User %04d", 1000+h.Sum32()%9000)
	case widget.AnonymizeInitials:
		initials := make([]string, len(words))
		for i, w := range words {
			initials[i] = initial(w) + "."
		}
		return strings.Join(initials, " ")
	default:
		if len(words) == 1 {
			return words[0]
		}
		return words[0] + " " + initial(words[len(words)-1]) + "."
	}
}

func initial(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r))
}

// TimeAgo renders the distance between ts and now as a short label.
func TimeAgo(now, ts time.Time) string {
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/(24*time.Hour)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
