package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"proofpop/internal/widget"
)

func TestValue_Currency(t *testing.T) {
	c := widget.Content{ValueFormat: widget.ValueCurrency, Currency: "USD", CurrencyPosition: widget.SymbolBefore}
	assert.Equal(t, "$49.99", Value(49.99, c))

	c.CurrencyPosition = widget.SymbolAfter
	assert.Equal(t, "49.99 USD", Value(49.99, c))
}

func TestValue_UnknownCurrencyFallsBackToUSD(t *testing.T) {
	c := widget.Content{ValueFormat: widget.ValueCurrency, Currency: "ZZZ", CurrencyPosition: widget.SymbolAfter}
	assert.Equal(t, "10.00 USD", Value(10, c))
}

func TestValue_Number(t *testing.T) {
	c := widget.Content{ValueFormat: widget.ValueNumber}
	assert.Equal(t, "1,250", Value(1250, c))
	assert.Equal(t, "3.50", Value(3.5, c))
}

func TestAnonymize(t *testing.T) {
	assert.Equal(t, "John S.", Anonymize("John Smith", widget.AnonymizeFirstInitial, "n1"))
	assert.Equal(t, "Cher", Anonymize("Cher", widget.AnonymizeFirstInitial, "n1"))
	assert.Equal(t, "J. S.", Anonymize("john smith", widget.AnonymizeInitials, "n1"))
	assert.Regexp(t, `^User \d{4}$`, Anonymize("John Smith", widget.AnonymizeRandom, "n1"))
	assert.Equal(t,
		Anonymize("John Smith", widget.AnonymizeRandom, "n1"),
		Anonymize("John Smith", widget.AnonymizeRandom, "n1"))
	assert.Equal(t, "", Anonymize("  ", widget.AnonymizeRandom, "n1"))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{-time.Minute, "Just now"},
		{90 * time.Second, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{48 * time.Hour, "2 days ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TimeAgo(now, now.Add(-tc.ago)), tc.ago.String())
	}
}

func TestAnonymize_Idempotent(t *testing.T) {
	for _, style := range []widget.AnonymizationStyle{widget.AnonymizeFirstInitial, widget.AnonymizeInitials, widget.AnonymizeRandom} {
		once := Anonymize("Maria de la Cruz", style, "seed")
		assert.Equal(t, once, Anonymize(once, style, "other"), string(style))
	}
}
