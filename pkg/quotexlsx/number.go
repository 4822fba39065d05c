package quotexlsx

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PlaceholderNumber is written when no sequential number could be obtained.
const PlaceholderNumber = "000"

var (
	reTokenSlot  = regexp.MustCompile(`XXX-\d{2}`)
	reTokenValue = regexp.MustCompile(`\b\d{1,6}-\d{2}\b`)
)

// FormatSequential renders a sequence value as a zero-padded quote number.
func FormatSequential(n int) string {
	return fmt.Sprintf("%03d", n)
}

// QuoteToken joins a quote number and the two-digit issue year, e.g. "012-26".
// An empty number becomes PlaceholderNumber.
func QuoteToken(number string, issued time.Time) string {
	if strings.TrimSpace(number) == "" {
		number = PlaceholderNumber
	}
	return fmt.Sprintf("%s-%02d", number, issued.Year()%100)
}

// ApplyQuoteNumber places token into the text of the quote number cell. The
// first match wins: the literal "XXX-XX", then "XXX-NN", then an existing
// number token. An empty cell gets the token alone. Other text without a slot
// is returned unchanged.
func ApplyQuoteNumber(current, token string) string {
	switch {
	case strings.Contains(current, "XXX-XX"):
		return strings.ReplaceAll(current, "XXX-XX", token)
	case reTokenSlot.MatchString(current):
		return reTokenSlot.ReplaceAllLiteralString(current, token)
	case reTokenValue.MatchString(current):
		return reTokenValue.ReplaceAllLiteralString(current, token)
	case strings.TrimSpace(current) == "":
		return token
	}
	return current
}
