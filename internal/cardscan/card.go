package cardscan

import (
	"regexp"
	"strings"
)

// creditCardPattern covers Visa, Mastercard, Discover, Amex, Diners and the
// 2131/1800/35xxx JCB ranges. Input must have spaces removed.
var creditCardPattern = regexp.MustCompile(`^(?:4[0-9]{12}(?:[0-9]{3})?|[25][1-7][0-9]{14}|6(?:011|5[0-9][0-9])[0-9]{12}|3[47][0-9]{13}|3(?:0[0-5]|[68][0-9])[0-9]{11}|(?:2131|1800|35\d{3})\d{11})$`)

// Card is the result of a successful scan
type Card struct {
	Number  string  `json:"number"` // digits only
	Expiry  string  `json:"expiry"` // MM/YY as printed on the card
	Network Network `json:"network"`
}

// Masked returns the card number with all but the last four digits hidden
func (c Card) Masked() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return strings.Repeat("*", len(c.Number)-4) + c.Number[len(c.Number)-4:]
}

// IsCardNumberValid reports whether s, with spaces removed, fully matches
// one of the known network number formats.
func IsCardNumberValid(s string) bool {
	return creditCardPattern.MatchString(stripSpaces(s))
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
