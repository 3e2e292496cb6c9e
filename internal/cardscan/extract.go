package cardscan

import (
	"strings"

	"github.com/zombor/card-scanner/internal/ocr"
)

// DetailsFunc receives the fields of a fully extracted card
type DetailsFunc func(cardNumber, expiryDate, cardType string, cardIcon Icon)

// Extract scans the OCR lines in order for a card number and expiry date.
// The second return value is false unless both were found; a partial scan
// is not an error, the caller is expected to try the next frame.
func Extract(result *ocr.Result) (Card, bool) {
	if result == nil {
		return Card{}, false
	}

	var (
		dates      []string
		cardNumber string
	)
	for _, raw := range result.Lines() {
		line := strings.TrimSpace(raw)

		dates = append(dates, dateCandidates(line)...)

		// Last matching line wins.
		if IsCardNumberValid(line) {
			cardNumber = stripSpaces(line)
		}
	}

	if cardNumber == "" {
		return Card{}, false
	}
	expiry := GetExpiryDate(dates)
	if expiry == "" {
		return Card{}, false
	}

	return Card{
		Number:  cardNumber,
		Expiry:  expiry,
		Network: ClassifyNetwork(cardNumber),
	}, true
}

// ExtractCardDetails runs Extract and invokes fn only when a complete card
// was found.
func ExtractCardDetails(result *ocr.Result, fn DetailsFunc) {
	card, ok := Extract(result)
	if !ok {
		return
	}
	fn(card.Number, card.Expiry, card.Network.Name, card.Network.Icon)
}
