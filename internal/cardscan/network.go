package cardscan

import "regexp"

// Icon identifies the artwork a client shows for a card network
type Icon string

const (
	IconVisa       Icon = "ic_visa"
	IconMastercard Icon = "ic_mastercard"
	IconAmex       Icon = "ic_amex"
	IconDiscover   Icon = "ic_discover"
	IconDiners     Icon = "ic_diners"
	IconJCB        Icon = "ic_jcb"
	IconUnionPay   Icon = "ic_unionpay"
	IconUnknown    Icon = "ic_card"
)

// Network is a card network label with its icon
type Network struct {
	Name string `json:"name"`
	Icon Icon   `json:"icon"`
}

// Unknown is returned for numbers that match no individual network.
var Unknown = Network{Name: "Unknown", Icon: IconUnknown}

type networkRule struct {
	network Network
	prefix  *regexp.Regexp
}

// Rules are checked in order; the first prefix match wins.
var networkRules = []networkRule{
	{Network{Name: "Visa", Icon: IconVisa}, regexp.MustCompile(`^4`)},
	{Network{Name: "Mastercard", Icon: IconMastercard}, regexp.MustCompile(`^(?:5[1-5]|222[1-9]|22[3-9][0-9]|2[3-6][0-9]{2}|27[01][0-9]|2720)`)},
	{Network{Name: "Amex", Icon: IconAmex}, regexp.MustCompile(`^3[47]`)},
	{Network{Name: "Discover", Icon: IconDiscover}, regexp.MustCompile(`^(?:6011|65|64[4-9])`)},
	{Network{Name: "Diners", Icon: IconDiners}, regexp.MustCompile(`^3(?:0[0-5]|[68])`)},
	{Network{Name: "JCB", Icon: IconJCB}, regexp.MustCompile(`^(?:2131|1800|35)`)},
	{Network{Name: "UnionPay", Icon: IconUnionPay}, regexp.MustCompile(`^62`)},
}

// ClassifyNetwork infers the card network from the number's prefix
func ClassifyNetwork(number string) Network {
	for _, rule := range networkRules {
		if rule.prefix.MatchString(number) {
			return rule.network
		}
	}
	return Unknown
}
