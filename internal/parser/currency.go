package parser

import "regexp"

// Currency codes the detector can return.
const (
	CurrencyBGN = "BGN"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

var (
	reLevMarker = regexp.MustCompile(`(?i)лв\.?|BGN|лева`)
	reUSDMarker = regexp.MustCompile(`(?i)\$|USD`)
	reEURMarker = regexp.MustCompile(`(?i)€|EUR`)
)

// detectCurrency picks the receipt currency from marker frequency across
// the whole cleaned text. Only a strictly highest count wins; ties and
// all-zero default to the Bulgarian lev.
func detectCurrency(text string) string {
	lev := len(reLevMarker.FindAllString(text, -1))
	usd := len(reUSDMarker.FindAllString(text, -1))
	eur := len(reEURMarker.FindAllString(text, -1))

	switch {
	case usd > lev && usd > eur:
		return CurrencyUSD
	case eur > lev && eur > usd:
		return CurrencyEUR
	default:
		return CurrencyBGN
	}
}
