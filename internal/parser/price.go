package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// normalizePrice converts a raw numeric-looking substring (currency
// symbols, comma decimals, thousands separators) into a monetary amount.
// The bool reports whether a usable value was found; rejection means "not
// a price", never a fatal condition.
//
// Separator rules:
//   - both "," and "." present: "." is a thousands separator, "," decimal
//     ("1.234,56" -> 1234.56)
//   - only "," present: decimal separator when followed by 1-2 digits
//     ("12,50" -> 12.50), thousands separator otherwise ("1,234" -> 1234)
func (p *Parser) normalizePrice(raw string) (decimal.Decimal, bool) {
	return normalizePriceIn(raw, p.cfg.PriceMin, p.cfg.PriceMax)
}

// normalizeFallbackPrice applies the narrower range used by the last-resort
// trailing-number pass.
func (p *Parser) normalizeFallbackPrice(raw string) (decimal.Decimal, bool) {
	return normalizePriceIn(raw, p.cfg.FallbackPriceMin, p.cfg.FallbackPriceMax)
}

func normalizePriceIn(raw string, min, max decimal.Decimal) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		idx := strings.LastIndex(s, ",")
		frac := len(s) - idx - 1
		if frac >= 1 && frac <= 2 && strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if d.LessThan(min) || d.GreaterThan(max) {
		return decimal.Zero, false
	}
	return d, true
}
