package export

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a decimal amount with its currency symbol,
// e.g. "12.50 лв" or "$12.50". Unknown codes fall back to a plain
// "12.50 XYZ" rendering.
func FormatAmount(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Round(2).Shift(2).IntPart()
	return money.New(minor, code).Display()
}
