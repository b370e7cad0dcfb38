// Package splitter computes per-person balances from item assignments and
// converts them into a minimal list of peer-to-peer settlements.
package splitter

import (
	"github.com/shopspring/decimal"

	"groupify/internal/models"
)

var two = int32(2)

// AssignEqually assigns every unassigned item to all people. Callers are
// expected to run this before CalculateBalances so that no consumed value
// silently disappears from the split.
func AssignEqually(receipt *models.Receipt, people []string) {
	for i := range receipt.Items {
		if len(receipt.Items[i].AssignedTo) == 0 {
			receipt.Items[i].AssignedTo = append([]string{}, people...)
		}
	}
}

// CalculateBalances computes each person's consumed value: their share of
// every item assigned to them plus an even share of the tip. Items with no
// assignment contribute to nobody. Balances are rounded half-up to 2
// decimals at the end, never mid-accumulation, so the result is identical
// regardless of iteration order.
func CalculateBalances(receipt *models.Receipt, people []string) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(people))
	for _, person := range people {
		balances[person] = decimal.Zero
	}

	for _, item := range receipt.Items {
		if len(item.AssignedTo) == 0 {
			continue
		}
		share := item.Price.Div(decimal.NewFromInt(int64(len(item.AssignedTo))))
		for _, person := range item.AssignedTo {
			if _, known := balances[person]; known {
				balances[person] = balances[person].Add(share)
			}
		}
	}

	if receipt.TipAmount.IsPositive() && len(people) > 0 {
		tipShare := receipt.TipAmount.Div(decimal.NewFromInt(int64(len(people))))
		for _, person := range people {
			balances[person] = balances[person].Add(tipShare)
		}
	}

	for person := range balances {
		balances[person] = balances[person].Round(two)
	}

	return balances
}
