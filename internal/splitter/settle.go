package splitter

import (
	"sort"

	"github.com/shopspring/decimal"

	"groupify/internal/models"
)

// Epsilon is the monetary tolerance below which a balance difference is
// treated as already settled.
var Epsilon = decimal.RequireFromString("0.01")

type party struct {
	name   string
	amount decimal.Decimal
}

// OptimizeSettlements converts balances and an equal-split target into a
// list of debtor-to-creditor transfers. Greedy largest-with-largest
// pairing keeps the transaction count low in the common case; it is a
// simplicity trade-off, not guaranteed optimal for every distribution.
//
// Guarantees: zero people yields an empty list; each creditor receives its
// original surplus within rounding error, each debtor pays its deficit
// likewise; output order is deterministic (creditor-major, debtor-minor).
func OptimizeSettlements(balances map[string]decimal.Decimal, total decimal.Decimal, people []string, currency string) []models.Settlement {
	if len(people) == 0 {
		return []models.Settlement{}
	}

	equalShare := total.Div(decimal.NewFromInt(int64(len(people))))

	var creditors, debtors []party
	for _, person := range people {
		difference := balances[person].Sub(equalShare)
		switch {
		case difference.GreaterThan(Epsilon):
			creditors = append(creditors, party{name: person, amount: difference})
		case difference.LessThan(Epsilon.Neg()):
			debtors = append(debtors, party{name: person, amount: difference.Neg()})
		}
	}

	sortByAmountDesc(creditors)
	sortByAmountDesc(debtors)

	settlements := []models.Settlement{}
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := creditors[i].amount
		if debtors[j].amount.LessThan(amount) {
			amount = debtors[j].amount
		}

		if amount.GreaterThan(Epsilon) {
			settlements = append(settlements, models.Settlement{
				FromPerson: debtors[j].name,
				ToPerson:   creditors[i].name,
				Amount:     amount.Round(two),
				Currency:   currency,
			})
		}

		creditors[i].amount = creditors[i].amount.Sub(amount)
		debtors[j].amount = debtors[j].amount.Sub(amount)

		if creditors[i].amount.LessThan(Epsilon) {
			i++
		}
		if debtors[j].amount.LessThan(Epsilon) {
			j++
		}
	}

	return settlements
}

// sortByAmountDesc orders parties by amount descending, name ascending on
// ties, so settlement output is stable across runs.
func sortByAmountDesc(parties []party) {
	sort.SliceStable(parties, func(a, b int) bool {
		if !parties[a].amount.Equal(parties[b].amount) {
			return parties[a].amount.GreaterThan(parties[b].amount)
		}
		return parties[a].name < parties[b].name
	})
}
