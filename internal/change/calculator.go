package change

import (
	"github.com/foodexpress/foodexpress-backend/pkg/money"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

// Required returns the change owed for a cash payment. Negative means the
// customer tendered less than the order total.
func Required(totalCents, tenderedCents money.Cents) money.Cents {
	return tenderedCents - totalCents
}

// Compute determines whether exact change for required can be made from the
// wallet and returns the greedy denomination breakdown, largest denomination
// first.
//
// The walk is greedy: flatten the wallet into descending unit denominations,
// fast-reject when the wallet total is short, then consume each unit while it
// still fits the remainder. Greedy is exact for canonical currency sets but
// can miss combinations on arbitrary denomination sets; an infeasible result
// here is a scoring answer, not an error.
func Compute(required money.Cents, wallet types.Wallet) (bool, types.ChangeBreakdown) {
	if required <= 0 {
		return true, nil
	}
	if len(wallet) == 0 {
		return false, nil
	}

	units, err := wallet.UnitsDescending()
	if err != nil {
		// A malformed wallet cannot make change.
		return false, nil
	}

	var total money.Cents
	for _, unit := range units {
		total += unit.Value
	}
	if total < required {
		return false, nil
	}

	remaining := required
	var breakdown types.ChangeBreakdown
	for _, unit := range units {
		if remaining < unit.Value {
			continue
		}
		remaining -= unit.Value
		if n := len(breakdown); n > 0 && breakdown[n-1].Denomination == unit.Label {
			breakdown[n-1].Count++
		} else {
			breakdown = append(breakdown, types.ChangeLine{
				Denomination: unit.Label,
				Value:        unit.Value,
				Count:        1,
			})
		}
		if remaining == 0 {
			return true, breakdown
		}
	}

	return false, nil
}
