package types

import "github.com/foodexpress/foodexpress-backend/pkg/money"

// ChangeLine is one denomination used in a change breakdown.
type ChangeLine struct {
	Denomination string      `json:"denomination"`
	Value        money.Cents `json:"value_cents"`
	Count        int         `json:"count"`
}

// ChangeBreakdown is the ordered list of denominations a courier hands back,
// largest denomination first. Stored on the assignment so the completion flow
// can replay it against the courier wallet.
type ChangeBreakdown []ChangeLine

// TotalCents sums the breakdown in minor units.
func (b ChangeBreakdown) TotalCents() money.Cents {
	var total money.Cents
	for _, line := range b {
		total += line.Value * money.Cents(line.Count)
	}
	return total
}
