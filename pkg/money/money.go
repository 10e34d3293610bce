package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a money amount in integer minor units. All price and change
// arithmetic in the platform runs on this type; floats never touch money.
type Cents int64

var centFactor = decimal.NewFromInt(100)

// ParseAmount converts a decimal string such as "43.50" or "0.05" into minor
// units. Amounts with more than two decimal places are rejected.
func ParseAmount(value string) (Cents, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	scaled := dec.Mul(centFactor)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %q has sub-cent precision", value)
	}
	return Cents(scaled.IntPart()), nil
}

// FromFloat converts a two-decimal float into minor units, rounding half away
// from zero. Provided for boundary code that receives floats; internal code
// should stay on Cents.
func FromFloat(value float64) Cents {
	return Cents(decimal.NewFromFloat(value).Mul(centFactor).Round(0).IntPart())
}

// String renders the amount with two decimal places, e.g. "6.50".
func (c Cents) String() string {
	return decimal.NewFromInt(int64(c)).Div(centFactor).StringFixed(2)
}

// Float64 returns the amount in major units. Display use only.
func (c Cents) Float64() float64 {
	value, _ := decimal.NewFromInt(int64(c)).Div(centFactor).Float64()
	return value
}
