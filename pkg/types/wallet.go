package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/foodexpress/foodexpress-backend/pkg/money"
)

// Wallet maps a denomination label (e.g. "5", "0.50") to the count held.
// Couriers carry one as their cash float; cash orders carry one describing the
// denominations the customer will tender. Counts are always positive: a
// denomination that reaches zero is deleted from the map, never stored as 0.
type Wallet map[string]int

// DenominationUnit is a single flattened denomination with its minor-unit value.
type DenominationUnit struct {
	Label string
	Value money.Cents
}

// Value serializes the wallet as JSON for the jsonb column.
func (w Wallet) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan accepts the JSON payload returned by Postgres or SQLite.
func (w *Wallet) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("wallet: unsupported scan type %T", value)
	}
}

// TotalCents sums the wallet contents in minor units. A malformed
// denomination label makes the whole wallet unusable.
func (w Wallet) TotalCents() (money.Cents, error) {
	var total money.Cents
	for label, count := range w {
		value, err := money.ParseAmount(label)
		if err != nil {
			return 0, fmt.Errorf("wallet denomination %q: %w", label, err)
		}
		total += value * money.Cents(count)
	}
	return total, nil
}

// UnitsDescending flattens the wallet into one entry per physical bill/coin,
// sorted from the largest denomination down.
func (w Wallet) UnitsDescending() ([]DenominationUnit, error) {
	units := make([]DenominationUnit, 0, len(w))
	for label, count := range w {
		if count <= 0 {
			continue
		}
		value, err := money.ParseAmount(label)
		if err != nil {
			return nil, fmt.Errorf("wallet denomination %q: %w", label, err)
		}
		for i := 0; i < count; i++ {
			units = append(units, DenominationUnit{Label: label, Value: value})
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Value > units[j].Value })
	return units, nil
}

// Add increases the count for a denomination label.
func (w Wallet) Add(label string, count int) {
	if count <= 0 {
		return
	}
	w[label] = w[label] + count
}

// Remove decreases the count for a denomination label, deleting the key when
// it reaches zero. Removing more than is held is an error; counts never go
// negative.
func (w Wallet) Remove(label string, count int) error {
	if count <= 0 {
		return nil
	}
	held, ok := w[label]
	if !ok || held < count {
		return fmt.Errorf("wallet holds %d of denomination %q, cannot remove %d", held, label, count)
	}
	if held == count {
		delete(w, label)
		return nil
	}
	w[label] = held - count
	return nil
}

// Clone returns an independent copy of the wallet.
func (w Wallet) Clone() Wallet {
	if w == nil {
		return nil
	}
	clone := make(Wallet, len(w))
	for label, count := range w {
		clone[label] = count
	}
	return clone
}
