package types

import (
	"testing"

	"github.com/foodexpress/foodexpress-backend/pkg/money"
)

func TestWalletTotalCents(t *testing.T) {
	wallet := Wallet{"10": 2, "5": 3, "0.50": 1}
	total, err := wallet.TotalCents()
	if err != nil {
		t.Fatalf("TotalCents: %v", err)
	}
	if total != 3550 {
		t.Fatalf("TotalCents = %d, want 3550", total)
	}
}

func TestWalletTotalCentsMalformedLabel(t *testing.T) {
	wallet := Wallet{"ten": 1}
	if _, err := wallet.TotalCents(); err == nil {
		t.Fatal("expected malformed denomination to error")
	}
}

func TestWalletUnitsDescending(t *testing.T) {
	wallet := Wallet{"5": 2, "10": 1, "0.50": 1}
	units, err := wallet.UnitsDescending()
	if err != nil {
		t.Fatalf("UnitsDescending: %v", err)
	}
	want := []money.Cents{1000, 500, 500, 50}
	if len(units) != len(want) {
		t.Fatalf("got %d units, want %d", len(units), len(want))
	}
	for i, unit := range units {
		if unit.Value != want[i] {
			t.Fatalf("unit %d = %d, want %d", i, unit.Value, want[i])
		}
	}
}

func TestWalletRemoveDeletesZeroCounts(t *testing.T) {
	wallet := Wallet{"5": 1, "1": 2}
	if err := wallet.Remove("5", 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := wallet["5"]; ok {
		t.Fatal("expected zero-count denomination to be deleted")
	}
	if err := wallet.Remove("1", 3); err == nil {
		t.Fatal("expected over-removal to error")
	}
	if wallet["1"] != 2 {
		t.Fatalf("failed removal must not mutate count, got %d", wallet["1"])
	}
}

func TestWalletScanRoundTrip(t *testing.T) {
	wallet := Wallet{"20": 1, "0.20": 4}
	raw, err := wallet.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var decoded Wallet
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if decoded["20"] != 1 || decoded["0.20"] != 4 {
		t.Fatalf("round trip mismatch: %v", decoded)
	}
}
