package reservation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTotal_SumsPriceTimesQty(t *testing.T) {
	items := []LineItem{
		{Name: "rice meal", Price: decimal.NewFromInt(50), Qty: 2},
		{Name: "juice", Price: decimal.NewFromInt(20), Qty: 1},
	}
	got := Total(items)
	if !got.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected total 120, got %s", got)
	}
}

func TestTotal_EmptyItemsIsZero(t *testing.T) {
	if got := Total(nil); !got.IsZero() {
		t.Fatalf("expected zero total, got %s", got)
	}
}

func TestTotal_FractionalPrices(t *testing.T) {
	items := []LineItem{
		{Name: "snack", Price: decimal.RequireFromString("12.75"), Qty: 3},
	}
	if got := Total(items); !got.Equal(decimal.RequireFromString("38.25")) {
		t.Fatalf("expected 38.25, got %s", got)
	}
}

func TestApplyBulk_MidListFailureDoesNotAbort(t *testing.T) {
	applied := map[string]bool{}
	results := applyBulk([]string{"a", "b", "c"}, func(id string) error {
		if id == "b" {
			return errors.New("network down")
		}
		applied[id] = true
		return nil
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].OK || results[1].OK || !results[2].OK {
		t.Fatalf("unexpected outcomes: %+v", results)
	}
	if results[1].Error != "network down" {
		t.Fatalf("expected error recorded for b, got %+v", results[1])
	}
	if !applied["a"] || applied["b"] || !applied["c"] {
		t.Fatalf("expected a and c applied, b untouched: %v", applied)
	}
}

func TestParsePrice(t *testing.T) {
	if _, err := parsePrice("abc"); err == nil {
		t.Fatalf("expected error for non-numeric price")
	}
	if _, err := parsePrice("-1"); err == nil {
		t.Fatalf("expected error for negative price")
	}
	d, err := parsePrice("19.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(decimal.RequireFromString("19.5")) {
		t.Fatalf("expected 19.5, got %s", d)
	}
}
