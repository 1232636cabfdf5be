// Package reservation implements the scheduled-pickup approval workflow:
// students place reservations with line items and a claim date, admins
// approve or reject them while the claim date stays clear of the configured
// date restrictions.
package reservation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"canteenadmin/internal/status"
)

type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

type Reservation struct {
	ID        string        `json:"id"`
	DisplayID string        `json:"displayId"`
	AccountID string        `json:"accountId"`
	ClaimDate time.Time     `json:"claimDate"`
	RawStatus string        `json:"-"`
	Status    status.Status `json:"status"`
	Note      string        `json:"note,omitempty"`
	Items     []LineItem    `json:"items"`
	Total     string        `json:"total"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Total sums price*qty over the items. Computed fresh each time; an empty
// item list is a valid reservation with a zero total.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("item price is invalid")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("item price must not be negative")
	}
	return d, nil
}

// BulkResult is the per-id outcome of a best-effort bulk transition.
type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// applyBulk runs apply for each id in order, accumulating independent
// outcomes. A failure on one id never aborts the remaining ids.
func applyBulk(ids []string, apply func(id string) error) []BulkResult {
	out := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if err := apply(id); err != nil {
			out = append(out, BulkResult{ID: id, Error: err.Error()})
			continue
		}
		out = append(out, BulkResult{ID: id, OK: true})
	}
	return out
}
