// Package order tracks walk-up canteen orders through the kitchen chain:
// Pending, Approved, Preparing, Ready, Claimed, with rejection possible until
// preparation starts.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"canteenadmin/internal/status"
)

type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

type Order struct {
	ID        string        `json:"id"`
	DisplayID string        `json:"displayId"`
	AccountID string        `json:"accountId"`
	RawStatus string        `json:"-"`
	Status    status.Status `json:"status"`
	Note      string        `json:"note,omitempty"`
	Items     []LineItem    `json:"items"`
	Total     string        `json:"total"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum
}
