package cart

import (
	"strings"

	"keyfront/internal/catalog"

	"github.com/shopspring/decimal"
)

const tempIDPrefix = "tmp-"

// CartLine is one cart row with a denormalized product snapshot. A line is
// either server-confirmed (durable id) or optimistic (temporary id) until
// the add-to-cart response reconciles it.
type CartLine struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   catalog.Product `json:"product"`
}

// Optimistic reports whether the line is a local synthesis awaiting the
// server response.
func (l CartLine) Optimistic() bool {
	return strings.HasPrefix(l.ID, tempIDPrefix)
}

// Total is the line amount, quantity times unit price.
func (l CartLine) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
