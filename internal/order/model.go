package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a completed purchase with its delivered license keys.
type Order struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	Lines     []OrderLine     `json:"lines"`
}

type OrderLine struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LicenseKeys []string        `json:"licenseKeys"`
}
