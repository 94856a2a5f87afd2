package catalog

import "github.com/shopspring/decimal"

// Product is a server-owned catalog record. The client never mutates it;
// each fetch replaces the list wholesale.
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Region      string          `json:"region"`
	Platform    string          `json:"platform"`
	StockCount  int             `json:"stockCount"`
	ImageURL    string          `json:"imageUrl"`
	CategoryID  string          `json:"categoryId"`
}
