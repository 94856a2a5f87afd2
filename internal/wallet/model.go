package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the tenant-scoped credit balance used at checkout.
type Wallet struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	Entries  []Entry         `json:"entries"`
}

// Entry is one ledger movement, newest first.
type Entry struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"createdAt"`
}
