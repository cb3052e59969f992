package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a customer's balance ledger for one currency, keyed by
// (customer, currency). Balance is signed minor units and must equal the sum
// of all transaction amounts in the wallet's history at all times.
// Wallets are created lazily on first posting and never deleted.
type Wallet struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Currency   string    `json:"currency"` // ISO-like 3-letter code
	Balance    int64     `json:"balance"`  // minor units
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
