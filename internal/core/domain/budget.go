package domain

import (
	"github.com/google/uuid"
)

// Budget is a customer's monthly spending target for one category in one
// currency, keyed by (customer, month, currency, category). Budgets are
// upsertable and independent of transactions until compared by analytics.
type Budget struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Month      string    `json:"month"` // "YYYY-MM"
	Currency   string    `json:"currency"`
	Category   Category  `json:"category"`
	Amount     int64     `json:"amount"` // minor units
}
