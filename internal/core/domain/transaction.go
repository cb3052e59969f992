package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of ledger entry.
type TransactionType string

const (
	TransactionTypeOpen        TransactionType = "open"
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdraw    TransactionType = "withdraw"
	TransactionTypeTransferOut TransactionType = "transfer-out"
	TransactionTypeTransferIn  TransactionType = "transfer-in"
	TransactionTypeExchangeOut TransactionType = "exchange-out"
	TransactionTypeExchangeIn  TransactionType = "exchange-in"
	TransactionTypeAdminAdjust TransactionType = "admin-adjust"
)

// AdminNotePrefix tags notes written by administrator adjustments. Analytics
// buckets tagged rows as admin activity regardless of type.
const AdminNotePrefix = "[admin] "

// DateFormat is the calendar-day format used throughout the ledger.
// Transactions carry no time-of-day ordering signal; Seq orders entries
// within a day.
const DateFormat = "2006-01-02"

// MonthFormat is the calendar-month filter format ("YYYY-MM").
const MonthFormat = "2006-01"

// Transaction is an immutable, append-only ledger entry belonging to exactly
// one wallet. BalanceAfter snapshots the wallet balance after this entry:
// within one wallet, ordered by Seq, balance_after[i] == balance_after[i-1] +
// amount[i].
type Transaction struct {
	ID           uuid.UUID           `json:"id"`
	WalletID     uuid.UUID           `json:"wallet_id"`
	Seq          int64               `json:"seq"` // insertion order, assigned by storage
	Date         time.Time           `json:"date"`
	Type         TransactionType     `json:"type"`
	Amount       int64               `json:"amount"`        // signed minor units
	BalanceAfter int64               `json:"balance_after"` // snapshot after applying Amount
	Note         string              `json:"note,omitempty"`         // customer free text, empty = none
	Counterparty string              `json:"counterparty,omitempty"` // peer customer on transfer legs
	ExchangeRate decimal.NullDecimal `json:"exchange_rate,omitempty"` // set only on exchange legs
	Currency     string              `json:"currency,omitempty"`      // denormalized from the wallet on reads
	CreatedAt    time.Time           `json:"created_at"`
}

// IsAdminTagged reports whether the entry was posted by an administrator
// adjustment.
func (t *Transaction) IsAdminTagged() bool {
	return t.Type == TransactionTypeAdminAdjust || strings.HasPrefix(t.Note, AdminNotePrefix)
}

// Month returns the entry's calendar month in MonthFormat.
func (t *Transaction) Month() string {
	return t.Date.Format(MonthFormat)
}

// ValidMonth reports whether s is a well-formed "YYYY-MM" month.
func ValidMonth(s string) bool {
	_, err := time.Parse(MonthFormat, s)
	return err == nil
}
