package ports

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	// Create inserts a customer inside a transaction block so registration
	// can atomically open the first wallet.
	Create(ctx context.Context, tx pgx.Tx, c *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	UpdateSecret(ctx context.Context, id uuid.UUID, secretHash string) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic
// locking; lazy wallet creation happens inside the same block.
type WalletRepository interface {
	// Create inserts a wallet, tolerating a concurrent insert on the same
	// (customer, currency) key. Returns false when another transaction won
	// the race and the caller must re-lock the existing row.
	Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) (bool, error)
	GetByOwner(ctx context.Context, customerID uuid.UUID, currency string) (*domain.Wallet, error)
	GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, currency string) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, customerID uuid.UUID) ([]domain.Wallet, error)
	ListAll(ctx context.Context) ([]domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
}

// TransactionSign filters ledger entries by amount sign.
type TransactionSign int

const (
	SignAny TransactionSign = iota
	SignNegative
	SignPositive
)

// TransactionFilter selects ledger entries across all wallets of a customer.
type TransactionFilter struct {
	CustomerID uuid.UUID
	Currency   string // "" = every currency
	Month      string // "YYYY-MM", "" = every month
	Sign       TransactionSign
}

// TransactionRepository defines persistence for the append-only ledger.
// Entries are never updated or deleted.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	// List returns matching entries newest first (date, then insertion order).
	List(ctx context.Context, f TransactionFilter) ([]domain.Transaction, error)
}

// BudgetRepository defines persistence for monthly budget targets.
type BudgetRepository interface {
	Upsert(ctx context.Context, b *domain.Budget) error
	List(ctx context.Context, customerID uuid.UUID, month, currency string) ([]domain.Budget, error)
}

// RateOverrideRepository holds the admin-maintained manual exchange rates,
// keyed "FROM_TO".
type RateOverrideRepository interface {
	GetAll(ctx context.Context) (map[string]decimal.Decimal, error)
	Set(ctx context.Context, pair string, rate decimal.Decimal) error
	Delete(ctx context.Context, pair string) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
