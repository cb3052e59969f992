package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyAll selects every currency in analytics queries; amounts are then
// normalized into the configured reference currency.
const CurrencyAll = "ALL"

// RateSource fetches a full conversion table for a base currency from an
// external provider.
type RateSource interface {
	FetchRates(ctx context.Context, base string) (domain.RateTable, error)
}

// RateCache stores fetched rate tables with a TTL.
// Get returns (nil, nil) on a cache miss.
type RateCache interface {
	Get(ctx context.Context, base string) (domain.RateTable, error)
	Set(ctx context.Context, base string, rates domain.RateTable, ttl time.Duration) error
}

// RateResolver resolves an exchange rate between two currencies, layering
// manual overrides on top of cached external rates.
type RateResolver interface {
	Resolve(ctx context.Context, from, to string) (decimal.Decimal, error)
	SetOverride(ctx context.Context, from, to string, rate decimal.Decimal) error
	RemoveOverride(ctx context.Context, from, to string) error
	Overrides(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Classifier is the external zero-shot text classification service.
type Classifier interface {
	Classify(ctx context.Context, texts []string, candidateLabels []string) ([]domain.Classification, error)
}

// Categorizer maps free-form ledger notes onto the closed category set.
type Categorizer interface {
	Categorize(ctx context.Context, notes []string, categories []domain.Category) ([]domain.Category, error)
}

// PasswordHasher handles secret hashing and verification.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) (bool, error)
}

// TransferNotice describes a completed transfer for the recipient.
type TransferNotice struct {
	Email    string
	FromName string
	ToName   string
	Currency string
	Amount   int64
}

// ExchangeNotice describes a completed currency exchange for the owner.
type ExchangeNotice struct {
	Email        string
	Name         string
	FromCurrency string
	ToCurrency   string
	FromAmount   int64
	ToAmount     int64
}

// ResetNotice carries a newly generated secret to the account holder.
type ResetNotice struct {
	Email     string
	Name      string
	NewSecret string
}

// Notifier delivers best-effort notifications. Implementations never fail the
// calling operation: a notice with no email address is silently dropped and
// delivery errors are only logged.
type Notifier interface {
	TransferReceived(ctx context.Context, n TransferNotice)
	ExchangeCompleted(ctx context.Context, n ExchangeNotice)
	CredentialsReset(ctx context.Context, n ResetNotice)
}

// DepositRequest adds funds to a customer's wallet, creating it on first use.
type DepositRequest struct {
	Customer string
	Currency string
	Amount   int64
	Date     time.Time
	Note     string
}

// WithdrawRequest removes funds from a customer's wallet.
type WithdrawRequest struct {
	Customer string
	Currency string
	Amount   int64
	Date     time.Time
	Note     string
}

// TransferRequest moves funds between two customers in the same currency.
type TransferRequest struct {
	From     string
	To       string
	Currency string
	Amount   int64
	Date     time.Time
	Note     string
}

// ExchangeRequest converts funds between two wallets of one customer.
type ExchangeRequest struct {
	Customer     string
	FromCurrency string
	ToCurrency   string
	FromAmount   int64
	Date         time.Time
}

// AdjustRequest is an admin-initiated balance correction; positive amounts
// credit, negative amounts debit.
type AdjustRequest struct {
	Customer string
	Currency string
	Amount   int64
	Note     string
}

// ExchangeResult reports the outcome of a currency exchange.
type ExchangeResult struct {
	ToAmount    int64
	FromBalance int64
	ToBalance   int64
	Rate        decimal.Decimal
}

// LedgerService posts balance-changing operations as atomic ledger entries.
// Mutating calls return the new balance of the caller's wallet.
type LedgerService interface {
	Deposit(ctx context.Context, req DepositRequest) (int64, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (int64, error)
	Transfer(ctx context.Context, req TransferRequest) (int64, error)
	Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error)
	AdminAdjust(ctx context.Context, req AdjustRequest) (int64, error)
	// History lists a customer's entries newest first, optionally limited to
	// one month ("" = all).
	History(ctx context.Context, customer, month string) ([]domain.Transaction, error)
}

// SpendingSummary counts a month's outgoing entries per category.
type SpendingSummary struct {
	Counts     map[domain.Category]int
	Suggestion string
}

// IncomeSummary counts a month's incoming entries per category.
type IncomeSummary struct {
	Counts map[domain.Category]int
}

// Flow is one day's (or running) income and spend, in minor units of the
// report currency.
type Flow struct {
	Income int64
	Spend  int64
}

// CashFlowReport aggregates one month of converted ledger activity.
type CashFlowReport struct {
	Currency       string
	TotalIncome    int64
	TotalSpend     int64
	IncomeSources  map[domain.Category]int64
	SpendSources   map[domain.Category]int64
	DailyFlow      map[string]Flow
	CumulativeFlow map[string]Flow
	Suggestion     string
}

// BudgetLine pairs a budget target with the month's actual spend.
type BudgetLine struct {
	Category domain.Category
	Budget   int64
	Spent    int64
}

// AnalyticsService derives reports from the immutable ledger.
type AnalyticsService interface {
	SpendingSummary(ctx context.Context, customer, month, currency string) (*SpendingSummary, error)
	IncomeSummary(ctx context.Context, customer, month, currency string) (*IncomeSummary, error)
	CashFlow(ctx context.Context, customer, month, currency string) (*CashFlowReport, error)
	BudgetVsActual(ctx context.Context, customer, month, currency string) ([]BudgetLine, error)
	SetBudget(ctx context.Context, customer, month, currency string, category domain.Category, amount int64) error
}

// RegisterRequest creates a customer, optionally seeding an opening balance
// in the reference currency.
type RegisterRequest struct {
	Name          string
	Secret        string
	Role          domain.Role
	InitialAmount int64
	Date          time.Time
}

// RegisterResult reports the created account.
type RegisterResult struct {
	CustomerID uuid.UUID
	Balance    int64
}

// CustomerDetails is the admin view of one account.
type CustomerDetails struct {
	Customer       domain.Customer
	Wallets        []domain.Wallet
	ReferenceTotal int64 // holdings converted into the reference currency; unconvertible wallets skipped
}

// SystemStats is the admin overview of the whole ledger.
type SystemStats struct {
	TotalCustomers   int
	ActiveCustomers  int
	AssetsByCurrency map[string]int64
	ReferenceAssets  int64
}

// AccountService manages customer accounts and the admin surface.
type AccountService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, name, secret string) (*domain.Customer, error)
	ChangeSecret(ctx context.Context, name, oldSecret, newSecret string) error
	UpdateEmail(ctx context.Context, name, email string) error
	Wallets(ctx context.Context, name string) ([]domain.Wallet, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, email string, role domain.Role, active bool) error
	// ResetSecret generates a new random secret, stores its hash and returns
	// the plaintext once.
	ResetSecret(ctx context.Context, id uuid.UUID) (string, error)
	CustomerDetails(ctx context.Context, id uuid.UUID) (*CustomerDetails, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
}
