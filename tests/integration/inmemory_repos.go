package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// memDB is a single-process stand-in for Postgres. Begin takes a global lock
// that is held until Commit or Rollback, which serializes transaction blocks
// the way row locks do, and a journal of undo closures restores pre-tx state
// on rollback. Repos accepting a pgx.Tx assume the lock is already held;
// plain reads take it briefly themselves.
type memDB struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*domain.Customer
	wallets   map[uuid.UUID]*domain.Wallet
	entries   []domain.Transaction
	budgets   map[string]*domain.Budget
	overrides map[string]decimal.Decimal
	nextSeq   int64
	journal   []func()
}

func newMemDB() *memDB {
	return &memDB{
		customers: make(map[uuid.UUID]*domain.Customer),
		wallets:   make(map[uuid.UUID]*domain.Wallet),
		budgets:   make(map[string]*domain.Budget),
		overrides: make(map[string]decimal.Decimal),
	}
}

// --- Transactor ---

type memTransactor struct {
	db *memDB
}

func (t *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.db.mu.Lock()
	t.db.journal = nil
	return &memTx{db: t.db}, nil
}

// memTx releases the database lock on Commit or Rollback; Rollback after
// Commit is a no-op so the usual defer pattern works.
type memTx struct {
	db   *memDB
	done bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.journal = nil
	t.db.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	for i := len(t.db.journal) - 1; i >= 0; i-- {
		t.db.journal[i]()
	}
	t.db.journal = nil
	t.db.mu.Unlock()
	return nil
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                              { return nil }

// --- Customer repo ---

type memCustomerRepo struct {
	db *memDB
}

func (r *memCustomerRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Customer) error {
	for _, existing := range r.db.customers {
		if existing.Name == c.Name {
			return fmt.Errorf("customer name already exists")
		}
	}
	stored := *c
	r.db.customers[c.ID] = &stored
	id := c.ID
	r.db.journal = append(r.db.journal, func() { delete(r.db.customers, id) })
	return nil
}

func (r *memCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.customers {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Customer, 0, len(r.db.customers))
	for _, c := range r.db.customers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.customers[c.ID]; !ok {
		return fmt.Errorf("customer not found")
	}
	stored := *c
	r.db.customers[c.ID] = &stored
	return nil
}

func (r *memCustomerRepo) UpdateSecret(ctx context.Context, id uuid.UUID, secretHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.customers[id]
	if !ok {
		return fmt.Errorf("customer not found")
	}
	c.SecretHash = secretHash
	return nil
}

// --- Wallet repo ---

type memWalletRepo struct {
	db *memDB
}

func (r *memWalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) (bool, error) {
	for _, existing := range r.db.wallets {
		if existing.CustomerID == w.CustomerID && existing.Currency == w.Currency {
			return false, nil
		}
	}
	stored := *w
	r.db.wallets[w.ID] = &stored
	id := w.ID
	r.db.journal = append(r.db.journal, func() { delete(r.db.wallets, id) })
	return true, nil
}

func (r *memWalletRepo) GetByOwner(ctx context.Context, customerID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.find(customerID, currency), nil
}

func (r *memWalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, currency string) (*domain.Wallet, error) {
	return r.find(customerID, currency), nil
}

func (r *memWalletRepo) find(customerID uuid.UUID, currency string) *domain.Wallet {
	for _, w := range r.db.wallets {
		if w.CustomerID == customerID && w.Currency == currency {
			cp := *w
			return &cp
		}
	}
	return nil
}

func (r *memWalletRepo) ListByOwner(ctx context.Context, customerID uuid.UUID) ([]domain.Wallet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Wallet
	for _, w := range r.db.wallets {
		if w.CustomerID == customerID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (r *memWalletRepo) ListAll(ctx context.Context) ([]domain.Wallet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Wallet, 0, len(r.db.wallets))
	for _, w := range r.db.wallets {
		out = append(out, *w)
	}
	return out, nil
}

func (r *memWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	w, ok := r.db.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	prev := w.Balance
	w.Balance = balance
	r.db.journal = append(r.db.journal, func() {
		if cur, ok := r.db.wallets[walletID]; ok {
			cur.Balance = prev
		}
	})
	return nil
}

// --- Transaction repo ---

type memTransactionRepo struct {
	db *memDB
}

func (r *memTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.db.nextSeq++
	t.Seq = r.db.nextSeq
	r.db.entries = append(r.db.entries, *t)
	r.db.journal = append(r.db.journal, func() {
		r.db.entries = r.db.entries[:len(r.db.entries)-1]
		r.db.nextSeq--
	})
	return nil
}

func (r *memTransactionRepo) List(ctx context.Context, f ports.TransactionFilter) ([]domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Transaction
	for _, e := range r.db.entries {
		w, ok := r.db.wallets[e.WalletID]
		if !ok || w.CustomerID != f.CustomerID {
			continue
		}
		if f.Currency != "" && w.Currency != f.Currency {
			continue
		}
		if f.Month != "" && e.Month() != f.Month {
			continue
		}
		if f.Sign == ports.SignNegative && e.Amount >= 0 {
			continue
		}
		if f.Sign == ports.SignPositive && e.Amount <= 0 {
			continue
		}
		e.Currency = w.Currency
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

// --- Budget repo ---

type memBudgetRepo struct {
	db *memDB
}

func budgetKey(b *domain.Budget) string {
	return fmt.Sprintf("%s|%s|%s|%s", b.CustomerID, b.Month, b.Currency, b.Category)
}

func (r *memBudgetRepo) Upsert(ctx context.Context, b *domain.Budget) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := *b
	r.db.budgets[budgetKey(b)] = &stored
	return nil
}

func (r *memBudgetRepo) List(ctx context.Context, customerID uuid.UUID, month, currency string) ([]domain.Budget, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Budget
	for _, b := range r.db.budgets {
		if b.CustomerID == customerID && b.Month == month && b.Currency == currency {
			out = append(out, *b)
		}
	}
	return out, nil
}

// --- Rate override repo ---

type memRateOverrideRepo struct {
	db *memDB
}

func (r *memRateOverrideRepo) GetAll(ctx context.Context) (map[string]decimal.Decimal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(r.db.overrides))
	for k, v := range r.db.overrides {
		out[k] = v
	}
	return out, nil
}

func (r *memRateOverrideRepo) Set(ctx context.Context, pair string, rate decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.overrides[pair] = rate
	return nil
}

func (r *memRateOverrideRepo) Delete(ctx context.Context, pair string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.overrides, pair)
	return nil
}

// --- Rate source / cache stubs ---

// staticRateSource serves a fixed table per base currency.
type staticRateSource struct {
	tables map[string]domain.RateTable
}

func (s *staticRateSource) FetchRates(ctx context.Context, base string) (domain.RateTable, error) {
	table, ok := s.tables[base]
	if !ok {
		return nil, fmt.Errorf("no rates for base %s", base)
	}
	return table, nil
}

// nullRateCache always misses.
type nullRateCache struct{}

func (nullRateCache) Get(ctx context.Context, base string) (domain.RateTable, error) {
	return nil, nil
}

func (nullRateCache) Set(ctx context.Context, base string, table domain.RateTable, ttl time.Duration) error {
	return nil
}
