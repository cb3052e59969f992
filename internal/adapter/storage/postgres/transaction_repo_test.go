package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(walletID uuid.UUID) *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:           uuid.New(),
		WalletID:     walletID,
		Date:         time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Type:         domain.TransactionTypeDeposit,
		Amount:       100000,
		BalanceAfter: 100000,
		Note:         "salary",
		CreatedAt:    now,
	}
}

func entryColumns() []string {
	return []string{"id", "wallet_id", "seq", "date", "type", "amount", "balance_after",
		"note", "counterparty", "exchange_rate", "currency", "created_at"}
}

func entryRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(entryColumns()).AddRow(
		t.ID, t.WalletID, t.Seq, t.Date, t.Type, t.Amount, t.BalanceAfter,
		t.Note, t.Counterparty, t.ExchangeRate, t.Currency, t.CreatedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	entry := newTestEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(
			entry.ID, entry.WalletID, entry.Date, entry.Type, entry.Amount,
			entry.BalanceAfter, entry.Note, entry.Counterparty,
			entry.ExchangeRate, entry.CreatedAt,
		).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(7)))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, entry)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), entry.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	customerID := uuid.New()
	entry := newTestEntry(uuid.New())
	entry.Seq = 3
	entry.Currency = "TWD"

	mock.ExpectQuery("SELECT .+ FROM transactions t JOIN wallets w").
		WithArgs(customerID).
		WillReturnRows(entryRow(entry))

	txns, err := repo.List(context.Background(), ports.TransactionFilter{CustomerID: customerID})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, entry.ID, txns[0].ID)
	assert.Equal(t, "TWD", txns[0].Currency)
	assert.Equal(t, int64(3), txns[0].Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_AllFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	customerID := uuid.New()
	entry := newTestEntry(uuid.New())
	entry.Type = domain.TransactionTypeExchangeOut
	entry.Amount = -31500
	entry.ExchangeRate = decimal.NewNullDecimal(decimal.RequireFromString("31.5"))
	entry.Currency = "TWD"

	mock.ExpectQuery("SELECT .+ FROM transactions t JOIN wallets w").
		WithArgs(customerID, "TWD", "2026-08").
		WillReturnRows(entryRow(entry))

	txns, err := repo.List(context.Background(), ports.TransactionFilter{
		CustomerID: customerID,
		Currency:   "TWD",
		Month:      "2026-08",
		Sign:       ports.SignNegative,
	})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(-31500), txns[0].Amount)
	assert.True(t, txns[0].ExchangeRate.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	customerID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions t JOIN wallets w").
		WithArgs(customerID).
		WillReturnRows(pgxmock.NewRows(entryColumns()))

	txns, err := repo.List(context.Background(), ports.TransactionFilter{CustomerID: customerID})
	assert.NoError(t, err)
	assert.Empty(t, txns)
	assert.NoError(t, mock.ExpectationsWereMet())
}
