package postgres

import (
	"context"
	"fmt"
	"strings"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. The transactions
// table is append-only: no update or delete statements exist here.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction. The storage
// assigns the sequence number; it is written back to t.Seq.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, date, type, amount, balance_after, note, counterparty, exchange_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`

	err := tx.QueryRow(ctx, query,
		t.ID, t.WalletID, t.Date, t.Type, t.Amount, t.BalanceAfter,
		t.Note, t.Counterparty, t.ExchangeRate, t.CreatedAt,
	).Scan(&t.Seq)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// List fetches ledger entries across all wallets of a customer, newest first.
// The wallet's currency is joined onto each row.
func (r *TransactionRepo) List(ctx context.Context, f ports.TransactionFilter) ([]domain.Transaction, error) {
	conditions := []string{"w.customer_id = $1"}
	args := []any{f.CustomerID}
	argIdx := 2

	if f.Currency != "" {
		conditions = append(conditions, fmt.Sprintf("w.currency = $%d", argIdx))
		args = append(args, f.Currency)
		argIdx++
	}
	if f.Month != "" {
		conditions = append(conditions, fmt.Sprintf("to_char(t.date, 'YYYY-MM') = $%d", argIdx))
		args = append(args, f.Month)
		argIdx++
	}
	switch f.Sign {
	case ports.SignNegative:
		conditions = append(conditions, "t.amount < 0")
	case ports.SignPositive:
		conditions = append(conditions, "t.amount > 0")
	}

	query := fmt.Sprintf(`SELECT t.id, t.wallet_id, t.seq, t.date, t.type, t.amount, t.balance_after,
		t.note, t.counterparty, t.exchange_rate, w.currency, t.created_at
		FROM transactions t JOIN wallets w ON w.id = t.wallet_id
		WHERE %s ORDER BY t.date DESC, t.seq DESC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.Seq, &t.Date, &t.Type, &t.Amount,
			&t.BalanceAfter, &t.Note, &t.Counterparty, &t.ExchangeRate,
			&t.Currency, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
