package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// BudgetRepo implements ports.BudgetRepository.
type BudgetRepo struct {
	pool Pool
}

// NewBudgetRepo creates a new BudgetRepo.
func NewBudgetRepo(pool Pool) *BudgetRepo {
	return &BudgetRepo{pool: pool}
}

// Upsert inserts or replaces a budget target for its
// (customer, month, currency, category) key.
func (r *BudgetRepo) Upsert(ctx context.Context, b *domain.Budget) error {
	query := `INSERT INTO budgets (customer_id, month, currency, category, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id, month, currency, category) DO UPDATE SET amount = EXCLUDED.amount`

	_, err := r.pool.Exec(ctx, query, b.CustomerID, b.Month, b.Currency, b.Category, b.Amount)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// List fetches all budget targets for one customer, month and currency.
func (r *BudgetRepo) List(ctx context.Context, customerID uuid.UUID, month, currency string) ([]domain.Budget, error) {
	query := `SELECT customer_id, month, currency, category, amount
		FROM budgets WHERE customer_id = $1 AND month = $2 AND currency = $3 ORDER BY category`

	rows, err := r.pool.Query(ctx, query, customerID, month, currency)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.CustomerID, &b.Month, &b.Currency, &b.Category, &b.Amount); err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget rows: %w", err)
	}
	return budgets, nil
}
