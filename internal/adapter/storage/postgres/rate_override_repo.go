package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// RateOverrideRepo implements ports.RateOverrideRepository. Overrides are
// keyed by directional pair, e.g. "USD_TWD".
type RateOverrideRepo struct {
	pool Pool
}

// NewRateOverrideRepo creates a new RateOverrideRepo.
func NewRateOverrideRepo(pool Pool) *RateOverrideRepo {
	return &RateOverrideRepo{pool: pool}
}

// GetAll fetches every manual rate override.
func (r *RateOverrideRepo) GetAll(ctx context.Context) (map[string]decimal.Decimal, error) {
	query := `SELECT pair, rate FROM rate_overrides`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rate overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]decimal.Decimal)
	for rows.Next() {
		var pair string
		var rate decimal.Decimal
		if err := rows.Scan(&pair, &rate); err != nil {
			return nil, fmt.Errorf("scan rate override row: %w", err)
		}
		overrides[pair] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate override rows: %w", err)
	}
	return overrides, nil
}

// Set inserts or replaces a manual rate override.
func (r *RateOverrideRepo) Set(ctx context.Context, pair string, rate decimal.Decimal) error {
	query := `INSERT INTO rate_overrides (pair, rate)
		VALUES ($1, $2)
		ON CONFLICT (pair) DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, pair, rate)
	if err != nil {
		return fmt.Errorf("set rate override: %w", err)
	}
	return nil
}

// Delete removes a manual rate override. Deleting an absent pair is not an
// error.
func (r *RateOverrideRepo) Delete(ctx context.Context, pair string) error {
	query := `DELETE FROM rate_overrides WHERE pair = $1`

	_, err := r.pool.Exec(ctx, query, pair)
	if err != nil {
		return fmt.Errorf("delete rate override: %w", err)
	}
	return nil
}
