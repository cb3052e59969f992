package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

const customerColumns = `id, name, secret_hash, role, is_active, email, created_at, updated_at`

// Create inserts a new customer within a database transaction, so
// registration can open the first wallet atomically.
func (r *CustomerRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Customer) error {
	query := `INSERT INTO customers (id, name, secret_hash, role, is_active, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.Name, c.SecretHash, c.Role, c.IsActive, c.Email,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID fetches a customer by UUID.
func (r *CustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get customer by id: %w", err)
	}
	return c, nil
}

// GetByName fetches a customer by its unique name.
func (r *CustomerRepo) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE name = $1`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get customer by name: %w", err)
	}
	return c, nil
}

// List fetches all customers ordered by name.
func (r *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		err := rows.Scan(
			&c.ID, &c.Name, &c.SecretHash, &c.Role, &c.IsActive, &c.Email,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}

// Update persists the mutable customer fields (role, active flag, email).
func (r *CustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET role = $1, is_active = $2, email = $3, updated_at = NOW() WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, c.Role, c.IsActive, c.Email, c.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found: %s", c.ID)
	}
	return nil
}

// UpdateSecret replaces a customer's secret hash.
func (r *CustomerRepo) UpdateSecret(ctx context.Context, id uuid.UUID, secretHash string) error {
	query := `UPDATE customers SET secret_hash = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, secretHash, id)
	if err != nil {
		return fmt.Errorf("update customer secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found: %s", id)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(
		&c.ID, &c.Name, &c.SecretHash, &c.Role, &c.IsActive, &c.Email,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}
