package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer() *domain.Customer {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Customer{
		ID:         uuid.New(),
		Name:       "alice",
		SecretHash: "argon2id_hash_data",
		Role:       domain.RoleCustomer,
		IsActive:   true,
		Email:      "alice@example.com",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func customerTestColumns() []string {
	return []string{"id", "name", "secret_hash", "role", "is_active", "email", "created_at", "updated_at"}
}

func customerRow(c *domain.Customer) *pgxmock.Rows {
	return pgxmock.NewRows(customerTestColumns()).AddRow(
		c.ID, c.Name, c.SecretHash, c.Role, c.IsActive, c.Email,
		c.CreatedAt, c.UpdatedAt,
	)
}

func TestCustomerRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	c := newTestCustomer()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO customers").
		WithArgs(c.ID, c.Name, c.SecretHash, c.Role, c.IsActive, c.Email,
			c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_GetByName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	c := newTestCustomer()

	mock.ExpectQuery("SELECT .+ FROM customers WHERE name").
		WithArgs(c.Name).
		WillReturnRows(customerRow(c))

	result, err := repo.GetByName(context.Background(), c.Name)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.Equal(t, domain.RoleCustomer, result.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_GetByName_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM customers WHERE name").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(customerTestColumns()))

	result, err := repo.GetByName(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	a := newTestCustomer()
	b := newTestCustomer()
	b.Name = "bob"

	rows := pgxmock.NewRows(customerTestColumns()).
		AddRow(a.ID, a.Name, a.SecretHash, a.Role, a.IsActive, a.Email, a.CreatedAt, a.UpdatedAt).
		AddRow(b.ID, b.Name, b.SecretHash, b.Role, b.IsActive, b.Email, b.CreatedAt, b.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM customers ORDER BY name").
		WillReturnRows(rows)

	customers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "alice", customers[0].Name)
	assert.Equal(t, "bob", customers[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	c := newTestCustomer()
	c.IsActive = false

	mock.ExpectExec("UPDATE customers SET role").
		WithArgs(c.Role, c.IsActive, c.Email, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.Update(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_UpdateSecret_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE customers SET secret_hash").
		WithArgs("new_hash", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateSecret(context.Background(), id, "new_hash")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
