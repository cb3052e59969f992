package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes ordinary customers from administrators.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Customer is an account holder. Customers are never hard-deleted;
// deactivation flips IsActive instead.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"` // unique identity key
	SecretHash string    `json:"-"`    // opaque password hash, never exposed
	Role       Role      `json:"role"`
	IsActive   bool      `json:"is_active"`
	Email      string    `json:"email,omitempty"` // optional notification address
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAdmin returns true if the customer holds the administrator role.
func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}
