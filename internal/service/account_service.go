package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const resetSecretLength = 10

const resetSecretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AccountServiceImpl manages customer identity and account administration.
type AccountServiceImpl struct {
	customerRepo ports.CustomerRepository
	walletRepo   ports.WalletRepository
	txRepo       ports.TransactionRepository
	rates        ports.RateResolver
	hasher       ports.PasswordHasher
	notifier     ports.Notifier
	transactor   ports.DBTransactor
	refCurrency  string
	log          zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(
	customerRepo ports.CustomerRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	rates ports.RateResolver,
	hasher ports.PasswordHasher,
	notifier ports.Notifier,
	transactor ports.DBTransactor,
	refCurrency string,
	log zerolog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		customerRepo: customerRepo,
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		rates:        rates,
		hasher:       hasher,
		notifier:     notifier,
		transactor:   transactor,
		refCurrency:  refCurrency,
		log:          log,
	}
}

// Register creates a customer and, when an initial amount is given, seeds an
// opening balance in the reference currency. Customer and opening entry are
// written in one database transaction.
func (s *AccountServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("Customer name must not be empty")
	}
	if req.Secret == "" {
		return nil, apperror.Validation("Secret must not be empty")
	}
	if req.InitialAmount < 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	existing, err := s.customerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check customer name: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrNameExists(name)
	}

	secretHash, err := s.hasher.Hash(req.Secret)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash secret: %w", err))
	}

	role := req.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:         uuid.New(),
		Name:       name,
		SecretHash: secretHash,
		Role:       role,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.customerRepo.Create(ctx, dbTx, customer); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create customer: %w", err))
	}

	result := &ports.RegisterResult{CustomerID: customer.ID}
	if req.InitialAmount > 0 {
		wallet := &domain.Wallet{
			ID:         uuid.New(),
			CustomerID: customer.ID,
			Currency:   s.refCurrency,
		}
		if _, err := s.walletRepo.Create(ctx, dbTx, wallet); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
		}
		entry := newEntry(wallet, domain.TransactionTypeOpen, req.InitialAmount, entryDate(req.Date))
		if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, entry.BalanceAfter); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
		}
		if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append entry: %w", err))
		}
		result.Balance = entry.BalanceAfter
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("customer", customer.Name).
		Str("role", string(customer.Role)).
		Int64("opening_balance", result.Balance).
		Msg("customer registered")
	return result, nil
}

// Login verifies name and secret. Unknown names and wrong secrets are
// indistinguishable to the caller.
func (s *AccountServiceImpl) Login(ctx context.Context, name, secret string) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hasher.Verify(secret, customer.SecretHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify secret: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}
	if !customer.IsActive {
		return nil, apperror.ErrAccountSuspended()
	}
	return customer, nil
}

// ChangeSecret rotates a customer's secret after verifying the current one.
func (s *AccountServiceImpl) ChangeSecret(ctx context.Context, name, oldSecret, newSecret string) error {
	if newSecret == "" {
		return apperror.Validation("Secret must not be empty")
	}
	customer, err := s.customerRepo.GetByName(ctx, name)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return apperror.ErrInvalidCredentials()
	}
	ok, err := s.hasher.Verify(oldSecret, customer.SecretHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify secret: %w", err))
	}
	if !ok {
		return apperror.ErrInvalidCredentials()
	}

	hash, err := s.hasher.Hash(newSecret)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash secret: %w", err))
	}
	if err := s.customerRepo.UpdateSecret(ctx, customer.ID, hash); err != nil {
		return apperror.InternalError(fmt.Errorf("update secret: %w", err))
	}
	s.log.Info().Str("customer", customer.Name).Msg("secret changed")
	return nil
}

// UpdateEmail sets the notification address of a customer.
func (s *AccountServiceImpl) UpdateEmail(ctx context.Context, name, email string) error {
	customer, err := s.lookupCustomer(ctx, name)
	if err != nil {
		return err
	}
	customer.Email = strings.TrimSpace(email)
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return apperror.InternalError(fmt.Errorf("update customer: %w", err))
	}
	return nil
}

// Wallets lists one customer's wallets.
func (s *AccountServiceImpl) Wallets(ctx context.Context, name string) ([]domain.Wallet, error) {
	customer, err := s.lookupCustomer(ctx, name)
	if err != nil {
		return nil, err
	}
	wallets, err := s.walletRepo.ListByOwner(ctx, customer.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// ListCustomers returns every registered customer.
func (s *AccountServiceImpl) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list customers: %w", err))
	}
	return customers, nil
}

// UpdateCustomer applies admin edits to an account's email, role and status.
func (s *AccountServiceImpl) UpdateCustomer(ctx context.Context, id uuid.UUID, email string, role domain.Role, active bool) error {
	customer, err := s.lookupCustomerByID(ctx, id)
	if err != nil {
		return err
	}
	if role != domain.RoleCustomer && role != domain.RoleAdmin {
		return apperror.Validation(fmt.Sprintf("Unknown role %q", role))
	}
	customer.Email = strings.TrimSpace(email)
	customer.Role = role
	customer.IsActive = active
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return apperror.InternalError(fmt.Errorf("update customer: %w", err))
	}
	s.log.Info().
		Str("customer", customer.Name).
		Str("role", string(role)).
		Bool("active", active).
		Msg("customer updated")
	return nil
}

// ResetSecret generates a fresh random secret, stores its hash and notifies
// the account holder. The plaintext is returned exactly once and never logged.
func (s *AccountServiceImpl) ResetSecret(ctx context.Context, id uuid.UUID) (string, error) {
	customer, err := s.lookupCustomerByID(ctx, id)
	if err != nil {
		return "", err
	}

	secret, err := randomSecret(resetSecretLength)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("generate secret: %w", err))
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("hash secret: %w", err))
	}
	if err := s.customerRepo.UpdateSecret(ctx, customer.ID, hash); err != nil {
		return "", apperror.InternalError(fmt.Errorf("update secret: %w", err))
	}

	s.notifier.CredentialsReset(ctx, ports.ResetNotice{
		Email:     customer.Email,
		Name:      customer.Name,
		NewSecret: secret,
	})
	s.log.Info().Str("customer", customer.Name).Msg("secret reset")
	return secret, nil
}

// CustomerDetails is the admin view of one account: wallets plus total
// holdings converted into the reference currency. Wallets whose currency
// cannot be converted are skipped from the total.
func (s *AccountServiceImpl) CustomerDetails(ctx context.Context, id uuid.UUID) (*ports.CustomerDetails, error) {
	customer, err := s.lookupCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wallets, err := s.walletRepo.ListByOwner(ctx, customer.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	var total int64
	for _, w := range wallets {
		rate, err := s.rates.Resolve(ctx, w.Currency, s.refCurrency)
		if err != nil {
			s.log.Warn().Err(err).
				Str("currency", w.Currency).
				Msg("cannot convert wallet, excluding from reference total")
			continue
		}
		total += money.Convert(w.Balance, rate)
	}

	return &ports.CustomerDetails{
		Customer:       *customer,
		Wallets:        wallets,
		ReferenceTotal: total,
	}, nil
}

// SystemStats aggregates the whole ledger: customer counts, per-currency
// holdings and their reference-currency total.
func (s *AccountServiceImpl) SystemStats(ctx context.Context) (*ports.SystemStats, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list customers: %w", err))
	}
	wallets, err := s.walletRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	stats := &ports.SystemStats{
		TotalCustomers:   len(customers),
		AssetsByCurrency: make(map[string]int64),
	}
	for i := range customers {
		if customers[i].IsActive {
			stats.ActiveCustomers++
		}
	}
	for _, w := range wallets {
		stats.AssetsByCurrency[w.Currency] += w.Balance
	}

	for currency, balance := range stats.AssetsByCurrency {
		rate, err := s.rates.Resolve(ctx, currency, s.refCurrency)
		if err != nil {
			s.log.Warn().Err(err).
				Str("currency", currency).
				Msg("cannot convert holdings, excluding from reference total")
			continue
		}
		stats.ReferenceAssets += money.Convert(balance, rate)
	}
	return stats, nil
}

func (s *AccountServiceImpl) lookupCustomer(ctx context.Context, name string) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNoSuchCustomer(name)
	}
	return customer, nil
}

func (s *AccountServiceImpl) lookupCustomerByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNoSuchCustomer(id.String())
	}
	return customer, nil
}

func randomSecret(length int) (string, error) {
	max := big.NewInt(int64(len(resetSecretAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = resetSecretAlphabet[n.Int64()]
	}
	return string(b), nil
}
