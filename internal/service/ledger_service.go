package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService. Every mutating operation
// runs in a single database transaction with pessimistic wallet locking, so
// a crash between the two legs of a transfer or exchange can never leave a
// half-applied posting.
type LedgerServiceImpl struct {
	customerRepo ports.CustomerRepository
	walletRepo   ports.WalletRepository
	txRepo       ports.TransactionRepository
	rates        ports.RateResolver
	notifier     ports.Notifier
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	customerRepo ports.CustomerRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	rates ports.RateResolver,
	notifier ports.Notifier,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		customerRepo: customerRepo,
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		rates:        rates,
		notifier:     notifier,
		transactor:   transactor,
		log:          log,
	}
}

// Deposit adds funds to a customer's wallet, creating the wallet on first
// use. Returns the new balance.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}
	customer, err := s.lookupCustomer(ctx, req.Customer)
	if err != nil {
		return 0, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.lockOrCreateWallet(ctx, dbTx, customer.ID, req.Currency)
	if err != nil {
		return 0, err
	}

	entry := newEntry(wallet, domain.TransactionTypeDeposit, req.Amount, entryDate(req.Date))
	entry.Note = req.Note
	if err := s.post(ctx, dbTx, wallet, entry); err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("customer", customer.Name).
		Str("currency", wallet.Currency).
		Str("amount", money.Format(req.Amount)).
		Msg("deposit posted")

	return entry.BalanceAfter, nil
}

// Withdraw removes funds from an existing wallet. Returns the new balance.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}
	customer, err := s.lookupCustomer(ctx, req.Customer)
	if err != nil {
		return 0, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.lockWallet(ctx, dbTx, customer.ID, req.Currency)
	if err != nil {
		return 0, err
	}
	if wallet.Balance < req.Amount {
		return 0, apperror.ErrInsufficientFunds(wallet.Currency)
	}

	entry := newEntry(wallet, domain.TransactionTypeWithdraw, -req.Amount, entryDate(req.Date))
	entry.Note = req.Note
	if err := s.post(ctx, dbTx, wallet, entry); err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("customer", customer.Name).
		Str("currency", wallet.Currency).
		Str("amount", money.Format(req.Amount)).
		Msg("withdrawal posted")

	return entry.BalanceAfter, nil
}

// Transfer moves funds between two customers in the same currency, posting a
// paired transfer-out/transfer-in atomically. Returns the sender's new
// balance.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}
	if req.From == req.To {
		return 0, apperror.ErrSelfTransfer()
	}
	from, err := s.lookupCustomer(ctx, req.From)
	if err != nil {
		return 0, err
	}
	to, err := s.lookupCustomer(ctx, req.To)
	if err != nil {
		return 0, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock wallets in a deterministic order (owner name) so two opposing
	// transfers cannot deadlock. The sender's wallet must already exist;
	// the recipient's is created lazily.
	var src, dst *domain.Wallet
	if from.Name < to.Name {
		if src, err = s.lockWallet(ctx, dbTx, from.ID, req.Currency); err != nil {
			return 0, err
		}
		if dst, err = s.lockOrCreateWallet(ctx, dbTx, to.ID, req.Currency); err != nil {
			return 0, err
		}
	} else {
		if dst, err = s.lockOrCreateWallet(ctx, dbTx, to.ID, req.Currency); err != nil {
			return 0, err
		}
		if src, err = s.lockWallet(ctx, dbTx, from.ID, req.Currency); err != nil {
			return 0, err
		}
	}

	if src.Balance < req.Amount {
		return 0, apperror.ErrInsufficientFunds(src.Currency)
	}

	date := entryDate(req.Date)

	out := newEntry(src, domain.TransactionTypeTransferOut, -req.Amount, date)
	out.Note = req.Note
	out.Counterparty = to.Name
	if err := s.post(ctx, dbTx, src, out); err != nil {
		return 0, err
	}

	in := newEntry(dst, domain.TransactionTypeTransferIn, req.Amount, date)
	in.Note = req.Note
	in.Counterparty = from.Name
	if err := s.post(ctx, dbTx, dst, in); err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifier.TransferReceived(ctx, ports.TransferNotice{
		Email:    to.Email,
		FromName: from.Name,
		ToName:   to.Name,
		Currency: req.Currency,
		Amount:   req.Amount,
	})

	s.log.Info().
		Str("from", from.Name).
		Str("to", to.Name).
		Str("currency", req.Currency).
		Str("amount", money.Format(req.Amount)).
		Msg("transfer posted")

	return out.BalanceAfter, nil
}

// Exchange converts funds between two wallets of one customer. The rate is
// resolved before any lock is taken so the external rate call never holds a
// wallet row.
func (s *LedgerServiceImpl) Exchange(ctx context.Context, req ports.ExchangeRequest) (*ports.ExchangeResult, error) {
	if req.FromAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.FromCurrency == req.ToCurrency {
		return nil, apperror.ErrSameCurrency()
	}
	customer, err := s.lookupCustomer(ctx, req.Customer)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.Resolve(ctx, req.FromCurrency, req.ToCurrency)
	if err != nil {
		return nil, err
	}
	toAmount := money.Convert(req.FromAmount, rate)
	if toAmount <= 0 {
		return nil, apperror.Validation("Amount too small to exchange at the current rate")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock the two wallets in currency order; the source must exist, the
	// target is created lazily.
	var src, dst *domain.Wallet
	if req.FromCurrency < req.ToCurrency {
		if src, err = s.lockWallet(ctx, dbTx, customer.ID, req.FromCurrency); err != nil {
			return nil, err
		}
		if dst, err = s.lockOrCreateWallet(ctx, dbTx, customer.ID, req.ToCurrency); err != nil {
			return nil, err
		}
	} else {
		if dst, err = s.lockOrCreateWallet(ctx, dbTx, customer.ID, req.ToCurrency); err != nil {
			return nil, err
		}
		if src, err = s.lockWallet(ctx, dbTx, customer.ID, req.FromCurrency); err != nil {
			return nil, err
		}
	}

	if src.Balance < req.FromAmount {
		return nil, apperror.ErrInsufficientFunds(src.Currency)
	}

	date := entryDate(req.Date)

	out := newEntry(src, domain.TransactionTypeExchangeOut, -req.FromAmount, date)
	out.ExchangeRate = decimalNull(rate)
	if err := s.post(ctx, dbTx, src, out); err != nil {
		return nil, err
	}

	in := newEntry(dst, domain.TransactionTypeExchangeIn, toAmount, date)
	in.ExchangeRate = decimalNull(rate)
	if err := s.post(ctx, dbTx, dst, in); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifier.ExchangeCompleted(ctx, ports.ExchangeNotice{
		Email:        customer.Email,
		Name:         customer.Name,
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		FromAmount:   req.FromAmount,
		ToAmount:     toAmount,
	})

	s.log.Info().
		Str("customer", customer.Name).
		Str("from_currency", req.FromCurrency).
		Str("to_currency", req.ToCurrency).
		Str("rate", rate.String()).
		Msg("exchange posted")

	return &ports.ExchangeResult{
		ToAmount:    toAmount,
		FromBalance: out.BalanceAfter,
		ToBalance:   in.BalanceAfter,
		Rate:        rate,
	}, nil
}

// AdminAdjust posts an administrator balance correction. Positive amounts
// credit and may create the wallet; negative amounts debit an existing
// wallet and must be covered by its balance. Returns the new balance.
func (s *LedgerServiceImpl) AdminAdjust(ctx context.Context, req ports.AdjustRequest) (int64, error) {
	if req.Amount == 0 {
		return 0, apperror.ErrInvalidAmount()
	}
	customer, err := s.lookupCustomer(ctx, req.Customer)
	if err != nil {
		return 0, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	var wallet *domain.Wallet
	if req.Amount > 0 {
		wallet, err = s.lockOrCreateWallet(ctx, dbTx, customer.ID, req.Currency)
	} else {
		wallet, err = s.lockWallet(ctx, dbTx, customer.ID, req.Currency)
	}
	if err != nil {
		return 0, err
	}
	if req.Amount < 0 && wallet.Balance < -req.Amount {
		return 0, apperror.ErrInsufficientFunds(wallet.Currency)
	}

	entry := newEntry(wallet, domain.TransactionTypeAdminAdjust, req.Amount, entryDate(time.Time{}))
	entry.Note = adminNote(req.Note)
	if err := s.post(ctx, dbTx, wallet, entry); err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("customer", customer.Name).
		Str("currency", wallet.Currency).
		Int64("amount", req.Amount).
		Msg("admin adjustment posted")

	return entry.BalanceAfter, nil
}

// History lists a customer's ledger entries newest first, optionally limited
// to one calendar month.
func (s *LedgerServiceImpl) History(ctx context.Context, customerName, month string) ([]domain.Transaction, error) {
	if month != "" && !domain.ValidMonth(month) {
		return nil, apperror.Validation(fmt.Sprintf("Invalid month %q, expected YYYY-MM", month))
	}
	customer, err := s.lookupCustomer(ctx, customerName)
	if err != nil {
		return nil, err
	}

	txns, err := s.txRepo.List(ctx, ports.TransactionFilter{
		CustomerID: customer.ID,
		Month:      month,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list history: %w", err))
	}
	return txns, nil
}

// lookupCustomer resolves a customer by name, mapping absence to a business
// error.
func (s *LedgerServiceImpl) lookupCustomer(ctx context.Context, name string) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNoSuchCustomer(name)
	}
	return customer, nil
}

// lockWallet locks an existing wallet row, mapping absence to a business
// error.
func (s *LedgerServiceImpl) lockWallet(ctx context.Context, dbTx pgx.Tx, customerID uuid.UUID, currency string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, customerID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNoSuchWallet(currency)
	}
	return wallet, nil
}

// lockOrCreateWallet locks a wallet row, creating it at zero balance on
// first use. A concurrent create is resolved by re-locking the winning row.
func (s *LedgerServiceImpl) lockOrCreateWallet(ctx context.Context, dbTx pgx.Tx, customerID uuid.UUID, currency string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, customerID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	now := time.Now().UTC()
	wallet = &domain.Wallet{
		ID:         uuid.New(),
		CustomerID: customerID,
		Currency:   currency,
		Balance:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	inserted, err := s.walletRepo.Create(ctx, dbTx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	if inserted {
		return wallet, nil
	}

	// Lost the insert race; lock the row the other transaction created.
	wallet, err = s.walletRepo.GetByOwnerForUpdate(ctx, dbTx, customerID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("relock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet vanished after conflicting create: %s/%s", customerID, currency))
	}
	return wallet, nil
}

// post applies one ledger entry: updates the locked wallet's balance and
// appends the entry. The wallet struct is mutated to the new balance.
func (s *LedgerServiceImpl) post(ctx context.Context, dbTx pgx.Tx, wallet *domain.Wallet, entry *domain.Transaction) error {
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, entry.BalanceAfter); err != nil {
		return apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("append entry: %w", err))
	}
	wallet.Balance = entry.BalanceAfter
	return nil
}

// newEntry builds a ledger entry for a locked wallet with the balance
// snapshot already applied.
func newEntry(wallet *domain.Wallet, typ domain.TransactionType, amount int64, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		Date:         date,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: wallet.Balance + amount,
		Currency:     wallet.Currency,
		CreatedAt:    time.Now().UTC(),
	}
}

// entryDate defaults a zero date to today (UTC).
func entryDate(d time.Time) time.Time {
	if d.IsZero() {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return d
}

func decimalNull(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// adminNote forces the administrator prefix onto an adjustment note.
func adminNote(note string) string {
	if strings.HasPrefix(note, domain.AdminNotePrefix) {
		return note
	}
	return domain.AdminNotePrefix + note
}
