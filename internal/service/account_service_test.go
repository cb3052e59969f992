package service

import (
	"context"
	"testing"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type accountTestDeps struct {
	svc          *AccountServiceImpl
	customerRepo *mocks.MockCustomerRepository
	walletRepo   *mocks.MockWalletRepository
	txRepo       *mocks.MockTransactionRepository
	rates        *mocks.MockRateResolver
	hasher       *mocks.MockPasswordHasher
	notifier     *mocks.MockNotifier
	transactor   *mocks.MockDBTransactor
	ctrl         *gomock.Controller
}

func setupAccountService(t *testing.T) *accountTestDeps {
	ctrl := gomock.NewController(t)
	d := &accountTestDeps{
		customerRepo: mocks.NewMockCustomerRepository(ctrl),
		walletRepo:   mocks.NewMockWalletRepository(ctrl),
		txRepo:       mocks.NewMockTransactionRepository(ctrl),
		rates:        mocks.NewMockRateResolver(ctrl),
		hasher:       mocks.NewMockPasswordHasher(ctrl),
		notifier:     mocks.NewMockNotifier(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewAccountService(
		d.customerRepo, d.walletRepo, d.txRepo,
		d.rates, d.hasher, d.notifier, d.transactor,
		"TWD", zerolog.Nop(),
	)
	return d
}

// ==================== Register Tests ====================

func TestAccount_Register_WithOpeningBalance(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.customerRepo.EXPECT().GetByName(ctx, "alice").Return(nil, nil)
	d.hasher.EXPECT().Hash("s3cret").Return("hashed", nil)
	d.transactor.EXPECT().Begin(ctx).Return(&mockTx{}, nil)
	d.customerRepo.EXPECT().Create(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, c *domain.Customer) error {
			assert.Equal(t, "alice", c.Name)
			assert.Equal(t, "hashed", c.SecretHash)
			assert.Equal(t, domain.RoleCustomer, c.Role)
			assert.True(t, c.IsActive)
			return nil
		})
	d.walletRepo.EXPECT().Create(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, w *domain.Wallet) (bool, error) {
			assert.Equal(t, "TWD", w.Currency)
			return true, nil
		})
	d.walletRepo.EXPECT().UpdateBalance(ctx, gomock.Any(), gomock.Any(), int64(100000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeOpen, e.Type)
			assert.Equal(t, int64(100000), e.Amount)
			assert.Equal(t, int64(100000), e.BalanceAfter)
			return nil
		})

	result, err := d.svc.Register(ctx, ports.RegisterRequest{
		Name:          "alice",
		Secret:        "s3cret",
		InitialAmount: 100000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), result.Balance)
	assert.NotEqual(t, uuid.Nil, result.CustomerID)
}

func TestAccount_Register_NoOpeningBalanceSkipsWallet(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.customerRepo.EXPECT().GetByName(ctx, "bob").Return(nil, nil)
	d.hasher.EXPECT().Hash("pw").Return("hashed", nil)
	d.transactor.EXPECT().Begin(ctx).Return(&mockTx{}, nil)
	d.customerRepo.EXPECT().Create(ctx, gomock.Any(), gomock.Any()).Return(nil)
	// No wallet or entry expectations: nothing is seeded.

	result, err := d.svc.Register(ctx, ports.RegisterRequest{Name: "bob", Secret: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Balance)
}

func TestAccount_Register_NameExists(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.customerRepo.EXPECT().GetByName(ctx, "alice").Return(testCustomer("alice"), nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Name: "alice", Secret: "pw"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNameExists))
}

func TestAccount_Register_Validation(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Name: "  ", Secret: "pw"})
	assert.Error(t, err)

	_, err = d.svc.Register(ctx, ports.RegisterRequest{Name: "carol", Secret: ""})
	assert.Error(t, err)

	_, err = d.svc.Register(ctx, ports.RegisterRequest{Name: "carol", Secret: "pw", InitialAmount: -1})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))
}

// ==================== Login Tests ====================

func TestAccount_Login(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")
	alice.SecretHash = "hashed"

	d.customerRepo.EXPECT().GetByName(ctx, "alice").Return(alice, nil)
	d.hasher.EXPECT().Verify("s3cret", "hashed").Return(true, nil)

	got, err := d.svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
}

func TestAccount_Login_UnknownNameAndWrongSecretLookAlike(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.customerRepo.EXPECT().GetByName(ctx, "ghost").Return(nil, nil)
	_, err := d.svc.Login(ctx, "ghost", "pw")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidCredentials))

	alice := testCustomer("alice")
	d.customerRepo.EXPECT().GetByName(ctx, "alice").Return(alice, nil)
	d.hasher.EXPECT().Verify("wrong", alice.SecretHash).Return(false, nil)
	_, err2 := d.svc.Login(ctx, "alice", "wrong")
	require.Error(t, err2)
	assert.True(t, apperror.HasCode(err2, apperror.CodeInvalidCredentials))
	assert.Equal(t, err.Error(), err2.Error())
}

func TestAccount_Login_Suspended(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")
	alice.IsActive = false

	d.customerRepo.EXPECT().GetByName(ctx, "alice").Return(alice, nil)
	d.hasher.EXPECT().Verify("s3cret", alice.SecretHash).Return(true, nil)

	_, err := d.svc.Login(ctx, "alice", "s3cret")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAccountSuspended))
}

// ==================== Secret Management Tests ====================

func TestAccount_ChangeSecret(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")
	alice.SecretHash = "old-hash"

	d.customerRepo.EXPECT().GetByName(ctx, "alice").Return(alice, nil)
	d.hasher.EXPECT().Verify("old", "old-hash").Return(true, nil)
	d.hasher.EXPECT().Hash("new").Return("new-hash", nil)
	d.customerRepo.EXPECT().UpdateSecret(ctx, alice.ID, "new-hash").Return(nil)

	assert.NoError(t, d.svc.ChangeSecret(ctx, "alice", "old", "new"))
}

func TestAccount_ChangeSecret_WrongOldSecret(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")

	d.customerRepo.EXPECT().GetByName(ctx, "alice").Return(alice, nil)
	d.hasher.EXPECT().Verify("wrong", alice.SecretHash).Return(false, nil)

	err := d.svc.ChangeSecret(ctx, "alice", "wrong", "new")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidCredentials))
}

func TestAccount_ResetSecret(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")
	alice.Email = "alice@example.com"

	var plaintext string
	d.customerRepo.EXPECT().GetByID(ctx, alice.ID).Return(alice, nil)
	d.hasher.EXPECT().Hash(gomock.Any()).
		DoAndReturn(func(secret string) (string, error) {
			plaintext = secret
			return "reset-hash", nil
		})
	d.customerRepo.EXPECT().UpdateSecret(ctx, alice.ID, "reset-hash").Return(nil)
	d.notifier.EXPECT().CredentialsReset(ctx, gomock.Any()).
		Do(func(_ context.Context, n ports.ResetNotice) {
			assert.Equal(t, "alice@example.com", n.Email)
			assert.Equal(t, plaintext, n.NewSecret)
		})

	secret, err := d.svc.ResetSecret(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, secret, resetSecretLength)
	assert.Equal(t, plaintext, secret)
}

// ==================== Admin View Tests ====================

func TestAccount_UpdateCustomer(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")

	d.customerRepo.EXPECT().GetByID(ctx, alice.ID).Return(alice, nil)
	d.customerRepo.EXPECT().Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, c *domain.Customer) error {
			assert.Equal(t, "alice@example.com", c.Email)
			assert.Equal(t, domain.RoleAdmin, c.Role)
			assert.False(t, c.IsActive)
			return nil
		})

	err := d.svc.UpdateCustomer(ctx, alice.ID, "alice@example.com", domain.RoleAdmin, false)
	assert.NoError(t, err)
}

func TestAccount_UpdateCustomer_UnknownRole(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")

	d.customerRepo.EXPECT().GetByID(ctx, alice.ID).Return(alice, nil)

	err := d.svc.UpdateCustomer(ctx, alice.ID, "", domain.Role("root"), true)
	assert.Error(t, err)
}

func TestAccount_CustomerDetails_SkipsUnconvertibleWallet(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")
	wallets := []domain.Wallet{
		{ID: uuid.New(), CustomerID: alice.ID, Currency: "TWD", Balance: 70000},
		{ID: uuid.New(), CustomerID: alice.ID, Currency: "USD", Balance: 1000},
		{ID: uuid.New(), CustomerID: alice.ID, Currency: "XXX", Balance: 555},
	}

	d.customerRepo.EXPECT().GetByID(ctx, alice.ID).Return(alice, nil)
	d.walletRepo.EXPECT().ListByOwner(ctx, alice.ID).Return(wallets, nil)
	d.rates.EXPECT().Resolve(ctx, "TWD", "TWD").Return(decimal.NewFromInt(1), nil)
	d.rates.EXPECT().Resolve(ctx, "USD", "TWD").Return(decimal.RequireFromString("31.5"), nil)
	d.rates.EXPECT().Resolve(ctx, "XXX", "TWD").
		Return(decimal.Zero, apperror.ErrRateUnavailable("XXX", "TWD"))

	details, err := d.svc.CustomerDetails(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, details.Wallets, 3)
	// 700.00 TWD + 10.00 USD * 31.5; unconvertible XXX excluded.
	assert.Equal(t, int64(101500), details.ReferenceTotal)
}

func TestAccount_SystemStats(t *testing.T) {
	d := setupAccountService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	alice := testCustomer("alice")
	bob := testCustomer("bob")
	bob.IsActive = false

	d.customerRepo.EXPECT().List(ctx).Return([]domain.Customer{*alice, *bob}, nil)
	d.walletRepo.EXPECT().ListAll(ctx).Return([]domain.Wallet{
		{Currency: "TWD", Balance: 70000},
		{Currency: "TWD", Balance: 30000},
		{Currency: "USD", Balance: 1000},
	}, nil)
	d.rates.EXPECT().Resolve(ctx, "TWD", "TWD").Return(decimal.NewFromInt(1), nil)
	d.rates.EXPECT().Resolve(ctx, "USD", "TWD").Return(decimal.RequireFromString("31.5"), nil)

	stats, err := d.svc.SystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 1, stats.ActiveCustomers)
	assert.Equal(t, int64(100000), stats.AssetsByCurrency["TWD"])
	assert.Equal(t, int64(1000), stats.AssetsByCurrency["USD"])
	assert.Equal(t, int64(131500), stats.ReferenceAssets)
}
