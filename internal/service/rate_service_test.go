package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type rateTestDeps struct {
	svc          *RateServiceImpl
	overrideRepo *mocks.MockRateOverrideRepository
	cache        *mocks.MockRateCache
	source       *mocks.MockRateSource
	ctrl         *gomock.Controller
}

func setupRateService(t *testing.T) *rateTestDeps {
	ctrl := gomock.NewController(t)
	d := &rateTestDeps{
		overrideRepo: mocks.NewMockRateOverrideRepository(ctrl),
		cache:        mocks.NewMockRateCache(ctrl),
		source:       mocks.NewMockRateSource(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewRateService(d.overrideRepo, d.cache, d.source, time.Hour, zerolog.Nop())
	return d
}

func TestRateService_Resolve_SameCurrency(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	// No collaborator calls at all.
	rate, err := d.svc.Resolve(context.Background(), "TWD", "TWD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestRateService_Resolve_OverrideWins(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	// Neither the cache nor the source may be consulted on an override hit.
	d.overrideRepo.EXPECT().GetAll(ctx).Return(map[string]decimal.Decimal{
		"USD_TWD": decimal.RequireFromString("30"),
	}, nil)

	rate, err := d.svc.Resolve(ctx, "USD", "TWD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("30")))
}

func TestRateService_Resolve_InverseOverrideReciprocal(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.overrideRepo.EXPECT().GetAll(ctx).Return(map[string]decimal.Decimal{
		"USD_TWD": decimal.RequireFromString("40"),
	}, nil)

	rate, err := d.svc.Resolve(ctx, "TWD", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.025")))
}

func TestRateService_Resolve_CacheHit(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.overrideRepo.EXPECT().GetAll(ctx).Return(nil, nil)
	d.cache.EXPECT().Get(ctx, "USD").Return(domain.RateTable{
		"TWD": decimal.RequireFromString("31.5"),
	}, nil)

	rate, err := d.svc.Resolve(ctx, "USD", "TWD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("31.5")))
}

func TestRateService_Resolve_CacheMissFetchesAndCaches(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	table := domain.RateTable{"TWD": decimal.RequireFromString("31.5")}

	d.overrideRepo.EXPECT().GetAll(ctx).Return(nil, nil)
	d.cache.EXPECT().Get(ctx, "USD").Return(nil, nil)
	d.source.EXPECT().FetchRates(ctx, "USD").Return(table, nil)
	d.cache.EXPECT().Set(ctx, "USD", table, time.Hour).Return(nil)

	rate, err := d.svc.Resolve(ctx, "USD", "TWD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("31.5")))
}

func TestRateService_Resolve_SourceDown(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.overrideRepo.EXPECT().GetAll(ctx).Return(nil, nil)
	d.cache.EXPECT().Get(ctx, "USD").Return(nil, nil)
	d.source.EXPECT().FetchRates(ctx, "USD").Return(nil, errors.New("connection refused"))

	_, err := d.svc.Resolve(ctx, "USD", "TWD")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeRateUnavailable))
}

func TestRateService_Resolve_UnknownTargetCurrency(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.overrideRepo.EXPECT().GetAll(ctx).Return(nil, nil)
	d.cache.EXPECT().Get(ctx, "USD").Return(domain.RateTable{
		"TWD": decimal.RequireFromString("31.5"),
	}, nil)

	_, err := d.svc.Resolve(ctx, "USD", "XXX")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeRateUnavailable))
}

func TestRateService_SetOverride_Validation(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	err := d.svc.SetOverride(ctx, "USD", "USD", decimal.RequireFromString("1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeSameCurrency))

	err = d.svc.SetOverride(ctx, "USD", "TWD", decimal.Zero)
	assert.Error(t, err)
}

func TestRateService_SetOverride(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	rate := decimal.RequireFromString("31.5")
	d.overrideRepo.EXPECT().Set(ctx, "USD_TWD", rate).Return(nil)

	err := d.svc.SetOverride(ctx, "USD", "TWD", rate)
	assert.NoError(t, err)
}

func TestRateService_RemoveOverride(t *testing.T) {
	d := setupRateService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.overrideRepo.EXPECT().Delete(ctx, "USD_TWD").Return(nil)

	err := d.svc.RemoveOverride(ctx, "USD", "TWD")
	assert.NoError(t, err)
}
