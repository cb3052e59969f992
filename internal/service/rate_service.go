package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// RateServiceImpl implements ports.RateResolver. Resolution is layered:
// manual overrides win, then the inverse override's reciprocal, then the
// cached external table, then a live fetch. Concurrent cache misses for the
// same base currency are collapsed into one upstream call.
type RateServiceImpl struct {
	overrideRepo ports.RateOverrideRepository
	cache        ports.RateCache
	source       ports.RateSource
	ttl          time.Duration
	group        singleflight.Group
	log          zerolog.Logger
}

// NewRateService creates a new RateServiceImpl. ttl bounds how long a
// fetched table is served from cache.
func NewRateService(
	overrideRepo ports.RateOverrideRepository,
	cache ports.RateCache,
	source ports.RateSource,
	ttl time.Duration,
	log zerolog.Logger,
) *RateServiceImpl {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RateServiceImpl{
		overrideRepo: overrideRepo,
		cache:        cache,
		source:       source,
		ttl:          ttl,
		log:          log,
	}
}

// Resolve returns the rate converting one unit of from into to.
func (s *RateServiceImpl) Resolve(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	overrides, err := s.overrideRepo.GetAll(ctx)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("load rate overrides: %w", err))
	}
	if rate, ok := overrides[domain.OverrideKey(from, to)]; ok {
		return rate, nil
	}
	if inv, ok := overrides[domain.OverrideKey(to, from)]; ok && inv.IsPositive() {
		return decimal.NewFromInt(1).Div(inv), nil
	}

	table, err := s.cache.Get(ctx, from)
	if err != nil {
		s.log.Warn().Err(err).Str("base", from).Msg("rate cache read failed, falling through to source")
	}
	if table == nil {
		table, err = s.fetchTable(ctx, from)
		if err != nil {
			s.log.Warn().Err(err).Str("base", from).Msg("rate fetch failed")
			return decimal.Zero, apperror.ErrRateUnavailable(from, to)
		}
	}

	rate, ok := table[to]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, apperror.ErrRateUnavailable(from, to)
	}
	return rate, nil
}

// fetchTable fetches a base currency's table once per concurrent burst and
// caches the result best-effort.
func (s *RateServiceImpl) fetchTable(ctx context.Context, base string) (domain.RateTable, error) {
	v, err, _ := s.group.Do(base, func() (any, error) {
		table, err := s.source.FetchRates(ctx, base)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, base, table, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("base", base).Msg("rate cache write failed")
		}
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.RateTable), nil
}

// SetOverride stores a manual rate for a directional pair.
func (s *RateServiceImpl) SetOverride(ctx context.Context, from, to string, rate decimal.Decimal) error {
	if from == to {
		return apperror.ErrSameCurrency()
	}
	if !rate.IsPositive() {
		return apperror.Validation("Override rate must be greater than zero")
	}
	if err := s.overrideRepo.Set(ctx, domain.OverrideKey(from, to), rate); err != nil {
		return apperror.InternalError(fmt.Errorf("set rate override: %w", err))
	}
	s.log.Info().Str("from", from).Str("to", to).Str("rate", rate.String()).Msg("rate override set")
	return nil
}

// RemoveOverride deletes a manual rate. Removing an absent pair is a no-op.
func (s *RateServiceImpl) RemoveOverride(ctx context.Context, from, to string) error {
	if err := s.overrideRepo.Delete(ctx, domain.OverrideKey(from, to)); err != nil {
		return apperror.InternalError(fmt.Errorf("delete rate override: %w", err))
	}
	return nil
}

// Overrides lists all manual rates.
func (s *RateServiceImpl) Overrides(ctx context.Context) (map[string]decimal.Decimal, error) {
	overrides, err := s.overrideRepo.GetAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load rate overrides: %w", err))
	}
	return overrides, nil
}
