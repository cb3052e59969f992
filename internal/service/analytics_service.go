package service

import (
	"context"
	"fmt"
	"sort"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/money"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AnalyticsServiceImpl implements ports.AnalyticsService. Reports are
// derived from the immutable ledger at read time; nothing here writes
// transaction rows.
type AnalyticsServiceImpl struct {
	customerRepo ports.CustomerRepository
	txRepo       ports.TransactionRepository
	budgetRepo   ports.BudgetRepository
	categorizer  ports.Categorizer
	rates        ports.RateResolver
	refCurrency  string
	log          zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsServiceImpl. refCurrency is the
// currency multi-currency reports are normalized into.
func NewAnalyticsService(
	customerRepo ports.CustomerRepository,
	txRepo ports.TransactionRepository,
	budgetRepo ports.BudgetRepository,
	categorizer ports.Categorizer,
	rates ports.RateResolver,
	refCurrency string,
	log zerolog.Logger,
) *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{
		customerRepo: customerRepo,
		txRepo:       txRepo,
		budgetRepo:   budgetRepo,
		categorizer:  categorizer,
		rates:        rates,
		refCurrency:  refCurrency,
		log:          log,
	}
}

// SpendingSummary counts one month's outgoing entries per category. A
// classifier outage fails the report: counts must not silently drift into a
// fallback bucket.
func (s *AnalyticsServiceImpl) SpendingSummary(ctx context.Context, customerName, month, currency string) (*ports.SpendingSummary, error) {
	entries, err := s.monthEntries(ctx, customerName, month, currency, ports.SignNegative)
	if err != nil {
		return nil, err
	}

	cats, err := s.spendCategories(ctx, entries, true)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Category]int)
	for _, c := range cats {
		counts[c]++
	}

	return &ports.SpendingSummary{
		Counts:     counts,
		Suggestion: countSuggestion(counts),
	}, nil
}

// IncomeSummary counts one month's incoming entries per category. Income
// notes are never classified, so this report cannot fail on the classifier.
func (s *AnalyticsServiceImpl) IncomeSummary(ctx context.Context, customerName, month, currency string) (*ports.IncomeSummary, error) {
	entries, err := s.monthEntries(ctx, customerName, month, currency, ports.SignPositive)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Category]int)
	for i := range entries {
		counts[domain.IncomeCategory(&entries[i])]++
	}

	return &ports.IncomeSummary{Counts: counts}, nil
}

// CashFlow aggregates one month of ledger activity into converted totals,
// per-category sources and a daily plus cumulative time series. When the
// classifier is down, note-bearing spend lands in the unclassified bucket
// instead of failing the report.
func (s *AnalyticsServiceImpl) CashFlow(ctx context.Context, customerName, month, currency string) (*ports.CashFlowReport, error) {
	entries, err := s.monthEntries(ctx, customerName, month, currency, ports.SignAny)
	if err != nil {
		return nil, err
	}

	reportCurrency := currency
	if currency == ports.CurrencyAll {
		reportCurrency = s.refCurrency
	}

	// Convert every entry into the report currency. Currencies with no
	// resolvable rate are skipped rather than failing the whole report.
	converted := make([]int64, len(entries))
	include := make([]bool, len(entries))
	rateCache := map[string]decimal.Decimal{}
	for i := range entries {
		cur := entries[i].Currency
		rate, ok := rateCache[cur]
		if !ok {
			var rerr error
			rate, rerr = s.rates.Resolve(ctx, cur, reportCurrency)
			if rerr != nil {
				s.log.Warn().Str("currency", cur).Str("report_currency", reportCurrency).
					Msg("no rate for currency, skipping its entries")
				rate = decimal.Zero
			}
			rateCache[cur] = rate
		}
		if rate.IsZero() {
			continue
		}
		converted[i] = money.Convert(entries[i].Amount, rate)
		include[i] = true
	}

	cats, err := s.spendCategories(ctx, entries, false)
	if err != nil {
		return nil, err
	}

	report := &ports.CashFlowReport{
		Currency:       reportCurrency,
		IncomeSources:  make(map[domain.Category]int64),
		SpendSources:   make(map[domain.Category]int64),
		DailyFlow:      make(map[string]ports.Flow),
		CumulativeFlow: make(map[string]ports.Flow),
	}

	for i := range entries {
		if !include[i] {
			continue
		}
		day := entries[i].Date.Format(domain.DateFormat)
		flow := report.DailyFlow[day]
		if entries[i].Amount > 0 {
			report.TotalIncome += converted[i]
			report.IncomeSources[domain.IncomeCategory(&entries[i])] += converted[i]
			flow.Income += converted[i]
		} else {
			spend := -converted[i]
			report.TotalSpend += spend
			report.SpendSources[cats[i]] += spend
			flow.Spend += spend
		}
		report.DailyFlow[day] = flow
	}

	// Cumulative series: prefix sums over ascending days.
	days := make([]string, 0, len(report.DailyFlow))
	for day := range report.DailyFlow {
		days = append(days, day)
	}
	sort.Strings(days)
	var running ports.Flow
	for _, day := range days {
		running.Income += report.DailyFlow[day].Income
		running.Spend += report.DailyFlow[day].Spend
		report.CumulativeFlow[day] = running
	}

	report.Suggestion = amountSuggestion(report.SpendSources, report.TotalSpend)
	return report, nil
}

// BudgetVsActual pairs each discretionary category's budget target with its
// actual classified spend for one month and currency.
func (s *AnalyticsServiceImpl) BudgetVsActual(ctx context.Context, customerName, month, currency string) ([]ports.BudgetLine, error) {
	if currency == "" || currency == ports.CurrencyAll {
		return nil, apperror.Validation("Budget comparison needs a concrete currency")
	}
	customer, err := s.lookupCustomer(ctx, customerName)
	if err != nil {
		return nil, err
	}
	if !domain.ValidMonth(month) {
		return nil, apperror.Validation(fmt.Sprintf("Invalid month %q, expected YYYY-MM", month))
	}

	entries, err := s.txRepo.List(ctx, ports.TransactionFilter{
		CustomerID: customer.ID,
		Currency:   currency,
		Month:      month,
		Sign:       ports.SignNegative,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list spend entries: %w", err))
	}

	cats, err := s.spendCategories(ctx, entries, true)
	if err != nil {
		return nil, err
	}

	spent := make(map[domain.Category]int64)
	for i := range entries {
		spent[cats[i]] += -entries[i].Amount
	}

	budgets, err := s.budgetRepo.List(ctx, customer.ID, month, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list budgets: %w", err))
	}
	targets := make(map[domain.Category]int64)
	for _, b := range budgets {
		targets[b.Category] = b.Amount
	}

	lines := make([]ports.BudgetLine, 0, len(domain.DiscretionaryCategories()))
	for _, c := range domain.DiscretionaryCategories() {
		lines = append(lines, ports.BudgetLine{
			Category: c,
			Budget:   targets[c],
			Spent:    spent[c],
		})
	}
	return lines, nil
}

// SetBudget stores a monthly budget target.
func (s *AnalyticsServiceImpl) SetBudget(ctx context.Context, customerName, month, currency string, category domain.Category, amount int64) error {
	if !domain.ValidMonth(month) {
		return apperror.Validation(fmt.Sprintf("Invalid month %q, expected YYYY-MM", month))
	}
	if amount < 0 {
		return apperror.Validation("Budget amount cannot be negative")
	}
	if domain.CategoryFromLabel(string(category)) != category {
		return apperror.Validation(fmt.Sprintf("Unknown budget category %q", category))
	}
	customer, err := s.lookupCustomer(ctx, customerName)
	if err != nil {
		return err
	}

	b := &domain.Budget{
		CustomerID: customer.ID,
		Month:      month,
		Currency:   currency,
		Category:   category,
		Amount:     amount,
	}
	if err := s.budgetRepo.Upsert(ctx, b); err != nil {
		return apperror.InternalError(fmt.Errorf("upsert budget: %w", err))
	}
	return nil
}

// monthEntries validates inputs and loads a customer's entries, optionally
// restricted to one calendar month ("" = all).
func (s *AnalyticsServiceImpl) monthEntries(ctx context.Context, customerName, month, currency string, sign ports.TransactionSign) ([]domain.Transaction, error) {
	if month != "" && !domain.ValidMonth(month) {
		return nil, apperror.Validation(fmt.Sprintf("Invalid month %q, expected YYYY-MM", month))
	}
	customer, err := s.lookupCustomer(ctx, customerName)
	if err != nil {
		return nil, err
	}

	filter := ports.TransactionFilter{
		CustomerID: customer.ID,
		Month:      month,
		Sign:       sign,
	}
	if currency != ports.CurrencyAll {
		filter.Currency = currency
	}

	entries, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list entries: %w", err))
	}
	return entries, nil
}

func (s *AnalyticsServiceImpl) lookupCustomer(ctx context.Context, name string) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNoSuchCustomer(name)
	}
	return customer, nil
}

// spendCategories resolves the spend bucket of every negative entry in
// entries (positive entries get ""). Metadata-derivable buckets are assigned
// directly; the remaining notes go to the classifier in one batch. strict
// controls classifier-failure behavior: fail the report, or bucket the
// affected entries as unclassified.
func (s *AnalyticsServiceImpl) spendCategories(ctx context.Context, entries []domain.Transaction, strict bool) ([]domain.Category, error) {
	cats := make([]domain.Category, len(entries))
	var noteIdx []int
	var notes []string

	for i := range entries {
		if entries[i].Amount >= 0 {
			continue
		}
		if c, ok := domain.StructuralSpendCategory(&entries[i]); ok {
			cats[i] = c
			continue
		}
		noteIdx = append(noteIdx, i)
		notes = append(notes, entries[i].Note)
	}

	if len(notes) == 0 {
		return cats, nil
	}

	classified, err := s.categorizer.Categorize(ctx, notes, domain.DiscretionaryCategories())
	if err != nil {
		if strict {
			return nil, err
		}
		s.log.Warn().Err(err).Int("notes", len(notes)).
			Msg("classifier unavailable, bucketing noted spend as unclassified")
		for _, i := range noteIdx {
			cats[i] = domain.CategoryUnclassified
		}
		return cats, nil
	}

	for j, i := range noteIdx {
		cats[i] = classified[j]
	}
	return cats, nil
}

// countSuggestion names the discretionary category with the most outgoing
// entries. Asset movements never drive the suggestion.
func countSuggestion(counts map[domain.Category]int) string {
	var top domain.Category
	topCount, total := 0, 0
	for c, n := range counts {
		if domain.IsAssetMovement(c) || c == domain.CategoryUnclassified {
			continue
		}
		total += n
		if n > topCount || (n == topCount && c < top) {
			top, topCount = c, n
		}
	}
	if total == 0 {
		if len(counts) > 0 {
			return "All spending this month was asset movement; there are no discretionary purchases to analyze."
		}
		return ""
	}
	return fmt.Sprintf("Most of your discretionary spending went to %s: %d of %d outgoing entries this month.", top, topCount, total)
}

// amountSuggestion names the spend category with the highest converted
// total and its share of all spending.
func amountSuggestion(sources map[domain.Category]int64, totalSpend int64) string {
	if totalSpend == 0 {
		return "No spending recorded for this period."
	}
	var top domain.Category
	var topAmount int64
	for c, v := range sources {
		if domain.IsAssetMovement(c) {
			continue
		}
		if v > topAmount || (v == topAmount && v > 0 && c < top) {
			top, topAmount = c, v
		}
	}
	if topAmount == 0 {
		return "All spending this period was asset movement; there is nothing discretionary to analyze."
	}
	percent := float64(topAmount) / float64(totalSpend) * 100
	return fmt.Sprintf("%s accounts for the largest share of spending: %s (%.1f%% of total spend).",
		top, money.Format(topAmount), percent)
}
