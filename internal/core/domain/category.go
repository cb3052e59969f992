package domain

// Category is a closed spending/income bucket. Summaries are keyed by
// Category rather than raw strings so that category handling stays
// exhaustive and testable.
type Category string

// Discretionary categories: the candidate label set handed to the note
// classifier, and the row set of the budget table.
const (
	CategoryFoodDining    Category = "food-dining"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "online-shopping"
	CategoryBills         Category = "bills"
	CategoryHousehold     Category = "household"
	CategoryOther         Category = "other"
)

// Structural spend buckets, derivable from transaction metadata alone.
const (
	CategoryAdminAdjustment Category = "admin-adjustment"
	CategoryExchangeSpend   Category = "exchange-spend"
	CategoryTransferSpend   Category = "transfer-spend"
	CategoryWithdrawal      Category = "withdrawal"
	CategoryOtherSpend      Category = "other-spend"

	// CategoryUnclassified absorbs note-bearing spend when the classifier is
	// unavailable during cash-flow aggregation.
	CategoryUnclassified Category = "unclassified"
)

// Income buckets. Income notes are never classified.
const (
	CategoryDepositIncome  Category = "deposit-income"
	CategoryTransferIncome Category = "transfer-income"
	CategoryExchangeIncome Category = "exchange-income"
	CategoryOpeningBalance Category = "opening-balance"
	CategoryOtherIncome    Category = "other-income"
)

// DiscretionaryCategories returns the fixed classifier/budget category set,
// in presentation order.
func DiscretionaryCategories() []Category {
	return []Category{
		CategoryFoodDining,
		CategoryTransport,
		CategoryEntertainment,
		CategoryShopping,
		CategoryBills,
		CategoryHousehold,
		CategoryOther,
	}
}

// CategoryFromLabel maps a classifier label back onto the discretionary set.
// Unknown labels land in CategoryOther.
func CategoryFromLabel(label string) Category {
	for _, c := range DiscretionaryCategories() {
		if string(c) == label {
			return c
		}
	}
	return CategoryOther
}

// IsAssetMovement reports whether a spend category represents an asset
// transfer rather than discretionary consumption. Asset movements are
// excluded from suggestion ranking.
func IsAssetMovement(c Category) bool {
	switch c {
	case CategoryTransferSpend, CategoryExchangeSpend, CategoryWithdrawal, CategoryAdminAdjustment:
		return true
	}
	return false
}

// StructuralSpendCategory resolves the spend bucket of a negative-amount
// entry from its metadata alone. ok == false means the entry carries a
// free-text note and must go through the classifier instead.
func StructuralSpendCategory(t *Transaction) (Category, bool) {
	switch {
	case t.IsAdminTagged():
		return CategoryAdminAdjustment, true
	case t.Type == TransactionTypeExchangeOut:
		return CategoryExchangeSpend, true
	case t.Note != "":
		return "", false
	case t.Type == TransactionTypeTransferOut:
		return CategoryTransferSpend, true
	case t.Type == TransactionTypeWithdraw:
		return CategoryWithdrawal, true
	}
	return CategoryOtherSpend, true
}

// IncomeCategory resolves the income bucket of a positive-amount entry.
func IncomeCategory(t *Transaction) Category {
	switch {
	case t.IsAdminTagged():
		return CategoryAdminAdjustment
	case t.Type == TransactionTypeDeposit:
		return CategoryDepositIncome
	case t.Type == TransactionTypeTransferIn:
		return CategoryTransferIncome
	case t.Type == TransactionTypeExchangeIn:
		return CategoryExchangeIncome
	case t.Type == TransactionTypeOpen:
		return CategoryOpeningBalance
	}
	return CategoryOtherIncome
}
