package core

import "github.com/shopspring/decimal"

// Summary holds the running totals for a set of transactions.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// Positive reports whether the balance is zero or above.
func (s Summary) Positive() bool {
	return !s.Balance.IsNegative()
}

// CategoryTotals holds expense totals grouped by category as two parallel
// slices, aligned by index, the shape a chart dataset expects.
type CategoryTotals struct {
	Labels  []Category
	Amounts []decimal.Decimal
}

// Len returns the number of categories.
func (c CategoryTotals) Len() int {
	return len(c.Labels)
}
