package view

import (
	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
)

// Summarize totals income and expense and derives the balance.
// No rounding is applied.
func Summarize(transactions []core.Transaction) core.Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range transactions {
		if t.IsIncome() {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return core.Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// GroupByCategory sums expense amounts per category. Labels appear in the
// order each category is first seen; income is ignored.
func GroupByCategory(transactions []core.Transaction) core.CategoryTotals {
	totals := core.CategoryTotals{
		Labels:  []core.Category{},
		Amounts: []decimal.Decimal{},
	}
	index := make(map[core.Category]int)
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		i, seen := index[t.Category]
		if !seen {
			index[t.Category] = len(totals.Labels)
			totals.Labels = append(totals.Labels, t.Category)
			totals.Amounts = append(totals.Amounts, t.Amount)
			continue
		}
		totals.Amounts[i] = totals.Amounts[i].Add(t.Amount)
	}
	return totals
}
