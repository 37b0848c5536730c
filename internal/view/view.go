package view

import (
	"slices"

	"pocketbook/internal/core"
)

// View is everything the presentation layer renders for one month selection.
type View struct {
	Month        string
	Transactions []core.Transaction
	Summary      core.Summary
	ByCategory   core.CategoryTotals
}

// Build filters all by monthKey and computes the list, summary, and chart data.
func Build(all []core.Transaction, monthKey string) View {
	selected := SelectByMonth(all, monthKey)
	return View{
		Month:        monthKey,
		Transactions: SortByDateDesc(selected),
		Summary:      Summarize(selected),
		ByCategory:   GroupByCategory(selected),
	}
}

// Clone returns a copy that shares no slices with v.
func (v View) Clone() View {
	v.Transactions = slices.Clone(v.Transactions)
	v.ByCategory.Labels = slices.Clone(v.ByCategory.Labels)
	v.ByCategory.Amounts = slices.Clone(v.ByCategory.Amounts)
	return v
}

// Empty reports whether there is nothing to list.
func (v View) Empty() bool {
	return len(v.Transactions) == 0
}
