// Package view derives the display data for a period: the month filter,
// the summary and category aggregations, and the presentation order.
// Every function here is pure and leaves its input untouched.
package view

import (
	"sort"

	"pocketbook/internal/core"
)

// SelectByMonth returns the transactions whose date falls in the month
// identified by monthKey (YYYY-MM). An empty key selects everything and
// returns all unchanged.
func SelectByMonth(all []core.Transaction, monthKey string) []core.Transaction {
	if monthKey == "" {
		return all
	}
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if t.Date.MonthKey() == monthKey {
			out = append(out, t)
		}
	}
	return out
}

// SortByDateDesc returns a copy of transactions ordered newest first.
// Transactions sharing a date keep their relative insertion order.
func SortByDateDesc(transactions []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
