package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
	"pocketbook/internal/view"
)

type transactionDTO struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

type summaryDTO struct {
	Income   json.Number `json:"income"`
	Expense  json.Number `json:"expense"`
	Balance  json.Number `json:"balance"`
	Positive bool        `json:"positive"`
}

type categoryTotalsDTO struct {
	Labels  []string      `json:"labels"`
	Amounts []json.Number `json:"amounts"`
}

type viewDTO struct {
	Month        string            `json:"month"`
	Empty        bool              `json:"empty"`
	Transactions []transactionDTO  `json:"transactions"`
	Summary      summaryDTO        `json:"summary"`
	ByCategory   categoryTotalsDTO `json:"by_category"`
}

type sessionDTO struct {
	Editing       *string `json:"editing"`
	PendingDelete *string `json:"pending_delete"`
}

// number renders an amount as a JSON number with two decimals.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Type:        t.Type.String(),
		Amount:      number(t.Amount),
		Category:    t.Category.String(),
		Date:        t.Date.String(),
		Description: t.Description,
	}
}

func toViewDTO(v view.View) viewDTO {
	out := viewDTO{
		Month:        v.Month,
		Empty:        v.Empty(),
		Transactions: make([]transactionDTO, len(v.Transactions)),
		Summary: summaryDTO{
			Income:   number(v.Summary.Income),
			Expense:  number(v.Summary.Expense),
			Balance:  number(v.Summary.Balance),
			Positive: v.Summary.Positive(),
		},
		ByCategory: categoryTotalsDTO{
			Labels:  make([]string, v.ByCategory.Len()),
			Amounts: make([]json.Number, v.ByCategory.Len()),
		},
	}
	for i, t := range v.Transactions {
		out.Transactions[i] = toTransactionDTO(t)
	}
	for i, label := range v.ByCategory.Labels {
		out.ByCategory.Labels[i] = label.String()
		out.ByCategory.Amounts[i] = number(v.ByCategory.Amounts[i])
	}
	return out
}

func optional(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}
