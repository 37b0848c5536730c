package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/core"
)

func tx(id string, typ core.Type, category string, amount string, date string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID: id,
		TransactionInput: core.TransactionInput{
			Type:     typ,
			Amount:   decimal.RequireFromString(amount),
			Category: core.Category(category),
			Date:     d,
		},
	}
}

func ids(ts []core.Transaction) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestSummarize(t *testing.T) {
	t.Run("empty input is all zeros", func(t *testing.T) {
		s := Summarize(nil)
		assert.True(t, s.Income.IsZero())
		assert.True(t, s.Expense.IsZero())
		assert.True(t, s.Balance.IsZero())
		assert.True(t, s.Positive())
	})

	t.Run("income minus expense", func(t *testing.T) {
		s := Summarize([]core.Transaction{
			tx("1", core.Income, "Salary", "500", "2024-03-01"),
			tx("2", core.Expense, "Food", "200", "2024-03-02"),
		})
		assert.True(t, s.Income.Equal(decimal.NewFromInt(500)))
		assert.True(t, s.Expense.Equal(decimal.NewFromInt(200)))
		assert.True(t, s.Balance.Equal(decimal.NewFromInt(300)))
	})

	t.Run("negative balance and exact decimals", func(t *testing.T) {
		s := Summarize([]core.Transaction{
			tx("1", core.Income, "Gift", "0.1", "2024-03-01"),
			tx("2", core.Income, "Gift", "0.2", "2024-03-01"),
			tx("3", core.Expense, "Rent", "1.3", "2024-03-01"),
		})
		assert.Equal(t, "0.3", s.Income.String())
		assert.Equal(t, "-1", s.Balance.String())
		assert.False(t, s.Positive())
	})
}

func TestGroupByCategory(t *testing.T) {
	got := GroupByCategory([]core.Transaction{
		tx("1", core.Expense, "Food", "100", "2024-03-01"),
		tx("2", core.Expense, "Food", "50", "2024-03-02"),
		tx("3", core.Expense, "Travel", "30", "2024-03-03"),
		tx("4", core.Income, "Salary", "1000", "2024-03-04"),
	})

	assert.Equal(t, []core.Category{"Food", "Travel"}, got.Labels)
	require.Len(t, got.Amounts, 2)
	assert.True(t, got.Amounts[0].Equal(decimal.NewFromInt(150)))
	assert.True(t, got.Amounts[1].Equal(decimal.NewFromInt(30)))

	t.Run("first occurrence order", func(t *testing.T) {
		got := GroupByCategory([]core.Transaction{
			tx("1", core.Expense, "Bills", "1", "2024-03-01"),
			tx("2", core.Expense, "Food", "2", "2024-03-01"),
			tx("3", core.Expense, "Bills", "3", "2024-03-01"),
		})
		assert.Equal(t, []core.Category{"Bills", "Food"}, got.Labels)
		assert.Equal(t, "4", got.Amounts[0].String())
	})

	t.Run("no expenses", func(t *testing.T) {
		got := GroupByCategory([]core.Transaction{tx("1", core.Income, "Salary", "1", "2024-03-01")})
		assert.Equal(t, 0, got.Len())
		assert.NotNil(t, got.Labels)
	})
}

func TestSelectByMonth(t *testing.T) {
	all := []core.Transaction{
		tx("1", core.Expense, "Food", "1", "2024-03-01"),
		tx("2", core.Expense, "Food", "1", "2024-04-01"),
		tx("3", core.Income, "Salary", "1", "2024-03-31"),
		tx("4", core.Expense, "Food", "1", "2023-03-15"),
	}

	assert.Equal(t, []string{"1", "3"}, ids(SelectByMonth(all, "2024-03")))
	assert.Equal(t, all, SelectByMonth(all, ""))
	assert.Empty(t, SelectByMonth(all, "2024-3"))
	assert.Empty(t, SelectByMonth(all, "2025-01"))
}

func TestSortByDateDesc(t *testing.T) {
	in := []core.Transaction{
		tx("a", core.Expense, "Food", "1", "2024-03-01"),
		tx("b", core.Expense, "Food", "1", "2024-03-05"),
		tx("c", core.Expense, "Food", "1", "2024-03-01"),
		tx("d", core.Expense, "Food", "1", "2024-03-05"),
	}
	got := SortByDateDesc(in)

	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(got))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(in), "input must not be reordered")
}

func TestBuild(t *testing.T) {
	all := []core.Transaction{
		tx("1", core.Income, "Salary", "1000", "2024-03-01"),
		tx("2", core.Expense, "Food", "40", "2024-03-10"),
		tx("3", core.Expense, "Rent", "700", "2024-02-01"),
	}

	v := Build(all, "2024-03")
	assert.Equal(t, "2024-03", v.Month)
	assert.Equal(t, []string{"2", "1"}, ids(v.Transactions))
	assert.Equal(t, "960", v.Summary.Balance.String())
	assert.Equal(t, []core.Category{"Food"}, v.ByCategory.Labels)
	assert.False(t, v.Empty())

	assert.True(t, Build(all, "2030-01").Empty())
	assert.Len(t, Build(all, "").Transactions, 3)
}
