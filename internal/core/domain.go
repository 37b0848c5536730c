package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// DateLayout is the textual form of a Date, as produced by an HTML date input.
const DateLayout = "2006-01-02"

// MonthLayout is the textual form of a YearMonth.
const MonthLayout = "2006-01"

type (
	// Type tells whether a transaction adds to or subtracts from the balance.
	Type string

	// Category is a label from the closed set returned by Categories.
	Category string

	Date struct {
		time.Time
	}

	YearMonth struct {
		Year  int
		Month time.Month
	}

	// TransactionInput carries every user-editable field of a transaction.
	// It is produced by the form layer after validation.
	TransactionInput struct {
		Type        Type
		Amount      decimal.Decimal
		Category    Category
		Date        Date
		Description string
	}

	Transaction struct {
		ID string
		TransactionInput
	}
)

var categories = []Category{
	"Salary",
	"Freelance",
	"Investment",
	"Gift",
	"Food",
	"Travel",
	"Transport",
	"Shopping",
	"Entertainment",
	"Bills",
	"Rent",
	"Health",
	"Education",
	"Other",
}

// Categories returns the allowed category labels in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Types returns the allowed transaction types.
func Types() []Type {
	return []Type{Income, Expense}
}

// ParseType maps user input onto a Type.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", ErrInvalidType
}

func (t Type) IsValid() bool {
	return t == Income || t == Expense
}

func (t Type) String() string {
	return string(t)
}

// ParseCategory matches s case-insensitively against the allowed set and
// returns the canonical spelling.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (c Category) IsValid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM prefix of the date's textual form.
func (d Date) MonthKey() string {
	s := d.String()
	if len(s) < len(MonthLayout) {
		return ""
	}
	return s[:len(MonthLayout)]
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// ParseYearMonth parses a month selector value in YYYY-MM format.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, ErrInvalidMonth
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// CurrentYearMonth returns the month containing now.
func CurrentYearMonth(now time.Time) YearMonth {
	return YearMonth{Year: now.Year(), Month: now.Month()}
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// FirstDay returns the first calendar day of the month.
func (ym YearMonth) FirstDay() Date {
	return NewDate(ym.Year, int(ym.Month), 1)
}

// Contains reports whether d falls within the month.
func (ym YearMonth) Contains(d Date) bool {
	return d.MonthKey() == ym.String()
}

// Validate checks the invariants every stored transaction must hold.
// The form layer reports friendlier messages before this is ever reached.
func (in TransactionInput) Validate() error {
	if !in.Type.IsValid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if strings.TrimSpace(string(in.Category)) == "" {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	if err := in.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	return nil
}

// IsIncome is a convenience used by the aggregator and the adapters.
func (t Transaction) IsIncome() bool {
	return t.Type == Income
}
