// Package form turns the raw fields of the transaction form into a
// validated core.TransactionInput and picks the date a fresh form starts on.
package form

import (
	"errors"
	"strings"

	"pocketbook/internal/core"
)

// Form holds the field values exactly as the user typed or selected them.
type Form struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Errors collects one message per rejected field.
type Errors []*core.ValidationError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field errors to errors.Is and errors.As.
func (e Errors) Unwrap() []error {
	out := make([]error, len(e))
	for i, fe := range e {
		out[i] = fe
	}
	return out
}

// Fields maps field names to their messages.
func (e Errors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		out[fe.Field] = fe.Err.Error()
	}
	return out
}

// Parse validates every field and reports all problems at once. The
// description is optional and kept exactly as typed.
func (f Form) Parse() (core.TransactionInput, error) {
	var (
		in   core.TransactionInput
		errs Errors
		err  error
	)

	if in.Type, err = core.ParseType(f.Type); err != nil {
		errs = append(errs, &core.ValidationError{Field: "type", Err: err})
	}
	if in.Amount, err = core.ParseAmount(f.Amount); err != nil {
		errs = append(errs, &core.ValidationError{Field: "amount", Err: err})
	}
	if in.Category, err = core.ParseCategory(f.Category); err != nil {
		errs = append(errs, &core.ValidationError{Field: "category", Err: err})
	}
	if in.Date, err = core.ParseDate(f.Date); err != nil {
		errs = append(errs, &core.ValidationError{Field: "date", Err: err})
	}
	in.Description = f.Description

	if len(errs) > 0 {
		return core.TransactionInput{}, errs
	}
	return in, nil
}

// FromTransaction fills a form with an existing record, for edit mode. The
// amount keeps every stored digit so an untouched edit changes nothing.
func FromTransaction(t core.Transaction) Form {
	return Form{
		Type:        t.Type.String(),
		Amount:      t.Amount.String(),
		Category:    t.Category.String(),
		Date:        t.Date.String(),
		Description: t.Description,
	}
}

// DefaultDate is the date a fresh form starts on: today when no month or
// the current month is selected, otherwise the first day of the selection.
func DefaultDate(selected core.YearMonth, today core.Date) core.Date {
	if selected.IsZero() || selected.Contains(today) {
		return today
	}
	return selected.FirstDay()
}

// AsErrors extracts field errors from err, wrapping a lone
// *core.ValidationError when needed.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	var fe *core.ValidationError
	if errors.As(err, &fe) {
		return Errors{fe}, true
	}
	return nil, false
}
