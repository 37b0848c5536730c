package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
)

// record is the wire shape of one transaction inside the slot payload.
// Amounts travel as JSON numbers.
type record struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

// Encode serializes the collection as a JSON array of records.
func Encode(transactions []core.Transaction) ([]byte, error) {
	records := make([]record, len(transactions))
	for i, t := range transactions {
		records[i] = record{
			ID:          t.ID,
			Type:        t.Type.String(),
			Amount:      json.Number(t.Amount.String()),
			Category:    t.Category.String(),
			Date:        t.Date.String(),
			Description: t.Description,
		}
	}
	return json.Marshal(records)
}

// Decode parses a slot payload. A payload that is not a JSON array of
// objects yields core.ErrCorruptPayload. Individual records that break the
// domain invariants (unknown type, non-positive amount, bad date, missing or
// duplicate id) are dropped and counted in skipped.
func Decode(payload []byte) (transactions []core.Transaction, skipped int, err error) {
	var records []*record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", core.ErrCorruptPayload, err)
	}

	transactions = make([]core.Transaction, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil {
			skipped++
			continue
		}
		t, ok := r.toTransaction()
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[t.ID]; dup {
			skipped++
			continue
		}
		seen[t.ID] = struct{}{}
		transactions = append(transactions, t)
	}
	return transactions, skipped, nil
}

func (r *record) toTransaction() (core.Transaction, bool) {
	if strings.TrimSpace(r.ID) == "" {
		return core.Transaction{}, false
	}
	typ := core.Type(r.Type)
	if !typ.IsValid() {
		return core.Transaction{}, false
	}
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Transaction{}, false
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, false
	}
	in := core.TransactionInput{
		Type:        typ,
		Amount:      amount,
		Category:    core.Category(r.Category),
		Date:        date,
		Description: r.Description,
	}
	if in.Validate() != nil {
		return core.Transaction{}, false
	}
	return core.Transaction{ID: r.ID, TransactionInput: in}, true
}
