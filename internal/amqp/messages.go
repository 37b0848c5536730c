package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/events"
)

// TransactionEventMessage is the body published for every durable mutation.
// Deleted events only carry the id.
type TransactionEventMessage struct {
	Kind        string    `json:"kind"`
	ID          string    `json:"id"`
	Type        string    `json:"type,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	Category    string    `json:"category,omitempty"`
	Date        string    `json:"date,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionEventMessage flattens an event into its wire form.
func NewTransactionEventMessage(e events.Event) *TransactionEventMessage {
	msg := &TransactionEventMessage{
		Kind:      string(e.Kind),
		ID:        e.Transaction.ID,
		Timestamp: e.At,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if e.Kind == events.Deleted {
		return msg
	}
	t := e.Transaction
	msg.Type = t.Type.String()
	msg.Amount = t.Amount.String()
	msg.Category = t.Category.String()
	msg.Date = t.Date.String()
	msg.Description = t.Description
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON decodes a message body and rejects
// messages without a kind or id.
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch events.Kind(msg.Kind) {
	case events.Added, events.Updated, events.Deleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("event without transaction id")
	}
	return &msg, nil
}

// Event rebuilds the domain event. Fields that fail to parse are left zero;
// consumers only display them.
func (m *TransactionEventMessage) Event() events.Event {
	t := core.Transaction{ID: m.ID}
	t.Type = core.Type(m.Type)
	t.Category = core.Category(m.Category)
	t.Description = m.Description
	if m.Amount != "" {
		if amount, err := core.ParseAmount(m.Amount); err == nil {
			t.Amount = amount
		}
	}
	if d, err := core.ParseDate(m.Date); err == nil {
		t.Date = d
	}
	return events.Event{Kind: events.Kind(m.Kind), Transaction: t, At: m.Timestamp}
}
