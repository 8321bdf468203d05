// Package events publishes ledger changes to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// Event types, used as AMQP routing keys.
const (
	TypeExpenseRecorded    = "expense.recorded"
	TypeSettlementRecorded = "settlement.recorded"
)

// Event is a lightweight notice that a ledger record was written. Consumers
// fetch full records from the service; amounts are included for convenience.
type Event struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	PayerID   string          `json:"payer_id"`
	PayeeID   string          `json:"payee_id,omitempty"`
	Amount    float64         `json:"amount"`
	Currency  models.Currency `json:"currency"`
	Timestamp time.Time       `json:"timestamp"`
}

// ExpenseRecorded builds the event for a newly created expense.
func ExpenseRecorded(e *models.Expense) *Event {
	return &Event{
		Type:      TypeExpenseRecorded,
		ID:        e.ID,
		GroupID:   e.GroupID,
		PayerID:   e.PayerID,
		Amount:    e.Amount,
		Currency:  e.Currency,
		Timestamp: time.Unix(e.CreatedAt, 0).UTC(),
	}
}

// SettlementRecorded builds the event for a newly recorded settlement.
func SettlementRecorded(s *models.Settlement) *Event {
	return &Event{
		Type:      TypeSettlementRecorded,
		ID:        s.ID,
		GroupID:   s.GroupID,
		PayerID:   s.PayerID,
		PayeeID:   s.PayeeID,
		Amount:    s.Amount,
		Currency:  s.Currency,
		Timestamp: time.Unix(s.CreatedAt, 0).UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Publishing is best effort: callers log failures
// and carry on, since the ledger record is already stored.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, *Event) error { return nil }
func (Nop) Close() error                          { return nil }
