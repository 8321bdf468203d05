package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

func TestExpenseRecorded(t *testing.T) {
	e := &models.Expense{ID: "e1", GroupID: "g1", PayerID: "u1", Amount: 12.5, Currency: models.CAD, CreatedAt: 1700000000}
	event := ExpenseRecorded(e)

	if event.Type != TypeExpenseRecorded {
		t.Errorf("Type = %q, want %q", event.Type, TypeExpenseRecorded)
	}
	if event.PayeeID != "" {
		t.Errorf("expense events have no payee, got %q", event.PayeeID)
	}
	if !event.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Timestamp = %v", event.Timestamp)
	}
}

func TestSettlementRecordedRoundTrip(t *testing.T) {
	s := &models.Settlement{ID: "s1", GroupID: "g1", PayerID: "u2", PayeeID: "u1", Amount: 40, Currency: models.INR, CreatedAt: 1700000100}

	body, err := SettlementRecorded(s).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var got Event
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("published body is not an Event: %v", err)
	}

	if got.Type != TypeSettlementRecorded || got.PayerID != "u2" || got.PayeeID != "u1" {
		t.Errorf("decoded event mismatch: %+v", got)
	}
	if got.Amount != 40 || got.Currency != models.INR {
		t.Errorf("amount mismatch: %v %s", got.Amount, got.Currency)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), &Event{Type: TypeExpenseRecorded}); err != nil {
		t.Errorf("Nop.Publish returned %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Nop.Close returned %v", err)
	}
}
