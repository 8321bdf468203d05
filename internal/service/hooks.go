package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

// EntryRecorder observes every expense and settlement written.
type EntryRecorder interface {
	RecordEntry(kind string, currency models.Currency, amount float64)
}

// LedgerHooks fans a stored record out to metrics and the event publisher.
// Either may be nil.
type LedgerHooks struct {
	publisher events.Publisher
	recorder  EntryRecorder
}

func NewLedgerHooks(publisher events.Publisher, recorder EntryRecorder) LedgerHooks {
	return LedgerHooks{publisher: publisher, recorder: recorder}
}

// ExpenseRecorded reports a newly stored expense.
func (h LedgerHooks) ExpenseRecorded(ctx context.Context, e *models.Expense) {
	h.recorded(ctx, "expense", events.ExpenseRecorded(e))
}

// SettlementRecorded reports a newly stored settlement.
func (h LedgerHooks) SettlementRecorded(ctx context.Context, s *models.Settlement) {
	h.recorded(ctx, "settlement", events.SettlementRecorded(s))
}

func (h LedgerHooks) recorded(ctx context.Context, kind string, event *events.Event) {
	if h.recorder != nil {
		h.recorder.RecordEntry(kind, event.Currency, event.Amount)
	}
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish ledger event", "type", event.Type, "id", event.ID, "error", err)
	}
}
