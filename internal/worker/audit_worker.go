// Package worker consumes ledger events published by the API server.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"financeflow/internal/amqp"
	applog "financeflow/internal/log"
)

// AuditSnapshot summarises the events seen since the worker started.
type AuditSnapshot struct {
	Counts       map[string]int
	AmountsAdded decimal.Decimal
	LastUser     string
}

// AuditWorker writes every ledger event to the audit log and keeps running
// totals. Events are notifications only; no ledger state is rebuilt here.
type AuditWorker struct {
	logger *applog.Logger

	mu           sync.Mutex
	counts       map[string]int
	amountsAdded decimal.Decimal
	lastUser     string
}

func NewAuditWorker(logger *applog.Logger) *AuditWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &AuditWorker{
		logger: logger.WithComponent(applog.ComponentAMQP),
		counts: make(map[string]int),
	}
}

// HandleLedgerEvent records one event. Malformed amounts are logged and the
// event is still counted; only a nil event is an error.
func (w *AuditWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	if event == nil {
		return errors.New("nil ledger event")
	}

	w.mu.Lock()
	w.counts[event.Type]++
	switch event.Type {
	case amqp.EventExpenseAdded:
		if amount, err := decimal.NewFromString(event.Amount); err == nil {
			w.amountsAdded = w.amountsAdded.Add(amount)
		} else {
			w.logger.WarnContext(ctx, "Ledger event with unreadable amount",
				applog.FieldExpenseID, event.ExpenseID,
				applog.FieldAmount, event.Amount)
		}
	case amqp.EventSessionLogin:
		w.lastUser = event.User
	case amqp.EventSessionLogout:
		w.lastUser = ""
	}
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Ledger event",
		"type", event.Type,
		applog.FieldExpenseID, event.ExpenseID,
		applog.FieldAmount, event.Amount,
		applog.FieldCategory, event.Category,
		applog.FieldBudgetCount, event.BudgetCount,
		applog.FieldUserEmail, event.User,
		"timestamp", event.Timestamp)
	return nil
}

func (w *AuditWorker) Snapshot() AuditSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	counts := make(map[string]int, len(w.counts))
	for k, v := range w.counts {
		counts[k] = v
	}
	return AuditSnapshot{Counts: counts, AmountsAdded: w.amountsAdded, LastUser: w.lastUser}
}
