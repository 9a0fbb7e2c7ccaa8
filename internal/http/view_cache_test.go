package http

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

// racingLedger lands a mutation while the first view is being built.
type racingLedger struct {
	Ledger
	onExpenses func()
}

func (l *racingLedger) Expenses() []core.Expense {
	snapshot := l.Ledger.Expenses()
	if l.onExpenses != nil {
		f := l.onExpenses
		l.onExpenses = nil
		f()
	}
	return snapshot
}

func TestViewBuiltBeforeMutationIsNotCached(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	ledger := srv.ledger
	mutate := func(t *testing.T) {
		_, err := ledger.AddExpense(context.Background(), core.ExpenseInput{
			Amount:      decimal.RequireFromString("30"),
			Category:    "Food & Dining",
			Description: "Lunch",
			Date:        fixedNow,
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		srv.invalidateViews()
	}

	t.Run("overview", func(t *testing.T) {
		srv.ledger = &racingLedger{Ledger: ledger, onExpenses: func() { mutate(t) }}
		stale := srv.getOverview(fixedNow)
		key := cacheKey(fixedNow.Year(), fixedNow.Month())
		if _, ok := srv.overviewCache.Get(key); ok {
			t.Fatal("overview built from a pre-mutation snapshot was cached")
		}
		fresh := srv.getOverview(fixedNow)
		if !fresh.TotalSpent.Equal(stale.TotalSpent.Add(decimal.NewFromInt(30))) {
			t.Fatalf("fresh total = %s, stale total = %s", fresh.TotalSpent, stale.TotalSpent)
		}
		if _, ok := srv.overviewCache.Get(key); !ok {
			t.Fatal("an undisturbed build should be cached")
		}
	})

	t.Run("report", func(t *testing.T) {
		srv.ledger = &racingLedger{Ledger: ledger, onExpenses: func() { mutate(t) }}
		stale := srv.getReport(fixedNow)
		key := cacheKey(fixedNow.Year(), fixedNow.Month())
		if _, ok := srv.reportCache.Get(key); ok {
			t.Fatal("report built from a pre-mutation snapshot was cached")
		}
		fresh := srv.getReport(fixedNow)
		if !fresh.TotalSpent.Equal(stale.TotalSpent.Add(decimal.NewFromInt(30))) {
			t.Fatalf("fresh total = %s, stale total = %s", fresh.TotalSpent, stale.TotalSpent)
		}
	})
}
