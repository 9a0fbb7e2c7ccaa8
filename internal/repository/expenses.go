// Package repository holds the in-memory expense and budget collections and
// mirrors every change to a storage.Store.
package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

// ExpenseRepository keeps expenses newest first.
type ExpenseRepository struct {
	mu    sync.Mutex
	store storage.Store
	items []core.Expense

	newID func() string
	clock func() time.Time
}

func NewExpenseRepository(store storage.Store) *ExpenseRepository {
	return &ExpenseRepository{
		store: store,
		newID: uuid.NewString,
		clock: time.Now,
	}
}

// SeedExpenses returns the demo expenses written on first start.
func SeedExpenses(now time.Time) []core.Expense {
	return []core.Expense{
		{ID: "1", Amount: decimal.RequireFromString("45.50"), Category: "Food & Dining", Description: "Grocery shopping", Date: now},
		{ID: "2", Amount: decimal.RequireFromString("120.00"), Category: "Transportation", Description: "Gas", Date: now.Add(-24 * time.Hour)},
		{ID: "3", Amount: decimal.RequireFromString("25.00"), Category: "Entertainment", Description: "Movie tickets", Date: now.Add(-48 * time.Hour)},
	}
}

// Load adopts the stored sequence, seeding and persisting the demo data when
// nothing is stored yet.
func (r *ExpenseRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok, err := r.store.Get(ctx, storage.KeyExpenses)
	if err != nil {
		return fmt.Errorf("read expenses: %w", err)
	}
	if !ok {
		seed := SeedExpenses(r.clock())
		if err := r.persist(ctx, seed); err != nil {
			return fmt.Errorf("seed expenses: %w", err)
		}
		r.items = seed
		return nil
	}

	items, err := decodeExpenses(raw)
	if err != nil {
		return fmt.Errorf("decode stored expenses: %w", err)
	}
	r.items = items
	return nil
}

// Add records a new expense at the front of the sequence. The in-memory state
// only changes once the store accepted the new sequence.
func (r *ExpenseRepository) Add(ctx context.Context, amount decimal.Decimal, category, description string, date time.Time) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := core.Expense{
		ID:          r.newID(),
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	}
	next := make([]core.Expense, 0, len(r.items)+1)
	next = append(next, e)
	next = append(next, r.items...)

	if err := r.persist(ctx, next); err != nil {
		return core.Expense{}, err
	}
	r.items = next
	return e, nil
}

// Remove deletes the expense with id. Unknown ids are a no-op, but the
// sequence is still written back.
func (r *ExpenseRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(r.items), func(e core.Expense) bool { return e.ID == id })
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.items = next
	return nil
}

// List returns a copy, newest first.
func (r *ExpenseRepository) List() []core.Expense {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

func (r *ExpenseRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *ExpenseRepository) persist(ctx context.Context, items []core.Expense) error {
	raw, err := encodeExpenses(items)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyExpenses, raw); err != nil {
		return fmt.Errorf("persist expenses: %w", err)
	}
	return nil
}
