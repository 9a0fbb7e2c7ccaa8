package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

var ErrDuplicateCategory = errors.New("duplicate budget category")

// BudgetRepository keeps budgets in insertion order with unique categories.
type BudgetRepository struct {
	mu    sync.Mutex
	store storage.Store
	items []core.Budget
}

func NewBudgetRepository(store storage.Store) *BudgetRepository {
	return &BudgetRepository{store: store}
}

// SeedBudgets returns the demo budgets written on first start.
func SeedBudgets() []core.Budget {
	return []core.Budget{
		{Category: "Food & Dining", Limit: decimal.NewFromInt(500)},
		{Category: "Transportation", Limit: decimal.NewFromInt(300)},
		{Category: "Entertainment", Limit: decimal.NewFromInt(200)},
		{Category: "Shopping", Limit: decimal.NewFromInt(400)},
		{Category: "Bills & Utilities", Limit: decimal.NewFromInt(600)},
		{Category: "Healthcare", Limit: decimal.NewFromInt(250)},
	}
}

func (r *BudgetRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok, err := r.store.Get(ctx, storage.KeyBudgets)
	if err != nil {
		return fmt.Errorf("read budgets: %w", err)
	}
	if !ok {
		seed := SeedBudgets()
		if err := r.persist(ctx, seed); err != nil {
			return fmt.Errorf("seed budgets: %w", err)
		}
		r.items = seed
		return nil
	}

	items, err := decodeBudgets(raw)
	if err != nil {
		return fmt.Errorf("decode stored budgets: %w", err)
	}
	r.items = items
	return nil
}

func (r *BudgetRepository) List() []core.Budget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// ReplaceAll swaps the whole set. Nothing changes when validation or
// persistence fails.
func (r *BudgetRepository) ReplaceAll(ctx context.Context, budgets []core.Budget) error {
	seen := make(map[string]struct{}, len(budgets))
	for _, b := range budgets {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("budget %q: %w", b.Category, err)
		}
		if _, dup := seen[b.Category]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, b.Category)
		}
		seen[b.Category] = struct{}{}
	}
	next := slices.Clone(budgets)
	if next == nil {
		next = []core.Budget{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.items = next
	return nil
}

func (r *BudgetRepository) persist(ctx context.Context, items []core.Budget) error {
	raw, err := encodeBudgets(items)
	if err != nil {
		return fmt.Errorf("encode budgets: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyBudgets, raw); err != nil {
		return fmt.Errorf("persist budgets: %w", err)
	}
	return nil
}
