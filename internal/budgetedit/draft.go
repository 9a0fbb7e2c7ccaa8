// Package budgetedit stages budget changes before they are committed as a
// whole replacement set.
package budgetedit

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

var (
	ErrCategoryExists  = errors.New("budget for category already exists")
	ErrUnknownCategory = errors.New("no budget for category")
)

// Committer persists a full budget set.
type Committer interface {
	List() []core.Budget
	ReplaceAll(ctx context.Context, budgets []core.Budget) error
}

// Draft is a working copy of the budget set. It is safe for concurrent use.
type Draft struct {
	mu    sync.Mutex
	repo  Committer
	items []core.Budget
}

func New(repo Committer) *Draft {
	return &Draft{repo: repo, items: repo.List()}
}

// Add appends a new budget. The limit must be positive.
func (d *Draft) Add(category string, limit decimal.Decimal) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return core.ErrEmptyCategory
	}
	if !limit.IsPositive() {
		return core.ErrInvalidLimit
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOf(category) >= 0 {
		return ErrCategoryExists
	}
	d.items = append(d.items, core.Budget{Category: category, Limit: limit})
	return nil
}

// UpdateLimit changes an existing limit. Zero is allowed, negative is not.
func (d *Draft) UpdateLimit(category string, limit decimal.Decimal) error {
	if limit.IsNegative() {
		return core.ErrInvalidLimit
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexOf(category)
	if i < 0 {
		return ErrUnknownCategory
	}
	d.items[i].Limit = limit
	return nil
}

// Remove drops a category from the draft; unknown categories are ignored.
func (d *Draft) Remove(category string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = slices.DeleteFunc(d.items, func(b core.Budget) bool { return b.Category == category })
}

func (d *Draft) Total() decimal.Decimal {
	d.mu.Lock()
	defer d.mu.Unlock()
	return core.SumLimits(d.items)
}

// AvailableCategories lists catalogue categories that have no budget yet.
func (d *Draft) AvailableCategories() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(core.BudgetCategories))
	for _, c := range core.BudgetCategories {
		if d.indexOf(c) < 0 {
			out = append(out, c)
		}
	}
	return out
}

func (d *Draft) Budgets() []core.Budget {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.items)
}

// Commit replaces the stored budget set with the draft.
func (d *Draft) Commit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.repo.ReplaceAll(ctx, slices.Clone(d.items))
}

// Discard resets the draft to the committed set.
func (d *Draft) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = d.repo.List()
}

func (d *Draft) indexOf(category string) int {
	return slices.IndexFunc(d.items, func(b core.Budget) bool { return b.Category == category })
}
