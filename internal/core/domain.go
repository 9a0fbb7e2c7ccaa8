package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type (
	// Expense is a single recorded spending. It is immutable once created;
	// the only lifecycle event after creation is deletion.
	Expense struct {
		ID          string
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        time.Time
	}

	// Budget is the monthly spending ceiling for one category.
	Budget struct {
		Category string
		Limit    decimal.Decimal
	}

	// ExpenseInput carries the user-submitted fields of a new expense.
	ExpenseInput struct {
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        time.Time
	}

	// User is an entry of the signup log.
	User struct {
		Email    string
		Name     string
		Password string
	}
)

// maxDescriptionLength is counted in characters, not bytes.
const maxDescriptionLength = 200

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidLimit     = errors.New("invalid budget limit")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidDate      = errors.New("invalid date")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
)

// ExpenseCategories are the categories offered when recording an expense.
var ExpenseCategories = []string{
	"Food & Dining",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Other",
}

// BudgetCategories are the categories a budget can be created for.
var BudgetCategories = []string{
	"Food & Dining",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Personal Care",
	"Gifts & Donations",
	"Insurance",
	"Other",
}

func (in ExpenseInput) Validate() error {
	if in.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return ErrDescriptionLong
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.IsNegative() {
		return ErrInvalidLimit
	}
	return nil
}

// SumLimits returns the total of all budget limits.
func SumLimits(budgets []Budget) decimal.Decimal {
	total := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.Limit)
	}
	return total
}
