package http

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"financeflow/internal/budgetedit"
	"financeflow/internal/core"
	"financeflow/internal/repository"
	"financeflow/internal/session"
)

const dateLayout = "2006-01-02"

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders an amount for display, e.g. "$1,234.50" or "-$3.00".
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Abs().Float64()
	s := moneyPrinter.Sprintf("$%.2f", f)
	if d.Round(2).IsNegative() {
		return "-" + s
	}
	return s
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseDate parses a YYYY-MM-DD date in loc. An empty string means today.
func parseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t, nil
}

// isValidationError reports whether err was caused by user input.
func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidLimit,
		core.ErrEmptyCategory,
		core.ErrEmptyDescription,
		core.ErrDescriptionLong,
		core.ErrInvalidDate,
		repository.ErrDuplicateCategory,
		budgetedit.ErrCategoryExists,
		session.ErrEmptyEmail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// validationMessage turns a validation error into a message for the user.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a non-negative number"
	case errors.Is(err, core.ErrInvalidLimit):
		return "Budget limit must be a valid amount"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrEmptyDescription):
		return "Description is required"
	case errors.Is(err, core.ErrDescriptionLong):
		return "Description must be at most 200 characters"
	case errors.Is(err, core.ErrInvalidDate):
		return "Date must be in YYYY-MM-DD format"
	case errors.Is(err, repository.ErrDuplicateCategory), errors.Is(err, budgetedit.ErrCategoryExists):
		return "Budget for this category already exists"
	case errors.Is(err, session.ErrEmptyEmail):
		return "Email is required"
	default:
		return "Invalid input"
	}
}
