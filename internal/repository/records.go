package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

// Amounts are stored as JSON numbers, dates as RFC 3339.
type expenseRecord struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
}

type budgetRecord struct {
	Category string      `json:"category"`
	Limit    json.Number `json:"limit"`
}

func encodeExpenses(items []core.Expense) (string, error) {
	recs := make([]expenseRecord, len(items))
	for i, e := range items {
		recs[i] = expenseRecord{
			ID:          e.ID,
			Amount:      json.Number(e.Amount.String()),
			Category:    e.Category,
			Description: e.Description,
			Date:        e.Date,
		}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeExpenses(raw string) ([]core.Expense, error) {
	var recs []expenseRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, err
	}
	out := make([]core.Expense, len(recs))
	for i, r := range recs {
		amount, err := decimal.NewFromString(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("expense %q amount: %w", r.ID, err)
		}
		out[i] = core.Expense{
			ID:          r.ID,
			Amount:      amount,
			Category:    r.Category,
			Description: r.Description,
			Date:        r.Date,
		}
	}
	return out, nil
}

func encodeBudgets(items []core.Budget) (string, error) {
	recs := make([]budgetRecord, len(items))
	for i, b := range items {
		recs[i] = budgetRecord{Category: b.Category, Limit: json.Number(b.Limit.String())}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeBudgets(raw string) ([]core.Budget, error) {
	var recs []budgetRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, err
	}
	out := make([]core.Budget, len(recs))
	for i, r := range recs {
		limit, err := decimal.NewFromString(r.Limit.String())
		if err != nil {
			return nil, fmt.Errorf("budget %q limit: %w", r.Category, err)
		}
		out[i] = core.Budget{Category: r.Category, Limit: limit}
	}
	return out, nil
}
