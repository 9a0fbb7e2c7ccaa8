// Package analytics derives totals, breakdowns, trends and projections from
// expense and budget snapshots. Every function is pure: the reference date is
// always passed in and inputs are never modified.
package analytics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

const (
	DefaultTrendMonths   = 6
	DefaultTopCategories = 5
	// MaxDailySeriesDays caps the daily series; day 31 is never plotted.
	MaxDailySeriesDays = 30
)

type Status string

const (
	StatusOnTrack Status = "on_track"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

var hundred = decimal.NewFromInt(100)

type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

type TrendPoint struct {
	Label  string
	Year   int
	Month  time.Month
	Spent  decimal.Decimal
	Budget decimal.Decimal
}

type DayAmount struct {
	Day    int
	Amount decimal.Decimal
}

// FilterByMonth keeps expenses whose date falls in the given calendar month,
// preserving order.
func FilterByMonth(expenses []core.Expense, year int, month time.Month) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

func TotalAmount(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// CategoryBreakdown sums amounts per category in first-seen order. Only
// categories present in the input get a row; a row may sum to zero.
func CategoryBreakdown(expenses []core.Expense) []CategoryAmount {
	index := map[string]int{}
	var out []CategoryAmount
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryAmount{Category: e.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// SpentIn returns the amount recorded for category in a breakdown, or zero.
func SpentIn(breakdown []CategoryAmount, category string) decimal.Decimal {
	for _, c := range breakdown {
		if c.Category == category {
			return c.Amount
		}
	}
	return decimal.Zero
}

// MonthlyTrend covers the monthsBack calendar months ending with the
// reference month, oldest first. The budget column is the current budget
// total for every month.
func MonthlyTrend(expenses []core.Expense, budgets []core.Budget, ref time.Time, monthsBack int) []TrendPoint {
	if monthsBack <= 0 {
		return nil
	}
	budgetTotal := core.SumLimits(budgets)
	out := make([]TrendPoint, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		// time.Date normalizes month underflow into the prior year
		m := time.Date(ref.Year(), ref.Month()-time.Month(i), 1, 0, 0, 0, 0, ref.Location())
		out = append(out, TrendPoint{
			Label:  m.Format("Jan"),
			Year:   m.Year(),
			Month:  m.Month(),
			Spent:  TotalAmount(FilterByMonth(expenses, m.Year(), m.Month())).Round(2),
			Budget: budgetTotal,
		})
	}
	return out
}

// DailySeries sums expenses per day of month for days 1..min(daysInMonth, 30).
func DailySeries(expensesThisMonth []core.Expense, daysInMonth int) []DayAmount {
	days := min(daysInMonth, MaxDailySeriesDays)
	if days <= 0 {
		return nil
	}
	out := make([]DayAmount, days)
	for d := range out {
		out[d] = DayAmount{Day: d + 1, Amount: decimal.Zero}
	}
	for _, e := range expensesThisMonth {
		if d := e.Date.Day(); d <= days {
			out[d-1].Amount = out[d-1].Amount.Add(e.Amount)
		}
	}
	return out
}

// TopCategories sorts by descending amount, keeping first-seen order on
// ties, and truncates to n.
func TopCategories(breakdown []CategoryAmount, n int) []CategoryAmount {
	out := slices.Clone(breakdown)
	slices.SortStableFunc(out, func(a, b CategoryAmount) int {
		return b.Amount.Cmp(a.Amount)
	})
	if n < 0 {
		n = 0
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func AverageDailySpending(totalThisMonth decimal.Decimal, dayOfMonth int) decimal.Decimal {
	if dayOfMonth <= 0 {
		return decimal.Zero
	}
	return totalThisMonth.Div(decimal.NewFromInt(int64(dayOfMonth)))
}

func ProjectedMonthlySpending(avgDaily decimal.Decimal, daysInMonth int) decimal.Decimal {
	return avgDaily.Mul(decimal.NewFromInt(int64(daysInMonth)))
}

// BudgetUsageRatio is spent/budget, or zero without a budget.
func BudgetUsageRatio(totalSpent, totalBudget decimal.Decimal) decimal.Decimal {
	if totalBudget.IsZero() {
		return decimal.Zero
	}
	return totalSpent.Div(totalBudget)
}

// Remaining may be negative when a category is over budget.
func Remaining(limit, spent decimal.Decimal) decimal.Decimal {
	return limit.Sub(spent)
}

// PercentOfLimit is spent/limit*100, or zero for a zero limit.
func PercentOfLimit(spent, limit decimal.Decimal) decimal.Decimal {
	return BudgetUsageRatio(spent, limit).Mul(hundred)
}

func StatusBand(percentageOfLimit decimal.Decimal) Status {
	switch {
	case percentageOfLimit.GreaterThan(hundred):
		return StatusOver
	case percentageOfLimit.GreaterThan(decimal.NewFromInt(80)):
		return StatusWarning
	default:
		return StatusOnTrack
	}
}

// BudgetStatus bands a category against its limit. Any spending against a
// zero limit is over budget even though its percentage reads 0.
func BudgetStatus(spent, limit decimal.Decimal) Status {
	if limit.IsZero() && spent.IsPositive() {
		return StatusOver
	}
	return StatusBand(PercentOfLimit(spent, limit))
}

func PercentChangeVsPriorMonth(current, prior decimal.Decimal) decimal.Decimal {
	if prior.IsZero() {
		return decimal.Zero
	}
	return current.Sub(prior).Div(prior).Mul(hundred)
}

// DaysInMonth returns the number of days in the month of t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
