package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

const recentTransactions = 10

type BudgetRow struct {
	Category   string
	Limit      decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage decimal.Decimal
	Status     Status
	OverBudget bool
}

// Overview is the dashboard for the month of the reference date.
type Overview struct {
	Year            int
	Month           time.Month
	TotalSpent      decimal.Decimal
	TotalBudget     decimal.Decimal
	RemainingBudget decimal.Decimal
	PercentChange   decimal.Decimal
	Budgets         []BudgetRow
	Recent          []core.Expense
}

type CategoryShare struct {
	Category string
	Amount   decimal.Decimal
	Share    decimal.Decimal // percent of the month total
}

// Report is the analytics page for the month of the reference date.
type Report struct {
	Year         int
	Month        time.Month
	TotalSpent   decimal.Decimal
	Breakdown    []CategoryShare
	Trend        []TrendPoint
	Daily        []DayAmount
	Top          []CategoryAmount
	AverageDaily decimal.Decimal
	Projected    decimal.Decimal
	UsagePercent decimal.Decimal
	DaysInMonth  int
	DayOfMonth   int
}

func BuildOverview(expenses []core.Expense, budgets []core.Budget, ref time.Time) Overview {
	current := FilterByMonth(expenses, ref.Year(), ref.Month())
	prev := time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, ref.Location())
	prior := FilterByMonth(expenses, prev.Year(), prev.Month())

	spent := TotalAmount(current)
	budgetTotal := core.SumLimits(budgets)
	breakdown := CategoryBreakdown(current)

	rows := make([]BudgetRow, 0, len(budgets))
	for _, b := range budgets {
		catSpent := SpentIn(breakdown, b.Category)
		pct := PercentOfLimit(catSpent, b.Limit)
		rows = append(rows, BudgetRow{
			Category:   b.Category,
			Limit:      b.Limit,
			Spent:      catSpent,
			Remaining:  Remaining(b.Limit, catSpent),
			Percentage: pct.Round(2),
			Status:     BudgetStatus(catSpent, b.Limit),
			OverBudget: catSpent.GreaterThan(b.Limit),
		})
	}

	recent := current
	if len(recent) > recentTransactions {
		recent = recent[:recentTransactions]
	}

	return Overview{
		Year:            ref.Year(),
		Month:           ref.Month(),
		TotalSpent:      spent,
		TotalBudget:     budgetTotal,
		RemainingBudget: Remaining(budgetTotal, spent),
		PercentChange:   PercentChangeVsPriorMonth(spent, TotalAmount(prior)).Round(2),
		Budgets:         rows,
		Recent:          append([]core.Expense(nil), recent...),
	}
}

func BuildAnalytics(expenses []core.Expense, budgets []core.Budget, ref time.Time) Report {
	current := FilterByMonth(expenses, ref.Year(), ref.Month())
	spent := TotalAmount(current)
	breakdown := CategoryBreakdown(current)
	days := DaysInMonth(ref)
	avg := AverageDailySpending(spent, ref.Day())

	shares := make([]CategoryShare, len(breakdown))
	for i, c := range breakdown {
		shares[i] = CategoryShare{
			Category: c.Category,
			Amount:   c.Amount,
			Share:    BudgetUsageRatio(c.Amount, spent).Mul(hundred).Round(2),
		}
	}

	return Report{
		Year:         ref.Year(),
		Month:        ref.Month(),
		TotalSpent:   spent,
		Breakdown:    shares,
		Trend:        MonthlyTrend(expenses, budgets, ref, DefaultTrendMonths),
		Daily:        DailySeries(current, days),
		Top:          TopCategories(breakdown, DefaultTopCategories),
		AverageDaily: avg.Round(2),
		Projected:    ProjectedMonthlySpending(avg, days).Round(2),
		UsagePercent: BudgetUsageRatio(spent, core.SumLimits(budgets)).Mul(hundred).Round(2),
		DaysInMonth:  days,
		DayOfMonth:   ref.Day(),
	}
}
