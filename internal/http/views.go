package http

import (
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/analytics"
	"financeflow/internal/core"
)

// money carries the exact amount alongside its display form.
type money struct {
	Value     string `json:"value"`
	Formatted string `json:"formatted"`
}

func newMoney(d decimal.Decimal) money {
	return money{Value: d.StringFixed(2), Formatted: formatMoney(d)}
}

type expenseJSON struct {
	ID          string `json:"id"`
	Amount      money  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Amount:      newMoney(e.Amount),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.Format(dateLayout),
	}
}

func toExpensesJSON(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseJSON(e)
	}
	return out
}

type budgetJSON struct {
	Category string `json:"category"`
	Limit    money  `json:"limit"`
}

func toBudgetsJSON(budgets []core.Budget) []budgetJSON {
	out := make([]budgetJSON, len(budgets))
	for i, b := range budgets {
		out[i] = budgetJSON{Category: b.Category, Limit: newMoney(b.Limit)}
	}
	return out
}

type budgetsJSON struct {
	Budgets []budgetJSON `json:"budgets"`
	Total   money        `json:"total"`
}

type draftJSON struct {
	Budgets   []budgetJSON `json:"budgets"`
	Total     money        `json:"total"`
	Available []string     `json:"availableCategories"`
}

type budgetRowJSON struct {
	Category   string `json:"category"`
	Limit      money  `json:"limit"`
	Spent      money  `json:"spent"`
	Remaining  money  `json:"remaining"`
	Percentage string `json:"percentage"`
	Status     string `json:"status"`
	OverBudget bool   `json:"overBudget"`
}

type overviewJSON struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	Label           string          `json:"label"`
	TotalSpent      money           `json:"totalSpent"`
	TotalBudget     money           `json:"totalBudget"`
	RemainingBudget money           `json:"remainingBudget"`
	PercentChange   string          `json:"percentChange"`
	Budgets         []budgetRowJSON `json:"budgets"`
	Recent          []expenseJSON   `json:"recentTransactions"`
}

func toOverviewJSON(ov analytics.Overview) overviewJSON {
	rows := make([]budgetRowJSON, len(ov.Budgets))
	for i, b := range ov.Budgets {
		rows[i] = budgetRowJSON{
			Category:   b.Category,
			Limit:      newMoney(b.Limit),
			Spent:      newMoney(b.Spent),
			Remaining:  newMoney(b.Remaining),
			Percentage: b.Percentage.StringFixed(2),
			Status:     string(b.Status),
			OverBudget: b.OverBudget,
		}
	}
	return overviewJSON{
		Year:            ov.Year,
		Month:           int(ov.Month),
		Label:           monthLabel(ov.Year, ov.Month),
		TotalSpent:      newMoney(ov.TotalSpent),
		TotalBudget:     newMoney(ov.TotalBudget),
		RemainingBudget: newMoney(ov.RemainingBudget),
		PercentChange:   ov.PercentChange.StringFixed(2),
		Budgets:         rows,
		Recent:          toExpensesJSON(ov.Recent),
	}
}

type categoryShareJSON struct {
	Category string `json:"category"`
	Amount   money  `json:"amount"`
	Share    string `json:"share"`
}

type categoryAmountJSON struct {
	Category string `json:"category"`
	Amount   money  `json:"amount"`
}

type trendPointJSON struct {
	Label  string `json:"label"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Spent  money  `json:"spent"`
	Budget money  `json:"budget"`
}

type dayAmountJSON struct {
	Day    int   `json:"day"`
	Amount money `json:"amount"`
}

type reportJSON struct {
	Year         int                  `json:"year"`
	Month        int                  `json:"month"`
	Label        string               `json:"label"`
	TotalSpent   money                `json:"totalSpent"`
	Breakdown    []categoryShareJSON  `json:"categoryBreakdown"`
	Trend        []trendPointJSON     `json:"monthlyTrend"`
	Daily        []dayAmountJSON      `json:"dailySpending"`
	Top          []categoryAmountJSON `json:"topCategories"`
	AverageDaily money                `json:"averageDailySpending"`
	Projected    money                `json:"projectedMonthlySpending"`
	UsagePercent string               `json:"budgetUsagePercent"`
	DaysInMonth  int                  `json:"daysInMonth"`
	DayOfMonth   int                  `json:"dayOfMonth"`
}

func toReportJSON(rep analytics.Report) reportJSON {
	breakdown := make([]categoryShareJSON, len(rep.Breakdown))
	for i, c := range rep.Breakdown {
		breakdown[i] = categoryShareJSON{Category: c.Category, Amount: newMoney(c.Amount), Share: c.Share.StringFixed(2)}
	}
	trend := make([]trendPointJSON, len(rep.Trend))
	for i, p := range rep.Trend {
		trend[i] = trendPointJSON{
			Label:  p.Label,
			Year:   p.Year,
			Month:  int(p.Month),
			Spent:  newMoney(p.Spent),
			Budget: newMoney(p.Budget),
		}
	}
	daily := make([]dayAmountJSON, len(rep.Daily))
	for i, d := range rep.Daily {
		daily[i] = dayAmountJSON{Day: d.Day, Amount: newMoney(d.Amount)}
	}
	top := make([]categoryAmountJSON, len(rep.Top))
	for i, c := range rep.Top {
		top[i] = categoryAmountJSON{Category: c.Category, Amount: newMoney(c.Amount)}
	}
	return reportJSON{
		Year:         rep.Year,
		Month:        int(rep.Month),
		Label:        monthLabel(rep.Year, rep.Month),
		TotalSpent:   newMoney(rep.TotalSpent),
		Breakdown:    breakdown,
		Trend:        trend,
		Daily:        daily,
		Top:          top,
		AverageDaily: newMoney(rep.AverageDaily),
		Projected:    newMoney(rep.Projected),
		UsagePercent: rep.UsagePercent.StringFixed(2),
		DaysInMonth:  rep.DaysInMonth,
		DayOfMonth:   rep.DayOfMonth,
	}
}

func monthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}
