package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 12, 0, 0, 0, time.UTC)
}

func exp(id, amount, cat string, date time.Time) core.Expense {
	return core.Expense{ID: id, Amount: d(amount), Category: cat, Description: id, Date: date}
}

func sampleExpenses() []core.Expense {
	return []core.Expense{
		exp("a", "45.50", "Food & Dining", day(2025, 8, 15)),
		exp("b", "120", "Transportation", day(2025, 8, 14)),
		exp("c", "25", "Entertainment", day(2025, 8, 13)),
		exp("d", "10", "Food & Dining", day(2025, 8, 1)),
		exp("e", "99", "Shopping", day(2025, 7, 31)),
		exp("f", "1", "Other", day(2024, 8, 15)),
	}
}

func TestFilterByMonth(t *testing.T) {
	got := FilterByMonth(sampleExpenses(), 2025, time.August)
	if len(got) != 4 {
		t.Fatalf("expected 4 August 2025 expenses, got %d", len(got))
	}
	if got[0].ID != "a" || got[3].ID != "d" {
		t.Fatalf("order not preserved: %v, %v", got[0].ID, got[3].ID)
	}
	if len(FilterByMonth(nil, 2025, time.August)) != 0 {
		t.Fatal("nil input should give empty result")
	}
}

func TestCategoryBreakdownSumsToTotal(t *testing.T) {
	month := FilterByMonth(sampleExpenses(), 2025, time.August)
	breakdown := CategoryBreakdown(month)

	sum := decimal.Zero
	for _, c := range breakdown {
		sum = sum.Add(c.Amount)
	}
	if !sum.Equal(TotalAmount(month)) {
		t.Fatalf("breakdown sum %s != total %s", sum, TotalAmount(month))
	}
	if breakdown[0].Category != "Food & Dining" || !breakdown[0].Amount.Equal(d("55.50")) {
		t.Fatalf("first-seen category should lead: %+v", breakdown[0])
	}
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(breakdown))
	}
}

func TestCategoryBreakdownKeepsZeroAmountCategory(t *testing.T) {
	got := CategoryBreakdown([]core.Expense{
		exp("a", "0", "Gifts", day(2025, 8, 1)),
		exp("b", "5", "Food & Dining", day(2025, 8, 1)),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %+v", got)
	}
	if got[0].Category != "Gifts" || !got[0].Amount.IsZero() {
		t.Fatalf("zero-amount category should keep first-seen position: %+v", got)
	}
	if got[1].Category != "Food & Dining" || !got[1].Amount.Equal(d("5")) {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
	if top := TopCategories(got, 5); len(top) != 2 || top[1].Category != "Gifts" {
		t.Fatalf("zero-amount category should rank last in top categories: %+v", top)
	}
}

func TestMonthlyTrend(t *testing.T) {
	budgets := []core.Budget{{Category: "A", Limit: d("100")}, {Category: "B", Limit: d("50")}}
	trend := MonthlyTrend(sampleExpenses(), budgets, day(2025, 8, 15), DefaultTrendMonths)
	if len(trend) != 6 {
		t.Fatalf("expected 6 points, got %d", len(trend))
	}
	if trend[0].Month != time.March || trend[5].Month != time.August {
		t.Fatalf("expected March..August, got %v..%v", trend[0].Month, trend[5].Month)
	}
	if trend[5].Label != "Aug" || !trend[5].Spent.Equal(d("200.5")) {
		t.Fatalf("unexpected current month point: %+v", trend[5])
	}
	if !trend[4].Spent.Equal(d("99")) {
		t.Fatalf("expected July spent 99, got %s", trend[4].Spent)
	}
	for _, p := range trend {
		if !p.Budget.Equal(d("150")) {
			t.Fatalf("budget total must be constant, got %s", p.Budget)
		}
	}
}

func TestMonthlyTrendYearRollover(t *testing.T) {
	trend := MonthlyTrend(nil, nil, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), 6)
	if len(trend) != 6 {
		t.Fatalf("expected 6 points, got %d", len(trend))
	}
	if trend[0].Year != 2024 || trend[0].Month != time.August || trend[0].Label != "Aug" {
		t.Fatalf("expected August 2024 first, got %+v", trend[0])
	}
	if trend[5].Year != 2025 || trend[5].Month != time.January {
		t.Fatalf("expected January 2025 last, got %+v", trend[5])
	}
	if len(MonthlyTrend(nil, nil, time.Now(), 0)) != 0 {
		t.Fatal("zero months should give no points")
	}
}

func TestDailySeries(t *testing.T) {
	month := []core.Expense{
		exp("a", "10", "X", day(2025, 8, 1)),
		exp("b", "5", "X", day(2025, 8, 1)),
		exp("c", "7", "X", day(2025, 8, 30)),
		exp("d", "100", "X", day(2025, 8, 31)),
	}
	series := DailySeries(month, 31)
	if len(series) != 30 {
		t.Fatalf("series is capped at 30 days, got %d", len(series))
	}
	if series[0].Day != 1 || !series[0].Amount.Equal(d("15")) {
		t.Fatalf("unexpected day 1: %+v", series[0])
	}
	if !series[29].Amount.Equal(d("7")) {
		t.Fatalf("unexpected day 30: %+v", series[29])
	}
	if len(DailySeries(nil, 28)) != 28 {
		t.Fatal("February should give 28 entries")
	}
}

func TestTopCategories(t *testing.T) {
	breakdown := []CategoryAmount{
		{"A", d("10")}, {"B", d("30")}, {"C", d("10")}, {"D", d("5")},
		{"E", d("30")}, {"F", d("1")}, {"G", d("2")},
	}
	top := TopCategories(breakdown, DefaultTopCategories)
	want := []string{"B", "E", "A", "C", "D"}
	if len(top) != len(want) {
		t.Fatalf("expected %d, got %d", len(want), len(top))
	}
	for i, w := range want {
		if top[i].Category != w {
			t.Fatalf("position %d: want %s got %s", i, w, top[i].Category)
		}
	}
	if breakdown[0].Category != "A" {
		t.Fatal("input must not be reordered")
	}
}

func TestRatiosAndGuards(t *testing.T) {
	cases := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"usage 0/0", BudgetUsageRatio(d("0"), d("0")), "0"},
		{"usage 50/0", BudgetUsageRatio(d("50"), d("0")), "0"},
		{"usage 50/200", BudgetUsageRatio(d("50"), d("200")), "0.25"},
		{"change 100 vs 0", PercentChangeVsPriorMonth(d("100"), d("0")), "0"},
		{"change 150 vs 100", PercentChangeVsPriorMonth(d("150"), d("100")), "50"},
		{"change 50 vs 100", PercentChangeVsPriorMonth(d("50"), d("100")), "-50"},
		{"average day 0", AverageDailySpending(d("100"), 0), "0"},
		{"average", AverageDailySpending(d("100"), 4), "25"},
		{"projected", ProjectedMonthlySpending(d("25"), 30), "750"},
		{"remaining over", Remaining(d("100"), d("130")), "-30"},
		{"percent of zero limit", PercentOfLimit(d("10"), d("0")), "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.got.Equal(d(tc.want)) {
				t.Fatalf("got %s want %s", tc.got, tc.want)
			}
		})
	}
}

func TestStatusBand(t *testing.T) {
	cases := map[string]Status{
		"79":     StatusOnTrack,
		"80":     StatusOnTrack,
		"80.01":  StatusWarning,
		"81":     StatusWarning,
		"100":    StatusWarning,
		"100.01": StatusOver,
		"101":    StatusOver,
		"0":      StatusOnTrack,
	}
	for in, want := range cases {
		if got := StatusBand(d(in)); got != want {
			t.Fatalf("StatusBand(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestBudgetStatus(t *testing.T) {
	cases := []struct {
		name         string
		spent, limit string
		want         Status
	}{
		{"zero limit with spending", "40", "0", StatusOver},
		{"zero limit without spending", "0", "0", StatusOnTrack},
		{"under limit", "100", "500", StatusOnTrack},
		{"warning band", "450", "500", StatusWarning},
		{"over limit", "501", "500", StatusOver},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BudgetStatus(d(tc.spent), d(tc.limit)); got != tc.want {
				t.Fatalf("BudgetStatus(%s, %s) = %s, want %s", tc.spent, tc.limit, got, tc.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		t    time.Time
		want int
	}{
		{day(2024, 2, 10), 29},
		{day(2025, 2, 10), 28},
		{day(2025, 4, 1), 30},
		{day(2025, 12, 31), 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.t); got != tc.want {
			t.Fatalf("DaysInMonth(%s) = %d, want %d", tc.t.Format("2006-01"), got, tc.want)
		}
	}
}

func TestPurity(t *testing.T) {
	in := sampleExpenses()
	budgets := []core.Budget{{Category: "Food & Dining", Limit: d("500")}}
	ref := day(2025, 8, 15)

	first := BuildAnalytics(in, budgets, ref)
	second := BuildAnalytics(in, budgets, ref)
	if !first.TotalSpent.Equal(second.TotalSpent) || len(first.Breakdown) != len(second.Breakdown) {
		t.Fatal("identical inputs must give identical output")
	}
	if in[0].ID != "a" || in[5].ID != "f" {
		t.Fatal("input reordered")
	}
}
