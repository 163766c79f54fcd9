package analytics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/dates"
)

func newTestService(rows ...core.Transaction) *Service {
	svc := NewService(&fakeLedger{rows: rows})
	svc.now = func() time.Time { return time.Date(2025, 6, 17, 12, 0, 0, 0, time.UTC) }
	return svc
}

var juneRows = []core.Transaction{
	{ID: 1, Date: "2025-06-01", Amount: 50, Category: "food"},
	{ID: 2, Date: "2025-06-15", Amount: 30, Category: "food"},
	{ID: 3, Date: "2025-06-20", Amount: 20, Category: "transport"},
}

func TestSummarize(t *testing.T) {
	svc := newTestService(juneRows...)
	r := dates.Range{Start: "2025-06-01", End: "2025-06-30"}

	totals, err := svc.Summarize(context.Background(), r, "")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("len = %d, want 2", len(totals))
	}
	if totals[0].Category != "food" || totals[0].TotalAmount != 80 {
		t.Fatalf("unexpected first group: %+v", totals[0])
	}
	if totals[1].Category != "transport" || totals[1].TotalAmount != 20 {
		t.Fatalf("unexpected second group: %+v", totals[1])
	}

	// Category filter narrows the grouping.
	totals, err = svc.Summarize(context.Background(), r, "food")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(totals) != 1 || totals[0].TotalAmount != 80 {
		t.Fatalf("category filter failed: %+v", totals)
	}

	// Empty range: no groups, never zero entries.
	totals, err = svc.Summarize(context.Background(), dates.Range{Start: "2030-01-01", End: "2030-01-31"}, "")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected no groups, got %+v", totals)
	}
}

func TestSummarizeMatchesCategoryAnalyticsTotal(t *testing.T) {
	svc := newTestService(juneRows...)
	r := dates.Range{Start: "2025-06-01", End: "2025-06-30"}
	ctx := context.Background()

	totals, err := svc.Summarize(ctx, r, "")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	var sum float64
	for _, ct := range totals {
		sum += ct.TotalAmount
	}

	report, err := svc.CategoryAnalytics(ctx, r)
	if err != nil {
		t.Fatalf("category analytics: %v", err)
	}
	if math.Abs(sum-report.TotalSpent) > 0.005 {
		t.Fatalf("summarize sum %v != total_spent %v", sum, report.TotalSpent)
	}
}

func TestCompareMonths(t *testing.T) {
	svc := newTestService(
		core.Transaction{Date: "2025-01-10", Amount: 100, Category: "food"},
		core.Transaction{Date: "2025-02-10", Amount: 150, Category: "food"},
	)
	ctx := context.Background()

	cmp, err := svc.CompareMonths(ctx, "2025-01", "2025-02", "")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Total1 != 100 || cmp.Total2 != 150 || cmp.Difference != 50 || cmp.PercentChange != 50 {
		t.Fatalf("unexpected comparison: %+v", cmp)
	}

	// Empty first month: percent_change is 0, never Inf or NaN.
	cmp, err = svc.CompareMonths(ctx, "2024-01", "2025-02", "")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Total1 != 0 || cmp.PercentChange != 0 {
		t.Fatalf("zero-month guard failed: %+v", cmp)
	}
	if math.IsInf(cmp.PercentChange, 0) || math.IsNaN(cmp.PercentChange) {
		t.Fatalf("percent_change not finite: %v", cmp.PercentChange)
	}

	if _, err := svc.CompareMonths(ctx, "2025-13", "2025-02", ""); !errors.Is(err, dates.ErrMalformedMonth) {
		t.Fatalf("expected ErrMalformedMonth, got %v", err)
	}
}

func TestAnalyzeTrends(t *testing.T) {
	svc := newTestService(
		core.Transaction{Date: "2025-01-10", Amount: 10, Category: "food"},
		core.Transaction{Date: "2025-01-10", Amount: 20, Category: "food"},
		core.Transaction{Date: "2025-02-05", Amount: 5, Category: "transport"},
	)
	r := dates.Range{Start: "2025-01-01", End: "2025-12-31"}
	ctx := context.Background()

	report, err := svc.AnalyzeTrends(ctx, r, "month")
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if report.GroupBy != "month" || len(report.Trends) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Trends[0].Period != "2025-01" || report.Trends[0].Count != 2 || report.Trends[0].Total != 30 {
		t.Fatalf("unexpected first period: %+v", report.Trends[0])
	}
	for _, ps := range report.Trends {
		if ps.Count == 0 {
			t.Fatalf("period with zero rows emitted: %+v", ps)
		}
	}

	// Unknown group_by falls back to month.
	report, err = svc.AnalyzeTrends(ctx, r, "fortnight")
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if report.GroupBy != "month" {
		t.Fatalf("fallback failed: %q", report.GroupBy)
	}

	report, err = svc.AnalyzeTrends(ctx, r, "day")
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if report.Trends[0].Period != "2025-01-10" || report.Trends[0].Average != 15 {
		t.Fatalf("unexpected day period: %+v", report.Trends[0])
	}
}

func TestCategoryAnalytics(t *testing.T) {
	svc := newTestService(juneRows...)
	r := dates.Range{Start: "2025-06-01", End: "2025-06-30"}

	report, err := svc.CategoryAnalytics(context.Background(), r)
	if err != nil {
		t.Fatalf("category analytics: %v", err)
	}
	if report.TotalSpent != 100 {
		t.Fatalf("total_spent = %v, want 100", report.TotalSpent)
	}
	// Ordered by total descending.
	if report.Categories[0].Category != "food" || report.Categories[0].Percentage != 80 {
		t.Fatalf("unexpected first category: %+v", report.Categories[0])
	}
	if report.Categories[1].Category != "transport" || report.Categories[1].Percentage != 20 {
		t.Fatalf("unexpected second category: %+v", report.Categories[1])
	}
	if report.Categories[0].Count != 2 || report.Categories[0].Total != 80 {
		t.Fatalf("unexpected food stats: %+v", report.Categories[0])
	}

	var pctSum float64
	for _, c := range report.Categories {
		pctSum += c.Percentage
	}
	if math.Abs(pctSum-100) > 0.05 {
		t.Fatalf("percentages sum to %v, want ~100", pctSum)
	}
}

func TestCategoryAnalyticsZeroGrandTotal(t *testing.T) {
	// Refund-heavy range: grand total is negative, so every percentage is 0.
	svc := newTestService(
		core.Transaction{Date: "2025-06-01", Amount: -50, Category: "food"},
		core.Transaction{Date: "2025-06-02", Amount: 10, Category: "transport"},
	)
	report, err := svc.CategoryAnalytics(context.Background(), dates.Range{Start: "2025-06-01", End: "2025-06-30"})
	if err != nil {
		t.Fatalf("category analytics: %v", err)
	}
	for _, c := range report.Categories {
		if c.Percentage != 0 {
			t.Fatalf("expected 0 percentage for non-positive grand total, got %+v", c)
		}
	}
}

func TestGetStatistics(t *testing.T) {
	svc := newTestService(juneRows...)
	r := dates.Range{Start: "2025-06-01", End: "2025-06-30"}

	stats, err := svc.GetStatistics(context.Background(), r)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalExpenses != 3 || stats.TotalSpent != 100 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.MinExpense != 20 || stats.MaxExpense != 50 {
		t.Fatalf("unexpected min/max: %+v", stats)
	}
	// 30 inclusive days in June.
	if stats.DailyAverage != core.Round2(100.0/30.0) {
		t.Fatalf("daily_average = %v", stats.DailyAverage)
	}
	if stats.MostExpensiveDay.Date == nil || *stats.MostExpensiveDay.Date != "2025-06-01" {
		t.Fatalf("unexpected most expensive day: %+v", stats.MostExpensiveDay)
	}
	if stats.TopCategory.Category == nil || *stats.TopCategory.Category != "food" {
		t.Fatalf("unexpected top category: %+v", stats.TopCategory)
	}
}

func TestGetStatisticsEmptyRange(t *testing.T) {
	svc := newTestService()
	stats, err := svc.GetStatistics(context.Background(), dates.Range{Start: "2025-06-01", End: "2025-06-30"})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalExpenses != 0 || stats.TotalSpent != 0 || stats.DailyAverage != 0 {
		t.Fatalf("expected zero stats: %+v", stats)
	}
	if stats.MostExpensiveDay.Date != nil || stats.TopCategory.Category != nil {
		t.Fatalf("expected null highlights: %+v", stats)
	}
}

func TestGetStatisticsInvertedRange(t *testing.T) {
	svc := newTestService(juneRows...)
	// start > end selects nothing and guards the day-count division.
	stats, err := svc.GetStatistics(context.Background(), dates.Range{Start: "2025-06-30", End: "2025-06-01"})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalExpenses != 0 || stats.DailyAverage != 0 {
		t.Fatalf("inverted range should be empty: %+v", stats)
	}
}

func TestForecastExpenses(t *testing.T) {
	// Clock pinned to 2025-06-17. food active Jan+Mar (avg 150), transport
	// only Mar (avg 60).
	svc := newTestService(
		core.Transaction{Date: "2025-01-05", Amount: 100, Category: "food"},
		core.Transaction{Date: "2025-01-20", Amount: 100, Category: "food"},
		core.Transaction{Date: "2025-03-05", Amount: 100, Category: "food"},
		core.Transaction{Date: "2025-03-10", Amount: 60, Category: "transport"},
	)
	ctx := context.Background()

	fc, err := svc.ForecastExpenses(ctx, 3, 6)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.BasedOnMonths != 6 || fc.ForecastMonths != 3 {
		t.Fatalf("unexpected window echo: %+v", fc)
	}
	if fc.HistoryPeriod != "2024-12-01 to 2025-06-17" {
		t.Fatalf("history period = %q", fc.HistoryPeriod)
	}
	if len(fc.CategoryForecasts) != 2 {
		t.Fatalf("len(category_forecasts) = %d, want 2", len(fc.CategoryForecasts))
	}

	for _, cf := range fc.CategoryForecasts {
		if len(cf.Projections) != 3 {
			t.Fatalf("%s: %d projections, want 3", cf.Category, len(cf.Projections))
		}
		for _, p := range cf.Projections {
			if p.ProjectedAmount != cf.HistoricalAvgMonthly {
				t.Fatalf("%s: projection %v != avg %v", cf.Category, p.ProjectedAmount, cf.HistoricalAvgMonthly)
			}
		}
		if cf.Projections[0].Month != "2025-07" || cf.Projections[2].Month != "2025-09" {
			t.Fatalf("%s: unexpected months %+v", cf.Category, cf.Projections)
		}
	}

	food := fc.CategoryForecasts[0]
	if food.Category != "food" || food.HistoricalAvgMonthly != 150 {
		t.Fatalf("unexpected food forecast: %+v", food)
	}
	if fc.TotalForecast.MonthlyAverage != 210 {
		t.Fatalf("total monthly average = %v, want 210", fc.TotalForecast.MonthlyAverage)
	}
	for _, p := range fc.TotalForecast.Projections {
		if p.ProjectedTotal != 210 {
			t.Fatalf("total projection %v, want 210", p.ProjectedTotal)
		}
	}
}

func TestForecastExpensesDegradesGracefully(t *testing.T) {
	svc := newTestService(
		core.Transaction{Date: "2025-05-05", Amount: 100, Category: "food"},
	)
	ctx := context.Background()

	// Zero months ahead: averages still computed, no projections.
	fc, err := svc.ForecastExpenses(ctx, 0, 6)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for _, cf := range fc.CategoryForecasts {
		if len(cf.Projections) != 0 {
			t.Fatalf("expected no projections, got %+v", cf.Projections)
		}
	}
	if len(fc.TotalForecast.Projections) != 0 {
		t.Fatalf("expected no total projections")
	}

	// Non-positive lookback: no history window, no category forecasts.
	fc, err = svc.ForecastExpenses(ctx, 3, 0)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(fc.CategoryForecasts) != 0 {
		t.Fatalf("expected no category forecasts, got %+v", fc.CategoryForecasts)
	}
}
