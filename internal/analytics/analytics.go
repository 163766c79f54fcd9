// Package analytics is the read-oriented aggregation engine over the
// transaction ledger: grouped summaries, trend series, comparative
// statistics, share analytics and a constant moving-average forecast.
//
// The engine holds no state of its own; every operation recomputes from the
// ledger gateway on each call, and division-by-zero conditions (empty
// ranges, zero totals) resolve to 0 or null instead of failing.
package analytics

import (
	"context"
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/dates"
)

// Ledger is the narrow query gateway the engine consumes. The SQLite
// repository implements it; tests substitute fakes.
type Ledger interface {
	SumRange(ctx context.Context, start, end, category string) (float64, error)
	CategoryTotals(ctx context.Context, start, end, category string) ([]core.CategoryTotal, error)
	CategoryStats(ctx context.Context, start, end string) ([]core.CategoryStat, error)
	PeriodStats(ctx context.Context, groupBy, start, end string) ([]core.PeriodStat, error)
	RangeStats(ctx context.Context, start, end string) (core.RangeStats, error)
	TopDay(ctx context.Context, start, end string) (*core.DayTotal, error)
	TopCategory(ctx context.Context, start, end string) (*core.CategoryTotal, error)
	MonthlyCategoryAverages(ctx context.Context, start, end string) ([]core.CategoryMonthlyAvg, error)
}

// Service exposes the aggregation operations.
type Service struct {
	ledger Ledger
	now    func() time.Time
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger, now: time.Now}
}

// Summarize groups a range's rows by category and sums their amounts,
// ascending by category name. Categories with no rows are absent; there are
// no zero entries.
func (s *Service) Summarize(ctx context.Context, r dates.Range, category string) ([]core.CategoryTotal, error) {
	totals, err := s.ledger.CategoryTotals(ctx, r.Start, r.End, category)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	for i := range totals {
		totals[i].TotalAmount = core.Round2(totals[i].TotalAmount)
	}
	return totals, nil
}

// MonthComparison is the result of CompareMonths.
type MonthComparison struct {
	Month1        string  `json:"month1"`
	Total1        float64 `json:"total1"`
	Month2        string  `json:"month2"`
	Total2        float64 `json:"total2"`
	Difference    float64 `json:"difference"`
	PercentChange float64 `json:"percent_change"`
	Category      string  `json:"category,omitempty"`
}

// CompareMonths sums two months (optionally one category) and reports the
// difference month2 - month1. percent_change is 0 whenever total1 is not
// strictly positive; an empty first month never produces Inf or NaN.
func (s *Service) CompareMonths(ctx context.Context, month1, month2, category string) (MonthComparison, error) {
	s1, e1, err := dates.MonthBounds(month1)
	if err != nil {
		return MonthComparison{}, err
	}
	s2, e2, err := dates.MonthBounds(month2)
	if err != nil {
		return MonthComparison{}, err
	}

	total1, err := s.ledger.SumRange(ctx, s1, e1, category)
	if err != nil {
		return MonthComparison{}, fmt.Errorf("sum %s: %w", month1, err)
	}
	total2, err := s.ledger.SumRange(ctx, s2, e2, category)
	if err != nil {
		return MonthComparison{}, fmt.Errorf("sum %s: %w", month2, err)
	}

	diff := total2 - total1
	var pct float64
	if total1 > 0 {
		pct = diff / total1 * 100
	}

	return MonthComparison{
		Month1:        month1,
		Total1:        core.Round2(total1),
		Month2:        month2,
		Total2:        core.Round2(total2),
		Difference:    core.Round2(diff),
		PercentChange: core.Round2(pct),
		Category:      category,
	}, nil
}

// TrendReport is the result of AnalyzeTrends.
type TrendReport struct {
	GroupBy   string            `json:"group_by"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Trends    []core.PeriodStat `json:"trends"`
}

// AnalyzeTrends groups a range by day, week or month period keys. Unknown
// group_by values (including empty) fall back to month. Only periods with at
// least one row appear, ascending by period key.
func (s *Service) AnalyzeTrends(ctx context.Context, r dates.Range, groupBy string) (TrendReport, error) {
	switch groupBy {
	case "day", "week":
	default:
		groupBy = "month"
	}

	trends, err := s.ledger.PeriodStats(ctx, groupBy, r.Start, r.End)
	if err != nil {
		return TrendReport{}, fmt.Errorf("analyze trends: %w", err)
	}
	for i := range trends {
		trends[i].Total = core.Round2(trends[i].Total)
		trends[i].Average = core.Round2(trends[i].Average)
		trends[i].Min = core.Round2(trends[i].Min)
		trends[i].Max = core.Round2(trends[i].Max)
	}

	return TrendReport{
		GroupBy:   groupBy,
		StartDate: r.Start,
		EndDate:   r.End,
		Trends:    trends,
	}, nil
}

// CategoryShare is one category's aggregate plus its share of the range's
// grand total.
type CategoryShare struct {
	core.CategoryStat
	Percentage float64 `json:"percentage"`
}

// CategoryReport is the result of CategoryAnalytics.
type CategoryReport struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	TotalSpent float64         `json:"total_spent"`
	Categories []CategoryShare `json:"categories"`
}

// CategoryAnalytics returns per-category count/sum/avg/min/max plus each
// category's percentage of the grand total, ordered by total descending.
// Percentages are 0 when the grand total is zero or negative.
func (s *Service) CategoryAnalytics(ctx context.Context, r dates.Range) (CategoryReport, error) {
	grandTotal, err := s.ledger.SumRange(ctx, r.Start, r.End, "")
	if err != nil {
		return CategoryReport{}, fmt.Errorf("category analytics total: %w", err)
	}

	stats, err := s.ledger.CategoryStats(ctx, r.Start, r.End)
	if err != nil {
		return CategoryReport{}, fmt.Errorf("category analytics: %w", err)
	}

	categories := make([]CategoryShare, 0, len(stats))
	for _, cs := range stats {
		var pct float64
		if grandTotal > 0 {
			pct = cs.Total / grandTotal * 100
		}
		cs.Total = core.Round2(cs.Total)
		cs.Average = core.Round2(cs.Average)
		cs.Min = core.Round2(cs.Min)
		cs.Max = core.Round2(cs.Max)
		categories = append(categories, CategoryShare{
			CategoryStat: cs,
			Percentage:   core.Round2(pct),
		})
	}

	return CategoryReport{
		StartDate:  r.Start,
		EndDate:    r.End,
		TotalSpent: core.Round2(grandTotal),
		Categories: categories,
	}, nil
}

// Statistics is the quick-stats result. MostExpensiveDay.Date and
// TopCategory.Category are null for an empty range.
type Statistics struct {
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	TotalExpenses    int64             `json:"total_expenses"`
	TotalSpent       float64           `json:"total_spent"`
	AverageExpense   float64           `json:"average_expense"`
	MinExpense       float64           `json:"min_expense"`
	MaxExpense       float64           `json:"max_expense"`
	DailyAverage     float64           `json:"daily_average"`
	MostExpensiveDay DayHighlight      `json:"most_expensive_day"`
	TopCategory      CategoryHighlight `json:"top_category"`
}

type DayHighlight struct {
	Date  *string `json:"date"`
	Total float64 `json:"total"`
}

type CategoryHighlight struct {
	Category *string `json:"category"`
	Total    float64 `json:"total"`
}

// GetStatistics computes the overall aggregate for a range, a per-day
// average over the inclusive day span, and the highest-sum day and category.
// Ties in the highlights resolve to whichever group the store returns first
// for a descending-sum ordering.
func (s *Service) GetStatistics(ctx context.Context, r dates.Range) (Statistics, error) {
	stats, err := s.ledger.RangeStats(ctx, r.Start, r.End)
	if err != nil {
		return Statistics{}, fmt.Errorf("get statistics: %w", err)
	}

	topDay, err := s.ledger.TopDay(ctx, r.Start, r.End)
	if err != nil {
		return Statistics{}, fmt.Errorf("top day: %w", err)
	}
	topCat, err := s.ledger.TopCategory(ctx, r.Start, r.End)
	if err != nil {
		return Statistics{}, fmt.Errorf("top category: %w", err)
	}

	dayCount := inclusiveDays(r.Start, r.End)
	var dailyAvg float64
	if dayCount > 0 {
		dailyAvg = stats.Total / float64(dayCount)
	}

	out := Statistics{
		StartDate:      r.Start,
		EndDate:        r.End,
		TotalExpenses:  stats.Count,
		TotalSpent:     core.Round2(stats.Total),
		AverageExpense: core.Round2(stats.Average),
		MinExpense:     core.Round2(stats.Min),
		MaxExpense:     core.Round2(stats.Max),
		DailyAverage:   core.Round2(dailyAvg),
	}
	if topDay != nil {
		out.MostExpensiveDay = DayHighlight{Date: &topDay.Date, Total: core.Round2(topDay.Total)}
	}
	if topCat != nil {
		out.TopCategory = CategoryHighlight{Category: &topCat.Category, Total: core.Round2(topCat.TotalAmount)}
	}
	return out, nil
}

// inclusiveDays is (end - start in days) + 1, or 0 when the bounds don't
// parse or the span is non-positive.
func inclusiveDays(start, end string) int {
	s, err1 := time.Parse(core.DateLayout, start)
	e, err2 := time.Parse(core.DateLayout, end)
	if err1 != nil || err2 != nil {
		return 0
	}
	days := int(e.Sub(s).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}
