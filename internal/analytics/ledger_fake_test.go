package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tally/internal/core"
)

// fakeLedger computes every gateway aggregate from an in-memory slice, so
// engine tests exercise real grouping semantics without a database.
type fakeLedger struct {
	rows []core.Transaction
}

func (f *fakeLedger) inRange(t core.Transaction, start, end, category string) bool {
	if t.Date < start || t.Date > end {
		return false
	}
	if category != "" && t.Category != category {
		return false
	}
	return true
}

func (f *fakeLedger) SumRange(_ context.Context, start, end, category string) (float64, error) {
	var total float64
	for _, t := range f.rows {
		if f.inRange(t, start, end, category) {
			total += t.Amount
		}
	}
	return total, nil
}

func (f *fakeLedger) CategoryTotals(_ context.Context, start, end, category string) ([]core.CategoryTotal, error) {
	sums := map[string]float64{}
	for _, t := range f.rows {
		if f.inRange(t, start, end, category) {
			sums[t.Category] += t.Amount
		}
	}
	out := make([]core.CategoryTotal, 0, len(sums))
	for cat, total := range sums {
		out = append(out, core.CategoryTotal{Category: cat, TotalAmount: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (f *fakeLedger) CategoryStats(_ context.Context, start, end string) ([]core.CategoryStat, error) {
	byCat := map[string]*core.CategoryStat{}
	for _, t := range f.rows {
		if !f.inRange(t, start, end, "") {
			continue
		}
		cs, ok := byCat[t.Category]
		if !ok {
			cs = &core.CategoryStat{Category: t.Category, Min: t.Amount, Max: t.Amount}
			byCat[t.Category] = cs
		}
		cs.Count++
		cs.Total += t.Amount
		if t.Amount < cs.Min {
			cs.Min = t.Amount
		}
		if t.Amount > cs.Max {
			cs.Max = t.Amount
		}
	}
	out := make([]core.CategoryStat, 0, len(byCat))
	for _, cs := range byCat {
		cs.Average = cs.Total / float64(cs.Count)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func periodKey(groupBy, date string) string {
	switch groupBy {
	case "day":
		return date
	case "week":
		d, _ := time.Parse(core.DateLayout, date)
		jan1 := time.Date(d.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		mondayOffset := (int(jan1.Weekday()) + 6) % 7
		week := (d.YearDay() - 1 + mondayOffset) / 7
		return fmt.Sprintf("%04d-W%02d", d.Year(), week)
	default:
		return date[:7]
	}
}

func (f *fakeLedger) PeriodStats(_ context.Context, groupBy, start, end string) ([]core.PeriodStat, error) {
	byPeriod := map[string]*core.PeriodStat{}
	for _, t := range f.rows {
		if !f.inRange(t, start, end, "") {
			continue
		}
		key := periodKey(groupBy, t.Date)
		ps, ok := byPeriod[key]
		if !ok {
			ps = &core.PeriodStat{Period: key, Min: t.Amount, Max: t.Amount}
			byPeriod[key] = ps
		}
		ps.Count++
		ps.Total += t.Amount
		if t.Amount < ps.Min {
			ps.Min = t.Amount
		}
		if t.Amount > ps.Max {
			ps.Max = t.Amount
		}
	}
	out := make([]core.PeriodStat, 0, len(byPeriod))
	for _, ps := range byPeriod {
		ps.Average = ps.Total / float64(ps.Count)
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (f *fakeLedger) RangeStats(_ context.Context, start, end string) (core.RangeStats, error) {
	var s core.RangeStats
	for _, t := range f.rows {
		if !f.inRange(t, start, end, "") {
			continue
		}
		if s.Count == 0 {
			s.Min, s.Max = t.Amount, t.Amount
		}
		s.Count++
		s.Total += t.Amount
		if t.Amount < s.Min {
			s.Min = t.Amount
		}
		if t.Amount > s.Max {
			s.Max = t.Amount
		}
	}
	if s.Count > 0 {
		s.Average = s.Total / float64(s.Count)
	}
	return s, nil
}

func (f *fakeLedger) TopDay(ctx context.Context, start, end string) (*core.DayTotal, error) {
	stats, err := f.PeriodStats(ctx, "day", start, end)
	if err != nil || len(stats) == 0 {
		return nil, err
	}
	top := stats[0]
	for _, ps := range stats[1:] {
		if ps.Total > top.Total {
			top = ps
		}
	}
	return &core.DayTotal{Date: top.Period, Total: top.Total}, nil
}

func (f *fakeLedger) TopCategory(ctx context.Context, start, end string) (*core.CategoryTotal, error) {
	stats, err := f.CategoryStats(ctx, start, end)
	if err != nil || len(stats) == 0 {
		return nil, err
	}
	return &core.CategoryTotal{Category: stats[0].Category, TotalAmount: stats[0].Total}, nil
}

func (f *fakeLedger) MonthlyCategoryAverages(_ context.Context, start, end string) ([]core.CategoryMonthlyAvg, error) {
	type key struct{ cat, month string }
	monthly := map[key]float64{}
	for _, t := range f.rows {
		if f.inRange(t, start, end, "") {
			monthly[key{t.Category, t.Date[:7]}] += t.Amount
		}
	}
	sums := map[string]float64{}
	months := map[string]int{}
	for k, total := range monthly {
		sums[k.cat] += total
		months[k.cat]++
	}
	out := make([]core.CategoryMonthlyAvg, 0, len(sums))
	for cat, total := range sums {
		out = append(out, core.CategoryMonthlyAvg{Category: cat, AvgMonthly: total / float64(months[cat])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
