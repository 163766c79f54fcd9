package core

// CategoryTotal is a per-category sum over a date range.
type CategoryTotal struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
}

// CategoryStat is the full per-category aggregate used by category analytics.
type CategoryStat struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Total    float64 `json:"total"`
	Average  float64 `json:"average"`
	Min      float64 `json:"min_amount"`
	Max      float64 `json:"max_amount"`
}

// PeriodStat is an aggregate for one period key (day, "YYYY-Www" or "YYYY-MM").
// Only periods with at least one row exist.
type PeriodStat struct {
	Period  string  `json:"period"`
	Count   int64   `json:"expense_count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Min     float64 `json:"min_amount"`
	Max     float64 `json:"max_amount"`
}

// RangeStats is the overall aggregate for a date range. Sum/avg/min/max are
// zero when the range holds no rows.
type RangeStats struct {
	Count   int64
	Total   float64
	Average float64
	Min     float64
	Max     float64
}

// DayTotal is the summed amount of a single day.
type DayTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// CategoryMonthlyAvg is the average of a category's per-month sums across the
// months that had any activity for it.
type CategoryMonthlyAvg struct {
	Category   string
	AvgMonthly float64
}
