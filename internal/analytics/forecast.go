package analytics

import (
	"context"
	"fmt"

	"tally/internal/core"
	"tally/internal/dates"
)

const (
	DefaultForecastMonths = 3
	DefaultLookbackMonths = 6
)

// Projection is one future month of a forecast.
type Projection struct {
	Month           string  `json:"month"`
	ProjectedAmount float64 `json:"projected_amount"`
}

// TotalProjection is one future month of the engine-wide forecast.
type TotalProjection struct {
	Month          string  `json:"month"`
	ProjectedTotal float64 `json:"projected_total"`
}

// CategoryForecast projects one category's historical monthly average,
// unchanged, over every future month.
type CategoryForecast struct {
	Category             string       `json:"category"`
	HistoricalAvgMonthly float64      `json:"historical_avg_monthly"`
	Projections          []Projection `json:"projections"`
}

// Forecast is the result of ForecastExpenses.
type Forecast struct {
	BasedOnMonths     int                `json:"based_on_months"`
	HistoryPeriod     string             `json:"history_period"`
	ForecastMonths    int                `json:"forecast_months"`
	TotalForecast     TotalForecast      `json:"total_forecast"`
	CategoryForecasts []CategoryForecast `json:"category_forecasts"`
}

type TotalForecast struct {
	MonthlyAverage float64           `json:"monthly_average"`
	Projections    []TotalProjection `json:"projections"`
}

// ForecastExpenses builds a constant moving-average forecast: for each
// category, the average of its per-month sums across the months that had any
// activity in the lookback window, projected unchanged over monthsAhead
// future months. No trend or seasonality adjustment. Non-positive inputs
// degrade to an empty forecast rather than failing.
func (s *Service) ForecastExpenses(ctx context.Context, monthsAhead, lookbackMonths int) (Forecast, error) {
	today := s.now()
	baseYear, baseMonth := today.Year(), int(today.Month())

	// History window: first day of the month lookbackMonths back, through
	// today. A non-positive lookback places the window start in the future,
	// which selects nothing.
	histYear, histMonth := dates.ShiftMonth(baseYear, baseMonth, -lookbackMonths)
	historyStart := fmt.Sprintf("%04d-%02d-01", histYear, histMonth)
	historyEnd := today.Format(core.DateLayout)

	// Untrusted input: a non-positive window means there is no history to
	// average, so the forecast is empty rather than an error.
	var averages []core.CategoryMonthlyAvg
	if lookbackMonths > 0 {
		var err error
		averages, err = s.ledger.MonthlyCategoryAverages(ctx, historyStart, historyEnd)
		if err != nil {
			return Forecast{}, fmt.Errorf("forecast history: %w", err)
		}
	}

	categoryForecasts := make([]CategoryForecast, 0, len(averages))
	var totalMonthlyAvg float64
	for _, avg := range averages {
		projections := make([]Projection, 0, max(monthsAhead, 0))
		for i := 1; i <= monthsAhead; i++ {
			fy, fm := dates.ShiftMonth(baseYear, baseMonth, i)
			projections = append(projections, Projection{
				Month:           fmt.Sprintf("%04d-%02d", fy, fm),
				ProjectedAmount: core.Round2(avg.AvgMonthly),
			})
		}
		categoryForecasts = append(categoryForecasts, CategoryForecast{
			Category:             avg.Category,
			HistoricalAvgMonthly: core.Round2(avg.AvgMonthly),
			Projections:          projections,
		})
		totalMonthlyAvg += core.Round2(avg.AvgMonthly)
	}

	totalProjections := make([]TotalProjection, 0, max(monthsAhead, 0))
	for i := 1; i <= monthsAhead; i++ {
		fy, fm := dates.ShiftMonth(baseYear, baseMonth, i)
		totalProjections = append(totalProjections, TotalProjection{
			Month:          fmt.Sprintf("%04d-%02d", fy, fm),
			ProjectedTotal: core.Round2(totalMonthlyAvg),
		})
	}

	return Forecast{
		BasedOnMonths:  lookbackMonths,
		HistoryPeriod:  historyStart + " to " + historyEnd,
		ForecastMonths: monthsAhead,
		TotalForecast: TotalForecast{
			MonthlyAverage: core.Round2(totalMonthlyAvg),
			Projections:    totalProjections,
		},
		CategoryForecasts: categoryForecasts,
	}, nil
}
