package http

import (
	"net/http"
	"strconv"

	"tally/internal/analytics"
	"tally/internal/core"
	"tally/internal/dates"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := dates.Normalize(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	totals, err := s.analytics.Summarize(r.Context(), rng, q.Get("category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if totals == nil {
		totals = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleCategoryAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := dates.Normalize(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	report, err := s.analytics.CategoryAnalytics(r.Context(), rng)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := dates.Normalize(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	report, err := s.analytics.AnalyzeTrends(r.Context(), rng, q.Get("group_by"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := dates.Normalize(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	stats, err := s.analytics.GetStatistics(r.Context(), rng)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCompareMonths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month1, month2 := q.Get("month1"), q.Get("month2")
	if month1 == "" || month2 == "" {
		writeError(w, http.StatusBadRequest, "month1 and month2 are required (YYYY-MM)")
		return
	}

	cmp, err := s.analytics.CompareMonths(r.Context(), month1, month2, q.Get("category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	monthsAhead := analytics.DefaultForecastMonths
	if v := q.Get("months_ahead"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid months_ahead")
			return
		}
		monthsAhead = n
	}
	lookback := analytics.DefaultLookbackMonths
	if v := q.Get("lookback_months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lookback_months")
			return
		}
		lookback = n
	}

	forecast, err := s.analytics.ForecastExpenses(r.Context(), monthsAhead, lookback)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}
