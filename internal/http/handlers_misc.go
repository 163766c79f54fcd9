package http

import (
	"net/http"
	"strconv"

	"tally/assets"
	"tally/internal/dates"
	"tally/internal/exchange"
)

func (s *Server) handleTaxSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required (YYYY)")
		return
	}

	summary, err := s.tax.Summarize(r.Context(), year, q.Get("category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type exportRequest struct {
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Format           string `json:"format"`
	IncludeAnalytics bool   `json:"include_analytics"`
	OutputPath       string `json:"output_path"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rng, err := dates.Normalize(req.StartDate, req.EndDate)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	format := req.Format
	if format == "" {
		format = exchange.FormatCSV
	}

	res, err := s.exchange.Export(r.Context(), rng, format, req.IncludeAnalytics, req.OutputPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type importRequest struct {
	FilePath string `json:"file_path"`
	Format   string `json:"format"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "file_path is required")
		return
	}
	format := req.Format
	if format == "" {
		format = exchange.FormatCSV
	}

	res, err := s.exchange.Import(r.Context(), req.FilePath, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCategories serves the embedded taxonomy, read on every request.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	data, err := assets.CategoriesFS.ReadFile(assets.CategoriesPath)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
