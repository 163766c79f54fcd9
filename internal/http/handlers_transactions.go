package http

import (
	"net/http"
	"strconv"

	"tally/internal/core"
	"tally/internal/storage"
)

type createTransactionRequest struct {
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory"`
	Note          string  `json:"note"`
	TaxDeductible bool    `json:"tax_deductible"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"`
}

type updateTransactionRequest struct {
	Date          *string  `json:"date"`
	Amount        *float64 `json:"amount"`
	Category      *string  `json:"category"`
	Subcategory   *string  `json:"subcategory"`
	Note          *string  `json:"note"`
	TaxDeductible *bool    `json:"tax_deductible"`
	Currency      *string  `json:"currency"`
	PaymentMethod *string  `json:"payment_method"`
}

type listResponse struct {
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Transactions []core.Transaction `json:"transactions"`
}

type searchResponse struct {
	Results    []core.Transaction `json:"results"`
	TotalCount int64              `json:"total_count"`
	Limit      int64              `json:"limit"`
	Offset     int64              `json:"offset"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.transactions.Create(r.Context(), core.Transaction{
		Date:          req.Date,
		Amount:        req.Amount,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Note:          req.Note,
		TaxDeductible: req.TaxDeductible,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	t, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.transactions.Update(r.Context(), id, core.TransactionPatch{
		Date:          req.Date,
		Amount:        req.Amount,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Note:          req.Note,
		TaxDeductible: req.TaxDeductible,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, rng, err := s.transactions.List(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if rows == nil {
		rows = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		StartDate:    rng.Start,
		EndDate:      rng.End,
		Transactions: rows,
	})
}

func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := storage.Filter{
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
		Category:     q.Get("category"),
		NoteContains: q.Get("note_contains"),
	}
	if v := q.Get("min_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_amount")
			return
		}
		f.MinAmount = &amount
	}
	if v := q.Get("max_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_amount")
			return
		}
		f.MaxAmount = &amount
	}
	if v := q.Get("tax_deductible"); v != "" {
		deductible, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid tax_deductible")
			return
		}
		f.TaxDeductible = &deductible
	}

	limit := queryInt64(q.Get("limit"), 100)
	offset := queryInt64(q.Get("offset"), 0)

	rows, total, err := s.transactions.Search(r.Context(), f, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if rows == nil {
		rows = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Results:    rows,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// queryInt64 parses an optional numeric parameter, keeping the default on
// absence or garbage.
func queryInt64(s string, def int64) int64 {
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return def
}
