// Package http exposes the ledger engine as a JSON API.
package http

import (
	"net/http"
	"time"

	"tally/internal/analytics"
	"tally/internal/exchange"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/trace"
	"tally/internal/services"
	"tally/internal/tax"
)

type Server struct {
	http.Server
	transactions *services.TransactionService
	analytics    *analytics.Service
	tax          *tax.Service
	exchange     *exchange.Service
	limiter      *ratelimit.Limiter
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, txs *services.TransactionService, an *analytics.Service, tx *tax.Service, ex *exchange.Service) *Server {
	s := &Server{
		transactions: txs,
		analytics:    an,
		tax:          tx,
		exchange:     ex,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/search", s.handleSearchTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/analytics/summary", s.handleSummary)
	mux.HandleFunc("GET /api/analytics/categories", s.handleCategoryAnalytics)
	mux.HandleFunc("GET /api/analytics/trends", s.handleTrends)
	mux.HandleFunc("GET /api/analytics/statistics", s.handleStatistics)
	mux.HandleFunc("GET /api/analytics/compare", s.handleCompareMonths)
	mux.HandleFunc("GET /api/analytics/forecast", s.handleForecast)

	mux.HandleFunc("GET /api/tax/summary", s.handleTaxSummary)

	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)

	mux.HandleFunc("GET /api/categories", s.handleCategories)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           trace.Middleware(s.withSecurityHeaders(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// withSecurityHeaders adds security headers and rate limits write requests.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodDelete:
			if !s.limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Stop releases server-owned background resources.
func (s *Server) Stop() {
	s.limiter.Stop()
}
