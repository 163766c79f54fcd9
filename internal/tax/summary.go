package tax

import (
	"context"
	"fmt"

	"tally/internal/core"
)

// Ledger is the slice of the query gateway the tax summary needs.
type Ledger interface {
	TaxDeductibleRange(ctx context.Context, start, end, category string) ([]core.Transaction, error)
}

// BucketSummary is one non-empty bucket with its member rows.
type BucketSummary struct {
	TaxCategory Bucket             `json:"tax_category"`
	Total       float64            `json:"total"`
	Count       int                `json:"count"`
	Expenses    []core.Transaction `json:"expenses"`
}

// Summary is the yearly tax-deduction report.
type Summary struct {
	Year           int             `json:"year"`
	FilterCategory string          `json:"filter_category,omitempty"`
	GrandTotal     float64         `json:"grand_total"`
	TotalCount     int             `json:"total_count"`
	Summary        []BucketSummary `json:"summary"`
}

// Service builds tax summaries from the ledger.
type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// Summarize classifies a year's tax-deductible rows (optionally one
// category) into the fixed buckets. Buckets appear in their fixed order and
// only when non-empty; rows nest verbatim under their bucket.
func (s *Service) Summarize(ctx context.Context, year int, category string) (Summary, error) {
	start := fmt.Sprintf("%04d-01-01", year)
	end := fmt.Sprintf("%04d-12-31", year)

	rows, err := s.ledger.TaxDeductibleRange(ctx, start, end, category)
	if err != nil {
		return Summary{}, fmt.Errorf("tax summary: %w", err)
	}

	grouped := map[Bucket][]core.Transaction{}
	totals := map[Bucket]float64{}
	for _, t := range rows {
		bucket := Classify(t.Category, t.Subcategory)
		grouped[bucket] = append(grouped[bucket], t)
		totals[bucket] += t.Amount
	}

	var summary []BucketSummary
	var grandTotal float64
	for _, bucket := range Buckets {
		members := grouped[bucket]
		if len(members) == 0 {
			continue
		}
		summary = append(summary, BucketSummary{
			TaxCategory: bucket,
			Total:       core.Round2(totals[bucket]),
			Count:       len(members),
			Expenses:    members,
		})
		grandTotal += totals[bucket]
	}

	return Summary{
		Year:           year,
		FilterCategory: category,
		GrandTotal:     core.Round2(grandTotal),
		TotalCount:     len(rows),
		Summary:        summary,
	}, nil
}
