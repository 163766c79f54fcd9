// Package exchange moves ledger data in and out of the store as CSV or JSON
// files.
package exchange

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"tally/internal/analytics"
	"tally/internal/core"
	"tally/internal/dates"
)

// Formats accepted by Export and Import.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var exportColumns = []string{
	"id",
	"date",
	"amount",
	"category",
	"subcategory",
	"note",
	"tax_deductible",
	"currency",
	"payment_method",
}

// Ledger is the slice of storage the exchange needs.
type Ledger interface {
	ListRange(ctx context.Context, start, end string) ([]core.Transaction, error)
	Insert(ctx context.Context, t core.Transaction) (int64, error)
}

// Service reads and writes ledger files. analytics may be nil, in which case
// exports cannot embed analytics.
type Service struct {
	ledger     Ledger
	analytics  *analytics.Service
	outputsDir string
}

func NewService(ledger Ledger, analytics *analytics.Service, outputsDir string) *Service {
	return &Service{
		ledger:     ledger,
		analytics:  analytics,
		outputsDir: outputsDir,
	}
}

// ExportResult reports where an export landed and how many rows it carries.
type ExportResult struct {
	FilePath    string `json:"file_path"`
	Format      string `json:"format"`
	RecordCount int    `json:"record_count"`
}

type exportEnvelope struct {
	Period    periodJSON         `json:"period"`
	Expenses  []core.Transaction `json:"expenses"`
	Analytics *analyticsEmbed    `json:"analytics,omitempty"`
}

type periodJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type analyticsEmbed struct {
	Statistics        analytics.Statistics     `json:"statistics"`
	CategoryBreakdown analytics.CategoryReport `json:"category_breakdown"`
}

// Export writes the transactions in a range to a CSV or JSON file, oldest
// first. outputPath may be empty (configured outputs dir, default filename),
// a directory (default filename inside it), or a full file path.
func (s *Service) Export(ctx context.Context, r dates.Range, format string, includeAnalytics bool, outputPath string) (ExportResult, error) {
	if format != FormatCSV && format != FormatJSON {
		return ExportResult{}, fmt.Errorf("unsupported format %q", format)
	}

	outFile, err := s.resolveOutputPath(outputPath, r, format)
	if err != nil {
		return ExportResult{}, err
	}

	rows, err := s.ledger.ListRange(ctx, r.Start, r.End)
	if err != nil {
		return ExportResult{}, fmt.Errorf("load export rows: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].ID < rows[j].ID
	})

	switch format {
	case FormatCSV:
		err = writeCSV(outFile, rows)
	case FormatJSON:
		err = s.writeJSON(ctx, outFile, r, rows, includeAnalytics)
	}
	if err != nil {
		return ExportResult{}, err
	}

	slog.InfoContext(ctx, "Exported ledger data",
		"file_path", outFile,
		"format", format,
		"record_count", len(rows))

	return ExportResult{
		FilePath:    outFile,
		Format:      format,
		RecordCount: len(rows),
	}, nil
}

func (s *Service) resolveOutputPath(outputPath string, r dates.Range, format string) (string, error) {
	defaultName := fmt.Sprintf("expenses_%s_to_%s.%s", r.Start, r.End, format)

	outFile := outputPath
	if outFile == "" {
		outFile = filepath.Join(s.outputsDir, defaultName)
	} else if info, err := os.Stat(outFile); err == nil && info.IsDir() {
		outFile = filepath.Join(outFile, defaultName)
	}

	if dir := filepath.Dir(outFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	return outFile, nil
}

func writeCSV(path string, rows []core.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range rows {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Date,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			t.Category,
			t.Subcategory,
			t.Note,
			strconv.FormatBool(t.TaxDeductible),
			t.Currency,
			t.PaymentMethod,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export file: %w", err)
	}
	return nil
}

func (s *Service) writeJSON(ctx context.Context, path string, r dates.Range, rows []core.Transaction, includeAnalytics bool) error {
	envelope := exportEnvelope{
		Period:   periodJSON{Start: r.Start, End: r.End},
		Expenses: rows,
	}
	if includeAnalytics {
		if s.analytics == nil {
			return fmt.Errorf("analytics embed requested but no analytics service configured")
		}
		stats, err := s.analytics.GetStatistics(ctx, r)
		if err != nil {
			return fmt.Errorf("compute statistics: %w", err)
		}
		breakdown, err := s.analytics.CategoryAnalytics(ctx, r)
		if err != nil {
			return fmt.Errorf("compute category breakdown: %w", err)
		}
		envelope.Analytics = &analyticsEmbed{
			Statistics:        stats,
			CategoryBreakdown: breakdown,
		}
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}
