package exchange

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"tally/internal/core"
)

const maxReportedErrors = 10

// ImportResult reports how an import went. Errors holds at most the first
// ten row-level problems; ErrorCount is the full tally.
type ImportResult struct {
	ImportedCount int      `json:"imported_count"`
	ErrorCount    int      `json:"error_count"`
	Errors        []string `json:"errors"`
	FilePath      string   `json:"file_path"`
}

// Import loads transactions from a CSV or JSON file. Rows missing a date or
// category, or carrying a zero amount, are skipped and reported rather than
// failing the whole import.
func (s *Service) Import(ctx context.Context, filePath, format string) (ImportResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open import file: %w", err)
	}
	if info.IsDir() {
		return ImportResult{}, fmt.Errorf("not a file: %s", filePath)
	}

	var imported int
	var rowErrors []string

	switch format {
	case FormatCSV:
		imported, rowErrors, err = s.importCSV(ctx, filePath)
	case FormatJSON:
		imported, rowErrors, err = s.importJSON(ctx, filePath)
	default:
		return ImportResult{}, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return ImportResult{}, err
	}

	reported := rowErrors
	if len(reported) > maxReportedErrors {
		reported = reported[:maxReportedErrors]
	}

	slog.InfoContext(ctx, "Imported ledger data",
		"file_path", filePath,
		"format", format,
		"imported_count", imported,
		"error_count", len(rowErrors))

	return ImportResult{
		ImportedCount: imported,
		ErrorCount:    len(rowErrors),
		Errors:        reported,
		FilePath:      filePath,
	}, nil
}

func (s *Service) importCSV(ctx context.Context, filePath string) (int, []string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, nil, fmt.Errorf("CSV appears to have no header row")
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
	}

	var imported int
	var rowErrors []string
	for i := 1; ; i++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", i, err))
			continue
		}

		row := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(record) {
				row[h] = record[j]
			}
		}

		if n, rowErr := s.insertRow(ctx, row, fmt.Sprintf("Row %d", i)); rowErr != "" {
			rowErrors = append(rowErrors, rowErr)
		} else {
			imported += n
		}
	}

	return imported, rowErrors, nil
}

func (s *Service) importJSON(ctx context.Context, filePath string) (int, []string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, nil, fmt.Errorf("read import file: %w", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		var wrapped struct {
			Expenses []map[string]any `json:"expenses"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.Expenses == nil {
			return 0, nil, fmt.Errorf("JSON invalid: expected a list or an object with an expenses list")
		}
		entries = wrapped.Expenses
	}

	var imported int
	var rowErrors []string
	for i, entry := range entries {
		row := make(map[string]string, len(entry))
		for k, v := range entry {
			row[strings.ToLower(strings.TrimSpace(k))] = stringifyValue(v)
		}
		if n, rowErr := s.insertRow(ctx, row, fmt.Sprintf("Entry %d", i+1)); rowErr != "" {
			rowErrors = append(rowErrors, rowErr)
		} else {
			imported += n
		}
	}

	return imported, rowErrors, nil
}

// insertRow maps header variants onto a transaction and inserts it. Returns
// (1, "") on success or (0, message) for a skipped row.
func (s *Service) insertRow(ctx context.Context, row map[string]string, label string) (int, string) {
	date := strings.TrimSpace(firstOf(row, "date", "transaction_date", "booking_date"))
	category := strings.TrimSpace(firstOf(row, "category", "cat"))
	if date == "" || category == "" {
		return 0, fmt.Sprintf("%s: Missing required fields (date, category)", label)
	}

	var amount float64
	if raw := strings.TrimSpace(firstOf(row, "amount", "value", "price")); raw != "" {
		var err error
		amount, err = core.ParseAmount(raw)
		if err != nil {
			return 0, fmt.Sprintf("%s: %v", label, err)
		}
	}
	if amount == 0 {
		return 0, fmt.Sprintf("%s: amount is 0 (skipped)", label)
	}

	currency := strings.TrimSpace(row["currency"])
	if currency == "" {
		currency = core.DefaultCurrency
	}

	t := core.Transaction{
		Date:          date,
		Amount:        amount,
		Category:      category,
		Subcategory:   strings.TrimSpace(firstOf(row, "subcategory", "sub_category")),
		Note:          strings.TrimSpace(firstOf(row, "note", "description")),
		TaxDeductible: parseBool(firstOf(row, "tax_deductible", "tax")),
		Currency:      currency,
		PaymentMethod: strings.TrimSpace(firstOf(row, "payment_method", "payment")),
	}

	if _, err := s.ledger.Insert(ctx, t); err != nil {
		return 0, fmt.Sprintf("%s: %v", label, err)
	}
	return 1, ""
}

func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// parseBool coerces the tax_deductible column. "1", "true", "yes", "y" and
// "t" count as true, everything else as false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		// JSON numbers arrive as float64.
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
