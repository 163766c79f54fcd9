package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the ledger store. It owns the only mutable state in
// the system; every analytics call recomputes from it.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// One writer at a time with a bounded lock wait; readers stay concurrent.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, date, amount, category, subcategory, note, tax_deductible, currency, payment_method"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var taxDeductible int64
	err := row.Scan(&t.ID, &t.Date, &t.Amount, &t.Category, &t.Subcategory,
		&t.Note, &taxDeductible, &t.Currency, &t.PaymentMethod)
	if err != nil {
		return core.Transaction{}, err
	}
	t.TaxDeductible = taxDeductible != 0
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Insert stores a new transaction and returns its id. Ids are assigned by
// SQLite and grow with insertion order.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) (int64, error) {
	if t.Currency == "" {
		t.Currency = core.DefaultCurrency
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions(date, amount, category, subcategory, note, tax_deductible, currency, payment_method)
		VALUES (?,?,?,?,?,?,?,?)`,
		t.Date, t.Amount, t.Category, t.Subcategory, t.Note,
		boolToInt(t.TaxDeductible), t.Currency, t.PaymentMethod)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"date", t.Date,
		"amount", t.Amount,
		"category", t.Category)

	return id, nil
}

// GetByID returns one transaction or core.ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// Update applies the non-nil fields of patch to an existing row and returns
// the updated transaction. The existence check runs before the update so a
// missing id reports core.ErrNotFound rather than a silent no-op.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return core.Transaction{}, err
	}

	set, args := buildUpdate(patch)
	if set == "" {
		return core.Transaction{}, core.ErrNoFieldsToUpdate
	}
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET "+set+" WHERE id = ?", args...); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes one row; core.ErrNotFound when the id does not exist.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM transactions WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check transaction %d: %w", id, err)
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListRange returns all rows in the inclusive range, newest first with a
// stable id tie-break.
func (r *SQLiteRepository) ListRange(ctx context.Context, start, end string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE date BETWEEN ? AND ?
		ORDER BY date DESC, id DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// Search runs one filtered, paginated select plus a count sharing the same
// predicate set. Limit and offset are passed through as given.
func (r *SQLiteRepository) Search(ctx context.Context, f Filter, limit, offset int64) ([]core.Transaction, int64, error) {
	where, args := f.where()

	queryArgs := append(append([]any{}, args...), limit, offset)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions"+where+
			" ORDER BY date DESC, id DESC LIMIT ? OFFSET ?", queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("search transactions: %w", err)
	}
	results, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	return results, total, nil
}

// SumRange returns the summed amount over a range, optionally restricted to
// one category. Empty ranges sum to 0.
func (r *SQLiteRepository) SumRange(ctx context.Context, start, end, category string) (float64, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE date BETWEEN ? AND ?"
	args := []any{start, end}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	var total float64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum range: %w", err)
	}
	return total, nil
}

// CategoryTotals groups the range by category, ascending by category name.
// Categories without rows are simply absent.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, start, end, category string) ([]core.CategoryTotal, error) {
	query := `
		SELECT category, SUM(amount) AS total_amount
		FROM transactions
		WHERE date BETWEEN ? AND ?`
	args := []any{start, end}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " GROUP BY category ORDER BY category ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// CategoryStats returns count/sum/avg/min/max per category, ordered by total
// amount descending.
func (r *SQLiteRepository) CategoryStats(ctx context.Context, start, end string) ([]core.CategoryStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category,
		       COUNT(*) AS count,
		       SUM(amount) AS total,
		       AVG(amount) AS average,
		       MIN(amount) AS min_amount,
		       MAX(amount) AS max_amount
		FROM transactions
		WHERE date BETWEEN ? AND ?
		GROUP BY category
		ORDER BY total DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryStat
	for rows.Next() {
		var cs core.CategoryStat
		if err := rows.Scan(&cs.Category, &cs.Count, &cs.Total, &cs.Average, &cs.Min, &cs.Max); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category stats: %w", err)
	}
	return out, nil
}

// periodExpr maps a grouping granularity to the SQL projection used as the
// period key. The week token is the calendar week-of-year ("YYYY-Www",
// Monday-based, counted from Jan 1), not the ISO 8601 week. Unknown values
// group by month.
func periodExpr(groupBy string) string {
	switch groupBy {
	case "day":
		return "date"
	case "week":
		return "strftime('%Y-W%W', date)"
	default:
		return "strftime('%Y-%m', date)"
	}
}

// PeriodStats groups the range by the chosen period key. Only periods with
// at least one row come back, ascending by period string.
func (r *SQLiteRepository) PeriodStats(ctx context.Context, groupBy, start, end string) ([]core.PeriodStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+periodExpr(groupBy)+` AS period,
		       COUNT(*) AS expense_count,
		       SUM(amount) AS total,
		       AVG(amount) AS average,
		       MIN(amount) AS min_amount,
		       MAX(amount) AS max_amount
		FROM transactions
		WHERE date BETWEEN ? AND ?
		GROUP BY period
		ORDER BY period ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("period stats: %w", err)
	}
	defer rows.Close()

	var out []core.PeriodStat
	for rows.Next() {
		var ps core.PeriodStat
		if err := rows.Scan(&ps.Period, &ps.Count, &ps.Total, &ps.Average, &ps.Min, &ps.Max); err != nil {
			return nil, fmt.Errorf("scan period stat: %w", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period stats: %w", err)
	}
	return out, nil
}

// RangeStats returns the overall count/sum/avg/min/max for a range. All
// numeric fields are 0 for an empty range.
func (r *SQLiteRepository) RangeStats(ctx context.Context, start, end string) (core.RangeStats, error) {
	var s core.RangeStats
	var total, average, min, max sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(amount), AVG(amount), MIN(amount), MAX(amount)
		FROM transactions
		WHERE date BETWEEN ? AND ?`, start, end).
		Scan(&s.Count, &total, &average, &min, &max)
	if err != nil {
		return core.RangeStats{}, fmt.Errorf("range stats: %w", err)
	}
	s.Total = total.Float64
	s.Average = average.Float64
	s.Min = min.Float64
	s.Max = max.Float64
	return s, nil
}

// TopDay returns the day with the highest summed amount, or nil for an empty
// range. Ties resolve to whichever row SQLite returns first for the
// descending-sum ordering; no stricter tie-break is promised.
func (r *SQLiteRepository) TopDay(ctx context.Context, start, end string) (*core.DayTotal, error) {
	var dt core.DayTotal
	err := r.db.QueryRowContext(ctx, `
		SELECT date, SUM(amount) AS daily_total
		FROM transactions
		WHERE date BETWEEN ? AND ?
		GROUP BY date
		ORDER BY daily_total DESC
		LIMIT 1`, start, end).Scan(&dt.Date, &dt.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top day: %w", err)
	}
	return &dt, nil
}

// TopCategory returns the category with the highest summed amount, or nil
// for an empty range. Same store-order tie behavior as TopDay.
func (r *SQLiteRepository) TopCategory(ctx context.Context, start, end string) (*core.CategoryTotal, error) {
	var ct core.CategoryTotal
	err := r.db.QueryRowContext(ctx, `
		SELECT category, SUM(amount) AS category_total
		FROM transactions
		WHERE date BETWEEN ? AND ?
		GROUP BY category
		ORDER BY category_total DESC
		LIMIT 1`, start, end).Scan(&ct.Category, &ct.TotalAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top category: %w", err)
	}
	return &ct, nil
}

// MonthlyCategoryAverages averages each category's per-month sums across the
// months that had any activity for it. Months without activity don't count
// as zero; they are simply absent from the inner grouping.
func (r *SQLiteRepository) MonthlyCategoryAverages(ctx context.Context, start, end string) ([]core.CategoryMonthlyAvg, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, AVG(monthly_total) AS avg_monthly_spend
		FROM (
			SELECT category,
			       strftime('%Y-%m', date) AS month,
			       SUM(amount) AS monthly_total
			FROM transactions
			WHERE date BETWEEN ? AND ?
			GROUP BY category, month
		)
		GROUP BY category`, start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly category averages: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryMonthlyAvg
	for rows.Next() {
		var ca core.CategoryMonthlyAvg
		if err := rows.Scan(&ca.Category, &ca.AvgMonthly); err != nil {
			return nil, fmt.Errorf("scan category average: %w", err)
		}
		out = append(out, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category averages: %w", err)
	}
	return out, nil
}

// TaxDeductibleRange returns the tax-deductible rows of a range, oldest
// first, optionally restricted to one category.
func (r *SQLiteRepository) TaxDeductibleRange(ctx context.Context, start, end, category string) ([]core.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE date BETWEEN ? AND ?
		  AND tax_deductible = 1`
	args := []any{start, end}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tax deductible range: %w", err)
	}
	return collectTransactions(rows)
}
