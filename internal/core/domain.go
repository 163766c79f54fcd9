package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DefaultCurrency is stored on transactions that don't specify one.
// Currency is recorded but never converted.
const DefaultCurrency = "EUR"

// DateLayout is the calendar-day format used everywhere: no time, no zone.
const DateLayout = "2006-01-02"

type (
	// Transaction is one ledger row. The ID is assigned by the store and is
	// monotonic with insertion order.
	Transaction struct {
		ID            int64   `json:"id"`
		Date          string  `json:"date"`
		Amount        float64 `json:"amount"`
		Category      string  `json:"category"`
		Subcategory   string  `json:"subcategory"`
		Note          string  `json:"note"`
		TaxDeductible bool    `json:"tax_deductible"`
		Currency      string  `json:"currency"`
		PaymentMethod string  `json:"payment_method"`
	}

	// TransactionPatch carries the fields of an update request. Nil means
	// "leave unchanged"; an all-nil patch is rejected by the store.
	TransactionPatch struct {
		Date          *string
		Amount        *float64
		Category      *string
		Subcategory   *string
		Note          *string
		TaxDeductible *bool
		Currency      *string
		PaymentMethod *string
	}
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
)

// Validate checks the invariants every stored row must satisfy: a parseable
// calendar date, a finite amount and a non-empty category. Zero amounts are
// permitted here; importers reject them per row.
func (t Transaction) Validate() error {
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// IsEmpty reports whether the patch carries no changes.
func (p TransactionPatch) IsEmpty() bool {
	return p.Date == nil && p.Amount == nil && p.Category == nil &&
		p.Subcategory == nil && p.Note == nil && p.TaxDeductible == nil &&
		p.Currency == nil && p.PaymentMethod == nil
}
