package storage

import (
	"strings"

	"tally/internal/core"
)

// buildUpdate folds the non-nil patch fields into a SET clause and its
// arguments, in a fixed column order. Empty clause means nothing to update.
func buildUpdate(p core.TransactionPatch) (string, []any) {
	var sets []string
	var args []any

	if p.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *p.Date)
	}
	if p.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *p.Amount)
	}
	if p.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *p.Category)
	}
	if p.Subcategory != nil {
		sets = append(sets, "subcategory = ?")
		args = append(args, *p.Subcategory)
	}
	if p.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *p.Note)
	}
	if p.TaxDeductible != nil {
		sets = append(sets, "tax_deductible = ?")
		args = append(args, boolToInt(*p.TaxDeductible))
	}
	if p.Currency != nil {
		sets = append(sets, "currency = ?")
		args = append(args, *p.Currency)
	}
	if p.PaymentMethod != nil {
		sets = append(sets, "payment_method = ?")
		args = append(args, *p.PaymentMethod)
	}

	return strings.Join(sets, ", "), args
}
