package storage

import "strings"

// Filter is the conjunction of optional search predicates. Every set field
// contributes exactly one parameterized clause; the fold order is fixed so
// the paginated query and the count query always see the same predicate
// list in the same positions.
//
// Note that an empty Filter matches the whole ledger: search deliberately
// does not default to month-to-date the way the CRUD listing does.
type Filter struct {
	StartDate     string   // inclusive lower bound, "YYYY-MM-DD"
	EndDate       string   // inclusive upper bound
	Category      string   // exact match
	MinAmount     *float64 // inclusive
	MaxAmount     *float64 // inclusive
	NoteContains  string   // case-sensitive substring
	TaxDeductible *bool
}

// where returns the WHERE clause (starting with " WHERE 1=1") and its
// arguments. The clause is shared verbatim between Search and its count so
// total_count always reflects the same predicate set.
func (f Filter) where() (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString(" WHERE 1=1")

	if f.StartDate != "" {
		sb.WriteString(" AND date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		sb.WriteString(" AND date <= ?")
		args = append(args, f.EndDate)
	}
	if f.Category != "" {
		sb.WriteString(" AND category = ?")
		args = append(args, f.Category)
	}
	if f.MinAmount != nil {
		sb.WriteString(" AND amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		sb.WriteString(" AND amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if f.NoteContains != "" {
		// instr is case-sensitive; LIKE would fold ASCII case.
		sb.WriteString(" AND instr(note, ?) > 0")
		args = append(args, f.NoteContains)
	}
	if f.TaxDeductible != nil {
		sb.WriteString(" AND tax_deductible = ?")
		args = append(args, boolToInt(*f.TaxDeductible))
	}

	return sb.String(), args
}
