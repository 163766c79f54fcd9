package core

import (
	"math"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Date: "2025-06-01", Amount: 12.5, Category: "food"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Negative and zero amounts are legal ledger rows.
	good.Amount = -3
	if err := good.Validate(); err != nil {
		t.Fatalf("negative amount should be valid, got %v", err)
	}
	good.Amount = 0
	if err := good.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}

	bads := []Transaction{
		{Date: "2025-13-01", Amount: 1, Category: "food"},
		{Date: "not-a-date", Amount: 1, Category: "food"},
		{Date: "", Amount: 1, Category: "food"},
		{Date: "2025-06-01", Amount: math.NaN(), Category: "food"},
		{Date: "2025-06-01", Amount: math.Inf(1), Category: "food"},
		{Date: "2025-06-01", Amount: 1, Category: ""},
		{Date: "2025-06-01", Amount: 1, Category: "   "},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionPatchIsEmpty(t *testing.T) {
	if !(TransactionPatch{}).IsEmpty() {
		t.Fatal("zero patch should be empty")
	}
	note := "coffee"
	if (TransactionPatch{Note: &note}).IsEmpty() {
		t.Fatal("patch with note should not be empty")
	}
}
