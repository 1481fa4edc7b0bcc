package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.50", 1.5, true},
		{"1,50", 1.5, true},
		{" 250.00 ", 250, true},
		{"0.01", 0.01, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestValidDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-01-01", true},
		{"2025-12-31", true},
		{"2025-02-30", false},
		{"2025-1-1", false},
		{"01/01/2025", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        "2025-03-10",
		Kind:        Income,
		Category:    "Vendas",
		Description: "Serviço prestado",
		Amount:      150,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*Transaction)
		want error
	}{
		{"bad date", func(tx *Transaction) { tx.Date = "2025-13-01" }, ErrInvalidDate},
		{"bad kind", func(tx *Transaction) { tx.Kind = "Transfer" }, ErrInvalidKind},
		{"empty category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"empty description", func(tx *Transaction) { tx.Description = "" }, ErrEmptyDescription},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = -5 }, ErrInvalidAmount},
	}
	for _, tc := range cases {
		tx := good
		tc.mod(&tx)
		if err := tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	long := good
	long.Description = strings.Repeat("x", 201)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long description")
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Aluguel", Kind: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (Category{Name: "", Kind: Income}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Category{Name: strings.Repeat("x", 101), Kind: Income}).Validate(); err == nil {
		t.Fatalf("expected error for long name")
	}
	if err := (Category{Name: "ok", Kind: "Other"}).Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
