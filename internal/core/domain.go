package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// Transaction kinds as stored by the backend. The Portuguese wire
	// values come from the hosted schema and are kept verbatim.
	Income  Kind = "Receita"
	Expense Kind = "Despesa"
)

// MEILimit is the fixed annual revenue ceiling for a Brazilian MEI, in reais.
const MEILimit = 81000.0

type (
	Kind string

	// Transaction is a single income or expense record. Amount is always a
	// positive magnitude; Kind decides whether it adds to or subtracts from
	// the balance. ID and OwnerID are assigned by the backend, so both are
	// zero on client-side drafts that have not been persisted yet.
	Transaction struct {
		ID          int64
		Date        string // ISO yyyy-MM-dd, lexicographically sortable
		Kind        Kind
		Category    string
		Description string
		Amount      float64
		OwnerID     string
	}

	// Category groups transactions of exactly one kind. Name uniqueness per
	// user is a convention, not enforced here.
	Category struct {
		ID      int64
		Name    string
		Kind    Kind
		OwnerID string
	}

	// Profile holds the mutable identity fields kept alongside the account.
	Profile struct {
		UserID      string
		FullName    string
		CompanyName string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ValidDate checks the yyyy-MM-dd shape used everywhere in this app. String
// dates keep comparisons lexicographic, so the format is strict.
func ValidDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := ValidDate(t.Date); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return ValidAmount(t.Amount)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}
