package supabase

import (
	"encoding/json"
	"fmt"

	"caixamei/internal/core"
	"caixamei/internal/gateway"
)

// Wire shapes as PostgREST returns them. Numeric columns arrive as JSON
// numbers or strings depending on the column type, so amounts go through
// json.Number and are validated before anything reaches the cache. Rows
// that fail validation are rejected, not coerced.

type txRecord struct {
	ID          int64       `json:"id"`
	Date        string      `json:"date"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	UserID      string      `json:"user_id"`
}

func (r txRecord) toCore() (core.Transaction, error) {
	if r.ID == 0 {
		return core.Transaction{}, fmt.Errorf("%w: transaction without id", gateway.ErrMalformedRecord)
	}
	amount, err := r.Amount.Float64()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: transaction %d: amount %q", gateway.ErrMalformedRecord, r.ID, r.Amount)
	}
	kind := core.Kind(r.Type)
	if !kind.Valid() {
		return core.Transaction{}, fmt.Errorf("%w: transaction %d: kind %q", gateway.ErrMalformedRecord, r.ID, r.Type)
	}
	if err := core.ValidDate(r.Date); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: transaction %d: date %q", gateway.ErrMalformedRecord, r.ID, r.Date)
	}
	return core.Transaction{
		ID:          r.ID,
		Date:        r.Date,
		Kind:        kind,
		Category:    r.Category,
		Description: r.Description,
		Amount:      amount,
		OwnerID:     r.UserID,
	}, nil
}

func txPayload(t core.Transaction) map[string]any {
	return map[string]any{
		"date":        t.Date,
		"type":        string(t.Kind),
		"category":    t.Category,
		"description": t.Description,
		"amount":      t.Amount,
		"user_id":     t.OwnerID,
	}
}

type catRecord struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

func (r catRecord) toCore() (core.Category, error) {
	if r.ID == 0 {
		return core.Category{}, fmt.Errorf("%w: category without id", gateway.ErrMalformedRecord)
	}
	kind := core.Kind(r.Type)
	if !kind.Valid() {
		return core.Category{}, fmt.Errorf("%w: category %d: kind %q", gateway.ErrMalformedRecord, r.ID, r.Type)
	}
	return core.Category{
		ID:      r.ID,
		Name:    r.Name,
		Kind:    kind,
		OwnerID: r.UserID,
	}, nil
}

func catPayload(c core.Category) map[string]any {
	return map[string]any{
		"name":    c.Name,
		"type":    string(c.Kind),
		"user_id": c.OwnerID,
	}
}

type profileRecord struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
}

func (r profileRecord) toCore() core.Profile {
	return core.Profile{
		UserID:      r.ID,
		FullName:    r.FullName,
		CompanyName: r.CompanyName,
	}
}

// normalizeFields maps domain values in an update patch onto their wire
// representations.
func normalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if kind, ok := v.(core.Kind); ok {
			out[k] = string(kind)
			continue
		}
		out[k] = v
	}
	return out
}
