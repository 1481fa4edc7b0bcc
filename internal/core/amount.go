// Package core defines the domain records shared by the stores, the
// aggregation code and the gateway implementations.
//
// This file contains amount parsing and validation. Amounts travel as
// positive decimal magnitudes; the transaction kind carries the sign.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user input to a positive amount in reais.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// empty strings and anything that does not parse to a finite positive number
// are rejected with ErrInvalidAmount; input is never silently coerced to zero.
//
// Examples:
//
//	ParseAmount("1500")    -> 1500, nil
//	ParseAmount("12,34")   -> 12.34, nil
//	ParseAmount("-5")      -> 0, ErrInvalidAmount
//	ParseAmount("abc")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive magnitudes allowed; the kind carries the sign
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := ValidAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidAmount rejects non-finite and non-positive values. Every amount must
// pass this check before a record is persisted or aggregated.
func ValidAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
