// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and rendering them the way the dashboard shows baht values.
package core

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// displayPlaces is the maximum number of fraction digits shown for an amount.
const displayPlaces = 3

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, as long
// as only one separator is present. Returns ErrInvalidAmount for invalid
// formats, negative values or zero.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",")+strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount with thousands separators and at most three
// fraction digits, trailing zeros dropped: 3500 -> "3,500", 1234.5 -> "1,234.5".
func FormatAmount(d decimal.Decimal) string {
	return humanize.Commaf(d.Round(displayPlaces).InexactFloat64())
}

// Percent returns part/whole*100. whole must be non-zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}

// FormatPercent renders a percentage with exactly one fraction digit.
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(1)
}
