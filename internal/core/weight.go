// Package core provides weight parsing utilities.
//
// Form input arrives as free text; this file turns it into kilograms and
// rejects anything that is not a plain positive decimal.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseWeightKg converts a decimal string to kilograms.
//
// It accepts both dot (12.5) and comma (12,5) decimal separators. Signs,
// exponents, NaN and Inf spellings are rejected, as are zero values.
//
// Examples:
//
//	ParseWeightKg("12.5") -> 12.5, nil
//	ParseWeightKg("12,5") -> 12.5, nil
//	ParseWeightKg("0")    -> 0, ErrInvalidWeight
//	ParseWeightKg("-1")   -> 0, ErrInvalidWeight
func ParseWeightKg(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidWeight
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidWeight
	}
	digits := 0
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidWeight
			}
			digits++
		}
	}
	if digits == 0 {
		return 0, ErrInvalidWeight
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidWeight
	}
	if v <= 0 {
		return 0, ErrInvalidWeight
	}
	return v, nil
}
