// Package core holds the ledger domain model: exact fixed-point money,
// timezone-free calendar dates, recurrence rules and one-off entries.
//
// This file contains the Money type and the functions for parsing monetary
// amounts from strings and converting between cents and display values.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an exact monetary value counted in minor currency units (cents).
// All arithmetic is integer arithmetic; conversion to display strings happens
// only at presentation boundaries.
type Money struct {
	Cents int64
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg returns the negated value.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Cmp returns -1, 0 or +1 comparing m against other.
func (m Money) Cmp(other Money) int {
	switch {
	case m.Cents < other.Cents:
		return -1
	case m.Cents > other.Cents:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Validate checks the amount is a positive magnitude. Stored amounts are
// always positive; sign is implied by the entry kind.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Div splits m into n parts using round-half-even on the quotient and returns
// the rounded per-part value together with the exact remainder, so that
// quotient*n + remainder == m always holds. Used for derived rates such as
// daily budget limits, where the rounding rule must be explicit.
func (m Money) Div(n int64) (Money, Money, error) {
	if n == 0 {
		return Money{}, Money{}, ErrDivisionByZero
	}
	neg := false
	c, d := m.Cents, n
	if c < 0 {
		c, neg = -c, !neg
	}
	if d < 0 {
		d, neg = -d, !neg
	}
	q := c / d
	r := c % d
	// Round half to even on the discarded fraction r/d.
	if 2*r > d || (2*r == d && q%2 == 1) {
		q++
	}
	if neg {
		q = -q
	}
	quotient := Money{Cents: q}
	remainder := Money{Cents: m.Cents - q*n}
	return quotient, remainder, nil
}

// String formats the amount as a plain decimal with two fraction digits
// ("12.34", "-0.05"). Presentation-only; never parsed back by the engine.
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive
// cents. Returns an error for invalid formats, negative values, or zero
// amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Amounts are stored as positive magnitudes.
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take the first two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
