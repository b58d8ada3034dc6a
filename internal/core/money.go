// Package core holds the domain records (transactions, goals, users) and
// the money/date primitives shared by every backend and the report engine.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimalToCents converts a user-entered euro amount to cents.
//
// Both "12.34" and "12,34" are accepted. Digits past the second
// decimal place round half-up on the third ("1.005" becomes 101).
// Signs are rejected: amounts are stored as positive cents and the
// transaction kind decides direction. A result of zero cents is an
// error.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if s[0] == '+' || s[0] == '-' {
		return 0, ErrInvalidAmount
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if iv > math.MaxInt64/100 {
		return 0, ErrInvalidAmount
	}

	cents := iv * 100
	switch {
	case len(fracPart) >= 2:
		cents += int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			cents++
		}
	case len(fracPart) == 1:
		cents += int64(fracPart[0]-'0') * 10
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Euros returns the euro value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}
