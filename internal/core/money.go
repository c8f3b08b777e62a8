// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts expressed in the
// smallest whole currency unit and for integer rounding used by projections.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to whole currency units with half-up rounding.
//
// Thousands separators (",", "_" and spaces) are ignored and an optional
// fractional part is rounded on its first digit, since the domain has no
// fractional minor units. Negative values and values above MaxAmount are
// rejected; zero is allowed here and left to Money.Validate where a positive
// amount is required.
//
// Examples:
//
//	ParseAmount("3000000")     -> 3000000, nil
//	ParseAmount("3,000,000")   -> 3000000, nil
//	ParseAmount("1500000.5")   -> 1500001, nil
//	ParseAmount("1500000.49")  -> 1500000, nil
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)

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
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > MaxAmount {
		return 0, ErrInvalidAmount
	}
	if fracPart != "" && fracPart[0] >= '5' {
		iv++
	}
	if iv > MaxAmount {
		return 0, ErrInvalidAmount
	}
	return iv, nil
}

// CeilDiv divides a non-negative numerator by a positive denominator, rounding up.
func CeilDiv(n, d int64) int64 {
	if n <= 0 {
		return 0
	}
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

// SaturatingAdd returns a+b, pinned to the int64 range instead of wrapping.
func SaturatingAdd(a, b int64) int64 {
	sum := a + b
	switch {
	case a > 0 && b > 0 && sum < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}

// SaturatingSub returns a-b, pinned to the int64 range instead of wrapping.
func SaturatingSub(a, b int64) int64 {
	if b == math.MinInt64 {
		if a >= 0 {
			return math.MaxInt64
		}
		return a - b
	}
	return SaturatingAdd(a, -b)
}

// MaxZero clamps negative values to zero.
func MaxZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Format renders units with thousands separators, e.g. 1500000 -> "1,500,000".
func (m Money) Format() string {
	return FormatUnits(m.Units)
}

// FormatUnits renders a signed amount with thousands separators.
func FormatUnits(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
