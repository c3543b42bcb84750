// Package core provides money and meal count parsing.
//
// Amounts and meal counts are decimals kept at full precision. They are
// persisted as canonical decimal strings and only rounded for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a strictly positive monetary amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Signs,
// exponents and thousands separators are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("0")     -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parsePlainDecimal(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseCount parses a non-negative meal count. Fractions are allowed.
func ParseCount(s string) (decimal.Decimal, error) {
	d, err := parsePlainDecimal(s)
	if err != nil {
		return decimal.Zero, ErrInvalidCount
	}
	if err := ValidateCount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func ValidateCount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidCount
	}
	return nil
}

func parsePlainDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.ContainsAny(s, "+-eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromString(s)
}

// FormatMoney renders an amount with two decimals for display.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// SumDecimals adds values from a string-encoded column. Empty strings count
// as zero.
func SumDecimals(values []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range values {
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}
