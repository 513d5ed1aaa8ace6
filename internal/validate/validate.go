// Package validate checks operator input before it reaches the catalog or
// the sale engine.
package validate

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

var (
	// ErrEmpty is returned for blank text input
	ErrEmpty = errors.New("cannot be empty")

	// ErrNumericOnly is returned for text fields made only of digits
	ErrNumericOnly = errors.New("cannot be only numbers")

	// ErrNotANumber is returned when a decimal field does not parse
	ErrNotANumber = errors.New("enter a valid number")

	// ErrNotAnInteger is returned when an integer field does not parse
	ErrNotAnInteger = errors.New("enter a valid integer")

	// ErrNegative is returned for numeric fields below zero
	ErrNegative = errors.New("cannot be negative")

	// ErrDiscountRange is returned for a discount outside 0-100
	ErrDiscountRange = errors.New("discount must be between 0 and 100")
)

// Text trims value and rejects it when blank or, unless allowDigits is
// set, when it consists of digits only.
func Text(value string, allowDigits bool) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmpty
	}
	if !allowDigits && IsDigits(value) {
		return "", ErrNumericOnly
	}
	return value, nil
}

// IsDigits reports whether s is non-empty and every rune is a decimal digit.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Float parses a finite decimal number
func Float(value string) (float64, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(value))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotANumber
	}
	return v, nil
}

// NonNegativeFloat parses a finite decimal number >= 0
func NonNegativeFloat(value string) (float64, error) {
	v, err := Float(value)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrNegative
	}
	return v, nil
}

// Int parses a base-10 integer
func Int(value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, ErrNotAnInteger
	}
	return v, nil
}

// NonNegativeInt parses a base-10 integer >= 0
func NonNegativeInt(value string) (int, error) {
	v, err := Int(value)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrNegative
	}
	return v, nil
}

// Discount parses a discount percentage. Blank input means no discount.
// Invalid input yields 0 together with the reason, so callers can degrade
// to no discount instead of failing.
func Discount(value string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	d, err := Float(value)
	if err != nil {
		return 0, err
	}
	if d < 0 || d > 100 {
		return 0, ErrDiscountRange
	}
	return d, nil
}
