package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundToCurrency rounds half-up to the company's currency precision.
func RoundToCurrency(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Round(precision)
}

// DecimalEqualWithin reports whether a and b differ by no more than epsilon.
func DecimalEqualWithin(a, b, epsilon decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(epsilon.Abs()) <= 0
}

// EpsilonForPrecision returns half a unit in the last place for the given
// currency precision, e.g. 0.005 for precision 2.
func EpsilonForPrecision(precision int32) decimal.Decimal {
	return decimal.New(5, -(precision + 1))
}

func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	return dec, nil
}
