package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyStripper = strings.NewReplacer("$", "", ",", "") //nolint:gochecknoglobals // immutable

// ParseCurrency converts "$1,234.56", "5.00", "" or "-" to a decimal.
// Blank and dash mean zero.
func ParseCurrency(raw string) (decimal.Decimal, error) {
	v := currencyStripper.Replace(strings.TrimSpace(raw))
	if v == "" || v == "-" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: Cannot convert '%s' to currency", ErrInvalidCurrency, raw)
	}
	return d, nil
}

// ParsePoints is lenient: anything unparsable is zero.
func ParsePoints(raw string) decimal.Decimal {
	v := strings.TrimSpace(raw)
	if v == "" || v == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}
