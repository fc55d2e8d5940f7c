// Package money parses free-form monetary amounts from structured replies.
// It tolerates both decimal conventions (1.234,56 and 1,234.56), currency
// prefixes, and surrounding chatter, but refuses anything ambiguous.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches the first number-looking token: digits with optional
// grouping and one optional decimal part.
var amountPattern = regexp.MustCompile(`-?\d{1,3}(?:[.,\s]\d{3})*(?:[.,]\d{1,2})?|-?\d+(?:[.,]\d{1,2})?`)

// ParseAmount extracts a positive monetary amount from raw message text.
// Returns an error when no amount can be parsed or the value is not
// strictly positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty message")
	}

	// Strip common currency markers before matching.
	for _, marker := range []string{"r$", "R$", "$", "reais", "real", "brl", "BRL"} {
		s = strings.ReplaceAll(s, marker, " ")
	}

	match := amountPattern.FindString(s)
	if match == "" {
		return decimal.Zero, fmt.Errorf("no amount found in %q", raw)
	}

	normalized, err := normalizeSeparators(match)
	if err != nil {
		return decimal.Zero, err
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", match, err)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	return d, nil
}

// normalizeSeparators rewrites a matched token into canonical dot-decimal
// form. The last separator wins as the decimal mark when it is followed by
// exactly one or two digits; everything before it is grouping.
func normalizeSeparators(s string) (string, error) {
	s = strings.ReplaceAll(s, " ", "")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot == -1 && lastComma == -1:
		return s, nil
	case lastDot != -1 && lastComma != -1:
		// Both present: the later one is the decimal mark.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
		return s, nil
	default:
		sep := "."
		idx := lastDot
		if lastComma != -1 {
			sep = ","
			idx = lastComma
		}
		digitsAfter := len(s) - idx - 1
		if strings.Count(s, sep) > 1 || digitsAfter == 3 {
			// Multiple separators, or exactly three trailing digits:
			// grouping, not a decimal mark.
			s = strings.ReplaceAll(s, sep, "")
			return s, nil
		}
		if digitsAfter < 1 || digitsAfter > 2 {
			return "", fmt.Errorf("ambiguous amount %q", s)
		}
		if sep == "," {
			s = strings.Replace(s, ",", ".", 1)
		}
		return s, nil
	}
}
