// Package currencyutils normalizes the monetary tokens found in Brazilian statements.
package currencyutils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/fatura-csv/internal/parsererror"
)

var (
	currencySymbolRegex = regexp.MustCompile(`(?i)R\$|BRL|US\$|\$`)
	spaceRegex          = regexp.MustCompile(`\s+`)
	numericRegex        = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Amount is a parsed monetary token. Magnitude is always non-negative; the sign carried
// by the token is kept apart so polarity rules can decide what it means.
type Amount struct {
	Magnitude decimal.Decimal
	// Negative is set by a leading or trailing minus, or by full parenthesization.
	Negative bool
	// Signed reports that the token carried any explicit sign ("+", "-" or parentheses).
	Signed bool
}

// Value returns the signed decimal value.
func (a Amount) Value() decimal.Decimal {
	if a.Negative {
		return a.Magnitude.Neg()
	}
	return a.Magnitude
}

// IsPositive reports whether the magnitude is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.Magnitude.GreaterThan(decimal.Zero)
}

// NormalizeAmount parses tokens like "1.234,56", "-R$ 80,00", "(12,30)" or "+ 5,00".
//
// When both "." and "," appear, "." is the thousands separator and "," the decimal one.
// A lone "," is the decimal separator. A lone "." (or none) is read as-is.
// Non-numeric input yields *parsererror.AmountParseError.
func NormalizeAmount(token string) (Amount, error) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		return Amount{}, &parsererror.AmountParseError{Token: token}
	}

	var result Amount
	s := raw
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		result.Negative, result.Signed = true, true
		s = s[1 : len(s)-1]
	}

	s = currencySymbolRegex.ReplaceAllString(s, "")
	s = spaceRegex.ReplaceAllString(s, "")

	switch {
	case strings.HasPrefix(s, "-"):
		result.Negative, result.Signed = true, true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		result.Signed = true
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		result.Negative, result.Signed = true, true
		s = s[:len(s)-1]
	}

	s = StandardizeAmount(s)
	if !numericRegex.MatchString(s) {
		return Amount{}, &parsererror.AmountParseError{Token: token}
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, &parsererror.AmountParseError{Token: token, Err: err}
	}
	result.Magnitude = value
	return result, nil
}

// StandardizeAmount rewrites the separators of an unsigned, symbol-free token so that
// decimal.NewFromString can read it.
func StandardizeAmount(s string) string {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		return strings.ReplaceAll(s, ",", ".")
	case hasComma:
		return strings.ReplaceAll(s, ",", ".")
	default:
		return s
	}
}

// FormatAmount renders an amount with two decimals and a dot separator, the layout used
// in CSV output.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatBRL renders an amount the way the statements print it, e.g. "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	fixed := amount.StringFixed(2)
	intPart, fracPart := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	return sign + "R$ " + grouped.String() + "," + fracPart
}
