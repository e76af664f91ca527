package installment

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/fatura-csv/internal/currencyutils"
)

// Summary is what the invoice says about installments due on future invoices.
type Summary struct {
	Found       bool
	FutureTotal decimal.Decimal
	// Line is the 1-based line where the total was read, 0 when absent.
	Line int
}

var (
	amountInText = regexp.MustCompile(`\d[\d.]*,\d{2}`)
	amountOnly   = regexp.MustCompile(`^\s*(?:R\$\s*)?(\d[\d.]*,\d{2})\s*$`)
)

// ParseSummary scans a document for the future-installments region. Marker patterns
// identify the region; the total is read after the marker on the same line or from an
// amount-only line right below it.
func ParseSummary(lines []string, markers []*regexp.Regexp) Summary {
	var s Summary
	for i, line := range lines {
		loc := firstMatch(line, markers)
		if loc == nil {
			continue
		}
		s.Found = true

		if token := amountInText.FindString(line[loc[1]:]); token != "" {
			if amount, err := currencyutils.NormalizeAmount(token); err == nil {
				s.FutureTotal, s.Line = amount.Magnitude, i+1
				return s
			}
		}
		if j := nextNonBlank(lines, i+1); j >= 0 {
			if m := amountOnly.FindStringSubmatch(lines[j]); m != nil {
				if amount, err := currencyutils.NormalizeAmount(m[1]); err == nil {
					s.FutureTotal, s.Line = amount.Magnitude, j+1
					return s
				}
			}
		}
	}
	return s
}

// CompileMarkers compiles summary marker patterns.
func CompileMarkers(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func firstMatch(line string, markers []*regexp.Regexp) []int {
	for _, re := range markers {
		if loc := re.FindStringIndex(line); loc != nil {
			return loc
		}
	}
	return nil
}

func nextNonBlank(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}
