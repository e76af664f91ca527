// Package textutils holds the string transformations shared by the extraction engine and
// the report sink: accent folding, description cleanup and key normalization.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	multiSpaceRegex    = regexp.MustCompile(`\s+`)
	trailingDotRegex   = regexp.MustCompile(`\.[A-Z\s]+$`)
	contractTagRegex   = regexp.MustCompile(`-CT\s+\w+`)
	trailingDayMonth   = regexp.MustCompile(`\s+\d{2}/\d{2}$`)
	embeddedDateRegex  = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
	embeddedAmount     = regexp.MustCompile(`\d[\d.]*,\d{2}\b`)
	parcelaPhraseRegex = regexp.MustCompile(`\(?PARCELA\s+\d+\s*(?:DE|/)\s*\d+\)?`)
	nonAlnumRegex      = regexp.MustCompile(`[^A-Z0-9 ]+`)
)

// FoldAccents strips combining marks: "DEVOLUÇÃO" becomes "DEVOLUCAO".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldUpper folds accents and upper-cases, the canonical form for keyword checks.
func FoldUpper(s string) string {
	return strings.ToUpper(FoldAccents(s))
}

// CollapseSpaces trims and collapses runs of whitespace into single spaces.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// ContainsWord reports whether word appears in text on word boundaries, ignoring case
// and accents.
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	pattern := `(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(FoldUpper(word)) + `($|[^\p{L}\p{N}])`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(FoldUpper(text))
}

// ContainsAny reports whether any of the words appears in text (see ContainsWord).
func ContainsAny(text string, words []string) bool {
	for _, w := range words {
		if ContainsWord(text, w) {
			return true
		}
	}
	return false
}

// CleanDescription tidies a matched description: spaces are collapsed, a trailing
// category label is removed, as are trailing ".CITY" tails, "-CT xxx" contract tags and a
// trailing DD/MM counter.
func CleanDescription(desc string, categories []string) string {
	desc = CollapseSpaces(desc)
	upper := strings.ToUpper(desc)
	for _, category := range categories {
		c := strings.ToUpper(category)
		if c != "" && strings.HasSuffix(upper, c) && len(desc) > len(c) {
			desc = strings.TrimSpace(desc[:len(desc)-len(c)])
			break
		}
	}
	desc = trailingDotRegex.ReplaceAllString(desc, "")
	desc = contractTagRegex.ReplaceAllString(desc, "")
	desc = trailingDayMonth.ReplaceAllString(desc, "")
	return CollapseSpaces(desc)
}

// NormalizeForKey reduces a description to the form used for duplicate detection:
// accents folded, upper-cased, embedded dates, amounts and installment counters removed,
// punctuation dropped.
func NormalizeForKey(desc string) string {
	s := FoldUpper(desc)
	s = parcelaPhraseRegex.ReplaceAllString(s, " ")
	s = embeddedDateRegex.ReplaceAllString(s, " ")
	s = embeddedAmount.ReplaceAllString(s, " ")
	s = nonAlnumRegex.ReplaceAllString(s, " ")
	return CollapseSpaces(s)
}

// ContainsAnyFold reports whether any of the words occurs as a substring of text, ignoring
// case and accents. Keyword sets use this looser form so "ENCARGO" also hits "ENCARGOS".
func ContainsAnyFold(text string, words []string) bool {
	folded := FoldUpper(text)
	for _, w := range words {
		if w != "" && strings.Contains(folded, FoldUpper(w)) {
			return true
		}
	}
	return false
}
