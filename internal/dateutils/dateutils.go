// Package dateutils turns the partial and textual dates printed on statements into
// absolute calendar dates.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fjacquet/fatura-csv/internal/parsererror"
	"fjacquet/fatura-csv/internal/textutils"
)

// Layouts used for parsing and output.
const (
	DateLayoutBR  = "02/01/2006"
	DateLayoutISO = "2006-01-02"
	DateLayoutDMY = "02-01-2006"
)

var ptBRMonths = map[string]time.Month{
	"jan": time.January,
	"fev": time.February,
	"mar": time.March,
	"abr": time.April,
	"mai": time.May,
	"jun": time.June,
	"jul": time.July,
	"ago": time.August,
	"set": time.September,
	"out": time.October,
	"nov": time.November,
	"dez": time.December,
}

var (
	textualDateRegex = regexp.MustCompile(`^(\d{1,2})\s+de\s+(\p{L}+)\.?\s+(?:de\s+)?(\d{4})$`)
	dayMonthRegex    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	spacesRegex      = regexp.MustCompile(`\s+`)
)

// MonthFromAbbrev resolves a Portuguese month abbreviation ("out", "Out.", "outubro").
func MonthFromAbbrev(s string) (time.Month, bool) {
	key := strings.ToLower(textutils.FoldAccents(strings.TrimSuffix(strings.TrimSpace(s), ".")))
	if len(key) < 3 {
		return 0, false
	}
	m, ok := ptBRMonths[key[:3]]
	return m, ok
}

// ParseTextualDate reads dates like "03 de out. 2024". When the month abbreviation is not
// recognized the input is returned unchanged with ok=false so callers can skip the line.
func ParseTextualDate(s string) (time.Time, string, bool) {
	clean := CleanDateString(s)
	m := textualDateRegex.FindStringSubmatch(clean)
	if m == nil {
		return time.Time{}, s, false
	}
	month, ok := MonthFromAbbrev(m[2])
	if !ok {
		return time.Time{}, s, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	if day < 1 || day > daysIn(month, year) {
		return time.Time{}, s, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), s, true
}

// ParseFullDate accepts any date that carries its own year: textual pt-BR dates,
// DD/MM/YYYY, DD-MM-YYYY and YYYY-MM-DD.
func ParseFullDate(s string) (time.Time, error) {
	clean := CleanDateString(s)
	if t, _, ok := ParseTextualDate(clean); ok {
		return t, nil
	}
	for _, layout := range []string{DateLayoutBR, DateLayoutDMY, DateLayoutISO} {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &parsererror.DateParseError{Token: s, Reason: "no known layout"}
}

// ParseDayMonth validates a "DD/MM" token. February accepts the 29th; the year is not
// known yet.
func ParseDayMonth(s string) (int, time.Month, error) {
	m := dayMonthRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, &parsererror.DateParseError{Token: s, Reason: "expected DD/MM"}
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, &parsererror.DateParseError{Token: s, Reason: "month out of range"}
	}
	if day < 1 || day > daysIn(time.Month(month), 2024) {
		return 0, 0, &parsererror.DateParseError{Token: s, Reason: "day out of range"}
	}
	return day, time.Month(month), nil
}

// FormatBR renders dd/mm/yyyy with zero padding.
func FormatBR(t time.Time) string {
	return t.Format(DateLayoutBR)
}

// FormatMonth renders MM/YYYY, the grouping key of monthly reports.
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%d", int(t.Month()), t.Year())
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(s string) string {
	return spacesRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// DateOf builds a UTC date, clamping the day to the month length (29/02 in a common
// year becomes 28/02).
func DateOf(year int, month time.Month, day int) time.Time {
	if last := daysIn(month, year); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
