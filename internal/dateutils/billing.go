package dateutils

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// BillingPeriod is the month/year an invoice covers.
type BillingPeriod struct {
	Month time.Month
	Year  int
}

// BillingPeriodFor derives the billing period from a due date: the period is the month
// containing dueDate minus offsetDays.
func BillingPeriodFor(dueDate time.Time, offsetDays int) BillingPeriod {
	start := dueDate.AddDate(0, 0, -offsetDays)
	return BillingPeriod{Month: start.Month(), Year: start.Year()}
}

// MonthsBefore returns how many months the given month sits before the billing month,
// wrapped into (-6, 6]. A purchase in November on a January bill gives 2.
func (p BillingPeriod) MonthsBefore(month time.Month) int {
	d := (int(p.Month) - int(month) + 12) % 12
	if d > 6 {
		d -= 12
	}
	return d
}

// MonthsBeforeDate returns how many calendar months t falls before the billing month,
// counting years. Negative when t is later.
func (p BillingPeriod) MonthsBeforeDate(t time.Time) int {
	return (p.Year-t.Year())*12 + int(p.Month) - int(t.Month())
}

// YearFor resolves the year of a day/month that belongs to this billing period. The
// month is placed at its nearest calendar position around the billing month, so November
// on a January bill is the previous year and January on a December bill the next one.
func (p BillingPeriod) YearFor(month time.Month) int {
	d := p.MonthsBefore(month)
	switch {
	case d > 0 && month > p.Month:
		return p.Year - 1
	case d < 0 && month < p.Month:
		return p.Year + 1
	default:
		return p.Year
	}
}

var yearTokenRegex = regexp.MustCompile(`\b(\d{4})\b`)

// DocumentYearHint counts the 4-digit years in [minYear, maxYear] across the lines and
// returns the most frequent one. Years whose count reaches ratio times the top count are
// considered comparably frequent and the earliest of them wins.
func DocumentYearHint(lines []string, minYear, maxYear int, ratio float64) (int, bool) {
	counts := make(map[int]int)
	for _, line := range lines {
		for _, m := range yearTokenRegex.FindAllStringSubmatch(line, -1) {
			year, err := strconv.Atoi(m[1])
			if err != nil || year < minYear || year > maxYear {
				continue
			}
			counts[year]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}

	top := 0
	for _, c := range counts {
		if c > top {
			top = c
		}
	}
	var candidates []int
	for year, c := range counts {
		if float64(c) >= ratio*float64(top) {
			candidates = append(candidates, year)
		}
	}
	sort.Ints(candidates)
	return candidates[0], true
}
