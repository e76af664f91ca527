package extraction

import (
	"regexp"
	"strings"
	"time"

	"fjacquet/fatura-csv/internal/dateutils"
	"fjacquet/fatura-csv/internal/installment"
)

// ParseContext is the per-document state of one extraction run. It is created fresh for
// every document and never shared.
type ParseContext struct {
	Document            string
	ActiveAccountTag    string
	InTransactionRegion bool
	DocumentYearHint    int
	BillingDueDate      time.Time
	InstallmentSummary  installment.Summary
}

// BillingPeriod returns the period derived from the due date, or nil when unknown.
func (pc *ParseContext) BillingPeriod(offsetDays int) *dateutils.BillingPeriod {
	if pc.BillingDueDate.IsZero() {
		return nil
	}
	p := dateutils.BillingPeriodFor(pc.BillingDueDate, offsetDays)
	return &p
}

// findDueDate returns the first due date printed in the document.
func findDueDate(lines []string, patterns []*regexp.Regexp) (time.Time, bool) {
	for _, line := range lines {
		for _, re := range patterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			token := m[0]
			if len(m) > 1 {
				token = m[1]
			}
			if due, err := dateutils.ParseFullDate(strings.TrimSpace(token)); err == nil {
				return due, true
			}
		}
	}
	return time.Time{}, false
}
