// Package installment decides whether a statement line is an installment of an earlier
// purchase ("parcela") and cross-checks installment totals against the invoice summary.
package installment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/fatura-csv/internal/dateutils"
	"fjacquet/fatura-csv/internal/textutils"
)

// Signal names the evidence behind a verdict.
type Signal string

const (
	SignalCounters      Signal = "counters"
	SignalParcela       Signal = "parcela"
	SignalMonthDistance Signal = "month-distance"
)

// Verdict is the classifier's answer for one line.
type Verdict struct {
	IsInstallment bool
	// Counters is "current/total" when the description carried them.
	Counters string
	Signals  []Signal
}

// Thresholds tune the month-distance signal. Distance applies normally; HeavyDistance
// applies when the invoice reports material future installments (MaterialTotal or more).
type Thresholds struct {
	Distance      int
	HeavyDistance int
	MaterialTotal decimal.Decimal
}

// DefaultThresholds are the empirically tuned values used by the CLI.
func DefaultThresholds() Thresholds {
	return Thresholds{Distance: 2, HeavyDistance: 1, MaterialTotal: decimal.NewFromInt(1)}
}

// Classifier applies the signals for one document.
type Classifier struct {
	thresholds Thresholds
	period     *dateutils.BillingPeriod
	heavy      bool
}

// NewClassifier builds a classifier. period may be nil when the due date is unknown, in
// which case only description signals are used.
func NewClassifier(th Thresholds, period *dateutils.BillingPeriod, summary Summary) *Classifier {
	heavy := summary.Found && summary.FutureTotal.GreaterThanOrEqual(th.MaterialTotal) && summary.FutureTotal.IsPositive()
	return &Classifier{thresholds: th, period: period, heavy: heavy}
}

// Threshold returns the month distance currently in force.
func (c *Classifier) Threshold() int {
	if c.heavy {
		return c.thresholds.HeavyDistance
	}
	return c.thresholds.Distance
}

// Classify looks at the raw description and the printed month of a line. The month is
// placed around the billing month, as for a day/month date.
func (c *Classifier) Classify(rawDescription string, month time.Month) Verdict {
	distance, known := 0, false
	if c.period != nil && month >= time.January && month <= time.December {
		distance, known = c.period.MonthsBefore(month), true
	}
	return c.classify(rawDescription, distance, known)
}

// ClassifyDated is Classify for lines that print a full date: the distance to the billing
// month counts whole years, so an old purchase is not mistaken for a recent month.
func (c *Classifier) ClassifyDated(rawDescription string, date time.Time) Verdict {
	if c.period == nil || date.IsZero() {
		return c.classify(rawDescription, 0, false)
	}
	distance := c.period.MonthsBeforeDate(date)
	if distance < 0 || distance > 6 {
		// Outside the window a card statement can carry; the printed date stands.
		return c.classify(rawDescription, 0, false)
	}
	return c.classify(rawDescription, distance, true)
}

func (c *Classifier) classify(rawDescription string, distance int, known bool) Verdict {
	var v Verdict

	if cur, total, ok := CounterPair(rawDescription); ok {
		v.Counters = fmt.Sprintf("%02d/%02d", cur, total)
		v.Signals = append(v.Signals, SignalCounters)
	}
	if counters, ok := textutils.ParcelaInfo(rawDescription); ok {
		if v.Counters == "" {
			v.Counters = counters
		}
		v.Signals = append(v.Signals, SignalParcela)
	}
	if known && distance >= c.Threshold() {
		v.Signals = append(v.Signals, SignalMonthDistance)
	}

	v.IsInstallment = len(v.Signals) > 0
	return v
}

var counterRegex = regexp.MustCompile(`(^|[\s(])(\d{1,2})/(\d{1,2})($|[\s)])`)

var currencyBefore = regexp.MustCompile(`(?i)(R\$|US\$|\$)\s*$`)

// CounterPair finds an NN/NN token that reads as installment counters: a standalone token,
// not right after a currency symbol, with 1 <= current <= total and total >= 2.
func CounterPair(desc string) (int, int, bool) {
	for _, loc := range counterRegex.FindAllStringSubmatchIndex(desc, -1) {
		if currencyBefore.MatchString(desc[:loc[4]]) {
			continue
		}
		cur, _ := strconv.Atoi(desc[loc[4]:loc[5]])
		total, _ := strconv.Atoi(desc[loc[6]:loc[7]])
		if cur >= 1 && total >= 2 && cur <= total {
			return cur, total, true
		}
	}
	return 0, 0, false
}

// Remaining returns total-current for "current/total" counters.
func Remaining(counters string) (int, bool) {
	parts := strings.Split(counters, "/")
	if len(parts) != 2 {
		return 0, false
	}
	cur, err1 := strconv.Atoi(parts[0])
	total, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || cur > total {
		return 0, false
	}
	return total - cur, true
}
