package dateutils

import (
	"time"

	"fjacquet/fatura-csv/internal/logging"
)

// Source names the rule that produced a transaction's year.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceDocument Source = "document"
	SourceBilling  Source = "billing"
	SourceDue      Source = "due"
	SourceHint     Source = "hint"
	SourceFallback Source = "fallback"
)

// LowConfidence reports whether the date came from the last-resort rule.
func (s Source) LowConfidence() bool {
	return s == SourceFallback
}

// YearContext carries the document-level facts used to give a partial date its year.
// Zero values mean "unknown".
type YearContext struct {
	ExplicitYear int
	DueDate      time.Time
	OffsetDays   int
	YearHint     int
}

// Resolver assigns years to day/month pairs. The clock is injectable so the fallback is
// testable.
type Resolver struct {
	logger logging.Logger
	now    func() time.Time
}

// NewResolver creates a Resolver using the wall clock.
func NewResolver(logger logging.Logger) *Resolver {
	return &Resolver{logger: logger, now: time.Now}
}

// NewResolverWithClock creates a Resolver with a fixed notion of "now".
func NewResolverWithClock(logger logging.Logger, now func() time.Time) *Resolver {
	return &Resolver{logger: logger, now: now}
}

// Now returns the resolver's current time.
func (r *Resolver) Now() time.Time {
	return r.now()
}

// Resolve returns an absolute date for day/month following, in order: an explicit year,
// the billing period derived from the due date (installments land on the due date
// itself), the document year hint, and finally the previous calendar year.
func (r *Resolver) Resolve(day int, month time.Month, installment bool, yc YearContext) (time.Time, Source) {
	if yc.ExplicitYear > 0 {
		return DateOf(yc.ExplicitYear, month, day), SourceExplicit
	}

	if !yc.DueDate.IsZero() {
		if installment {
			return yc.DueDate, SourceDue
		}
		period := BillingPeriodFor(yc.DueDate, yc.OffsetDays)
		return DateOf(period.YearFor(month), month, day), SourceBilling
	}

	if yc.YearHint > 0 {
		return DateOf(yc.YearHint, month, day), SourceHint
	}

	year := r.now().Year() - 1
	if r.logger != nil {
		r.logger.Warn("No year information available, assuming previous calendar year",
			logging.F(logging.FieldYear, year),
			logging.F("day", day),
			logging.F("month", int(month)))
	}
	return DateOf(year, month, day), SourceFallback
}
