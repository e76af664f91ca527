// Package extraction runs the full line pipeline for one document family: section
// tracking, the pattern cascade, amount and polarity normalization, installment
// classification and year inference.
package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fjacquet/fatura-csv/internal/currencyutils"
	"fjacquet/fatura-csv/internal/dateutils"
	"fjacquet/fatura-csv/internal/family"
	"fjacquet/fatura-csv/internal/installment"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/matcher"
	"fjacquet/fatura-csv/internal/models"
	"fjacquet/fatura-csv/internal/parser"
	"fjacquet/fatura-csv/internal/section"
)

// Options are the engine knobs that come from configuration.
type Options struct {
	// ExplicitYear, when non-zero, is used for every partial date.
	ExplicitYear int
	// MinYear bounds the document year hint from below.
	MinYear int
	// YearHintRatio decides when two years are comparably frequent.
	YearHintRatio float64
	// BillingOffsetDays overrides the family offset when non-zero.
	BillingOffsetDays int
	Thresholds        installment.Thresholds
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MinYear:       2000,
		YearHintRatio: 0.8,
		Thresholds:    installment.DefaultThresholds(),
	}
}

// Diagnostics counts what happened to the lines of one document.
type Diagnostics struct {
	Lines         int            `json:"lines" yaml:"lines"`
	Matched       int            `json:"matched" yaml:"matched"`
	Rejected      int            `json:"rejected" yaml:"rejected"`
	BadAmount     int            `json:"bad_amount" yaml:"bad_amount"`
	NonPositive   int            `json:"non_positive" yaml:"non_positive"`
	BadDate       int            `json:"bad_date" yaml:"bad_date"`
	FallbackDates int            `json:"fallback_dates" yaml:"fallback_dates"`
	Strategies    map[string]int `json:"strategies" yaml:"strategies"`
}

// Result is the outcome of extracting one document.
type Result struct {
	Document     string                       `json:"document" yaml:"document"`
	Transactions []models.Transaction         `json:"-" yaml:"-"`
	Validation   installment.ValidationReport `json:"validation" yaml:"validation"`
	Diagnostics  Diagnostics                  `json:"diagnostics" yaml:"diagnostics"`
}

// Engine extracts transactions from documents of a single family. An Engine holds no
// per-document state and may be used from several goroutines.
type Engine struct {
	parser.BaseParser
	family   *family.Family
	cascade  *matcher.Cascade
	dueDates []*regexp.Regexp
	summary  []*regexp.Regexp
	resolver *dateutils.Resolver
	opts     Options
}

// NewEngine compiles the family rules into an engine.
func NewEngine(f *family.Family, opts Options, resolver *dateutils.Resolver, logger logging.Logger) (*Engine, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	cascade, err := matcher.NewCascade(f)
	if err != nil {
		return nil, fmt.Errorf("family %s: %w", f.Name, err)
	}
	dueDates, err := installment.CompileMarkers(f.DueDatePatterns)
	if err != nil {
		return nil, fmt.Errorf("family %s due date patterns: %w", f.Name, err)
	}
	summary, err := installment.CompileMarkers(f.SummaryPatterns)
	if err != nil {
		return nil, fmt.Errorf("family %s summary patterns: %w", f.Name, err)
	}

	base := parser.NewBaseParser(logger)
	if resolver == nil {
		resolver = dateutils.NewResolver(base.GetLogger())
	}
	return &Engine{
		BaseParser: base,
		family:     f,
		cascade:    cascade,
		dueDates:   dueDates,
		summary:    summary,
		resolver:   resolver,
		opts:       opts,
	}, nil
}

// Family returns the family the engine was built for.
func (e *Engine) Family() *family.Family {
	return e.family
}

func (e *Engine) offsetDays() int {
	if e.opts.BillingOffsetDays > 0 {
		return e.opts.BillingOffsetDays
	}
	return e.family.BillingOffsetDays
}

// prepare computes the document-wide facts once, before the line loop.
func (e *Engine) prepare(doc models.Document, lines []string) *ParseContext {
	pc := &ParseContext{Document: doc.ID}
	maxYear := e.resolver.Now().Year() + 1
	// Transaction lines vote first so header dates cannot outvote them.
	for _, candidates := range [][]string{e.transactionLines(doc.ID, lines), lines} {
		if year, ok := dateutils.DocumentYearHint(candidates, e.opts.MinYear, maxYear, e.opts.YearHintRatio); ok {
			pc.DocumentYearHint = year
			break
		}
	}
	if due, ok := findDueDate(lines, e.dueDates); ok {
		pc.BillingDueDate = due
	}
	pc.InstallmentSummary = installment.ParseSummary(lines, e.summary)
	return pc
}

// transactionLines returns the content lines the matcher would be offered, minus due-date
// lines.
func (e *Engine) transactionLines(documentID string, lines []string) []string {
	tracker, err := section.NewTracker(e.family, documentID)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range lines {
		if line == "" || tracker.Observe(line) != section.Content || !tracker.Eligible() {
			continue
		}
		if matchesAny(line, e.dueDates) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func matchesAny(line string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Extract runs the pipeline over one document. It never fails: unreadable lines are
// skipped and an empty document gives an empty result.
func (e *Engine) Extract(doc models.Document) Result {
	logger := e.GetLogger().WithFields(
		logging.F(logging.FieldDocument, doc.ID),
		logging.F(logging.FieldFamily, e.family.Name))

	result := Result{Document: doc.ID, Transactions: []models.Transaction{}}
	result.Diagnostics.Strategies = make(map[string]int)

	if doc.IsEmpty() {
		logger.Warn("Document has no text, nothing to extract")
		return result
	}

	lines := make([]string, len(doc.Lines))
	for i, l := range doc.Lines {
		lines[i] = strings.TrimSpace(l)
	}
	result.Diagnostics.Lines = len(lines)

	tracker, err := section.NewTracker(e.family, doc.ID)
	if err != nil {
		logger.WithError(err).Warn("Cannot track sections, document skipped")
		return result
	}

	pc := e.prepare(doc, lines)
	period := pc.BillingPeriod(e.offsetDays())
	classifier := installment.NewClassifier(e.opts.Thresholds, period, pc.InstallmentSummary)
	yc := dateutils.YearContext{
		ExplicitYear: e.opts.ExplicitYear,
		DueDate:      pc.BillingDueDate,
		OffsetDays:   e.offsetDays(),
		YearHint:     pc.DocumentYearHint,
	}
	if pc.BillingDueDate.IsZero() && e.opts.ExplicitYear == 0 {
		logger.Debug("No due date found, falling back to document year hint",
			logging.F(logging.FieldYear, pc.DocumentYearHint))
	}

	for i := 0; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}
		if tracker.Observe(lines[i]) != section.Content {
			continue
		}
		pc.ActiveAccountTag = tracker.AccountTag()
		pc.InTransactionRegion = tracker.State() == section.InsideTransactions
		if !tracker.Eligible() {
			continue
		}

		m, outcome := e.cascade.Match(lines, i)
		switch outcome {
		case matcher.NoMatch:
			continue
		case matcher.Rejected:
			result.Diagnostics.Rejected++
			logger.Debug("Line rejected as boilerplate",
				logging.F(logging.FieldLine, i+1),
				logging.F(logging.FieldStrategy, m.Strategy))
			continue
		}

		tx, ok := e.build(logger, &result.Diagnostics, pc, classifier, yc, m, i)
		if !ok {
			continue
		}
		result.Diagnostics.Matched++
		result.Diagnostics.Strategies[m.Strategy]++
		result.Transactions = append(result.Transactions, tx)
		i += m.Consumed
	}

	if !tracker.HeaderSeen() && len(result.Transactions) > 0 {
		logger.Debug("No card header found, using the document account tag",
			logging.F(logging.FieldAccount, tracker.AccountTag()))
	}

	result.Validation = installment.Validate(doc.ID, result.Transactions, pc.InstallmentSummary)
	if result.Validation.Mismatch {
		logger.Warn("Installment totals differ from the invoice summary",
			logging.F("expected_future", result.Validation.ExpectedFuture.StringFixed(2)),
			logging.F("summary_total", result.Validation.SummaryTotal.StringFixed(2)))
	}
	if result.Diagnostics.FallbackDates > 0 {
		logger.Warn("Some dates used the previous-year fallback and may be wrong",
			logging.F(logging.FieldCount, result.Diagnostics.FallbackDates))
	}
	if len(result.Transactions) == 0 {
		logger.Warn("No transactions extracted")
	}
	logger.Info("Extracted transactions",
		logging.F(logging.FieldCount, len(result.Transactions)),
		logging.F("rejected", result.Diagnostics.Rejected))
	return result
}

func (e *Engine) build(
	logger logging.Logger,
	diag *Diagnostics,
	pc *ParseContext,
	classifier *installment.Classifier,
	yc dateutils.YearContext,
	m matcher.Match,
	lineIdx int,
) (models.Transaction, bool) {
	lineField := logging.F(logging.FieldLine, lineIdx+1)

	amount, err := currencyutils.NormalizeAmount(m.AmountToken)
	if err != nil {
		diag.BadAmount++
		logger.WithError(err).Debug("Skipping line with unreadable amount", lineField)
		return models.Transaction{}, false
	}
	if !amount.IsPositive() {
		diag.NonPositive++
		logger.Debug("Skipping line with zero amount", lineField)
		return models.Transaction{}, false
	}

	date, source, verdict, err := e.resolveDate(classifier, yc, m)
	if err != nil {
		diag.BadDate++
		logger.WithError(err).Debug("Skipping line with unreadable date", lineField)
		return models.Transaction{}, false
	}
	if source.LowConfidence() {
		diag.FallbackDates++
	}

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithDescription(m.Description).
		WithAmount(amount.Magnitude).
		WithPolarity(resolvePolarity(e.family, amount, m.Description)).
		WithAccountTag(pc.ActiveAccountTag).
		WithProvenance(pc.Document, lineIdx+1).
		WithInstallment(verdict.IsInstallment, verdict.Counters).
		WithDateSource(string(source)).
		Build()
	if err != nil {
		logger.WithError(err).Debug("Skipping line that does not form a transaction", lineField)
		return models.Transaction{}, false
	}
	return tx, true
}

// resolveDate reads the printed date. Day/month dates get their year from the resolver;
// dates that carry a year are kept as printed.
func (e *Engine) resolveDate(
	classifier *installment.Classifier,
	yc dateutils.YearContext,
	m matcher.Match,
) (time.Time, dateutils.Source, installment.Verdict, error) {
	if day, month, err := dateutils.ParseDayMonth(m.Date); err == nil {
		verdict := classifier.Classify(m.RawDescription, month)
		date, source := e.resolver.Resolve(day, month, verdict.IsInstallment, yc)
		return date, source, verdict, nil
	}

	full, err := dateutils.ParseFullDate(m.Date)
	if err != nil {
		return time.Time{}, "", installment.Verdict{}, err
	}
	return full, dateutils.SourceDocument, classifier.ClassifyDated(m.RawDescription, full), nil
}
