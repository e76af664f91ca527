// Package batch groups the transactions of many statements by card and runs the
// multi-document pipeline.
package batch

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"))
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if start.IsZero() || (!other.Start.IsZero() && other.Start.Before(start)) {
		start = other.Start
	}
	if end.IsZero() || (!other.End.IsZero() && other.End.After(end)) {
		end = other.End
	}
	return DateRange{Start: start, End: end}
}

// CardGroup holds the transactions of one account tag.
type CardGroup struct {
	AccountTag   string
	Transactions []models.Transaction
	DateRange    DateRange
	Documents    []string
}

// Aggregator splits a transaction stream by card.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator instance
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// GroupByCard groups transactions by account tag. Groups appear in first-seen order and
// their transactions are sorted chronologically.
func (a *Aggregator) GroupByCard(txs []models.Transaction) []CardGroup {
	index := make(map[string]int)
	var groups []CardGroup
	for _, tx := range txs {
		i, ok := index[tx.AccountTag]
		if !ok {
			i = len(groups)
			index[tx.AccountTag] = i
			groups = append(groups, CardGroup{AccountTag: tx.AccountTag})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)
		if !slices.Contains(g.Documents, tx.Provenance.Document) {
			g.Documents = append(g.Documents, tx.Provenance.Document)
		}
	}

	for i := range groups {
		SortChronologically(groups[i].Transactions)
		groups[i].DateRange = DateRangeOf(groups[i].Transactions)
		a.logger.Debug("Grouped card transactions",
			logging.F(logging.FieldAccount, groups[i].AccountTag),
			logging.F(logging.FieldCount, len(groups[i].Transactions)),
			logging.F("documents", strings.Join(groups[i].Documents, ", ")))
	}
	return groups
}

// SortChronologically sorts by date, keeping the extraction order for equal dates.
func SortChronologically(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}

// DateRangeOf calculates the overall date range from a set of transactions
func DateRangeOf(txs []models.Transaction) DateRange {
	if len(txs) == 0 {
		return DateRange{}
	}

	start, end := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(start) {
			start = tx.Date
		}
		if tx.Date.After(end) {
			end = tx.Date
		}
	}
	return DateRange{Start: start, End: end}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeTag makes an account tag safe to embed in a file name.
func SanitizeTag(tag string) string {
	tag = strings.ReplaceAll(tag, "*", "X")
	tag = unsafeFilenameChars.ReplaceAllString(tag, "_")
	tag = strings.Trim(tag, "_")
	if tag == "" {
		return "unknown"
	}
	return tag
}

// OutputFilename creates the per-card file name.
// Format: transactions_{tag}_{start}_{end}.csv, or transactions_{tag}.csv without dates.
func OutputFilename(accountTag string, dateRange DateRange) string {
	tag := SanitizeTag(accountTag)
	if r := dateRange.String(); r != "" {
		return fmt.Sprintf("transactions_%s_%s.csv", tag, r)
	}
	return fmt.Sprintf("transactions_%s.csv", tag)
}
