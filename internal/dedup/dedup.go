// Package dedup collapses the same real transaction seen in overlapping statements.
//
// Statements overlap: an installment printed on two consecutive invoices, or a late
// purchase that shows up again after the closing date, can be resolved into two
// different years. Records are grouped by their year-less key and one year is kept
// per group.
package dedup

import (
	"sort"
	"time"

	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/models"
)

// Options tunes the year-selection rule.
type Options struct {
	// MinYear is the earliest plausible year.
	MinYear int
	// LateMonth is the first month where, given two consecutive candidate years, the
	// earlier one wins regardless of PreferLaterForEarlyMonths.
	LateMonth time.Month
	// PreferLaterForEarlyMonths picks the later of two consecutive years for months
	// before LateMonth.
	PreferLaterForEarlyMonths bool
}

// DefaultOptions returns the empirically tuned defaults.
func DefaultOptions() Options {
	return Options{MinYear: 2000, LateMonth: time.September}
}

// Deduplicator removes cross-document duplicates.
type Deduplicator struct {
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// NewDeduplicator creates a Deduplicator using the wall clock.
func NewDeduplicator(opts Options, logger logging.Logger) *Deduplicator {
	return NewDeduplicatorWithClock(opts, logger, time.Now)
}

// NewDeduplicatorWithClock creates a Deduplicator with an injected clock.
func NewDeduplicatorWithClock(opts Options, logger logging.Logger, now func() time.Time) *Deduplicator {
	if opts.LateMonth < time.January || opts.LateMonth > time.December {
		opts.LateMonth = time.September
	}
	return &Deduplicator{opts: opts, logger: logger, now: now}
}

type group struct {
	key     models.DedupKey
	members []int
}

// Deduplicate returns txs with duplicate groups collapsed. Surviving records keep their
// input order. Running it on its own output returns the same sequence.
func (d *Deduplicator) Deduplicate(txs []models.Transaction) []models.Transaction {
	if len(txs) < 2 {
		return txs
	}

	var groups []*group
	byKey := make(map[models.DedupKey]*group)
	for i, tx := range txs {
		k := tx.Key()
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, i)
	}

	keep := make([]int, 0, len(txs))
	for _, g := range groups {
		if len(g.members) == 1 {
			keep = append(keep, g.members[0])
			continue
		}
		survivors := d.resolveGroup(txs, g)
		if dropped := len(g.members) - len(survivors); dropped > 0 {
			d.logger.Debug("Collapsed duplicate transactions",
				logging.F("key", g.key.String()),
				logging.F(logging.FieldYear, txs[survivors[0]].Date.Year()),
				logging.F(logging.FieldCount, dropped))
		}
		keep = append(keep, survivors...)
	}
	sort.Ints(keep)

	out := make([]models.Transaction, 0, len(keep))
	for _, i := range keep {
		out = append(out, txs[i])
	}
	if removed := len(txs) - len(out); removed > 0 {
		d.logger.Info("Removed duplicate transactions",
			logging.F(logging.FieldCount, removed),
			logging.F("kept", len(out)))
	}
	return out
}

// resolveGroup returns the input indices that survive for one key.
func (d *Deduplicator) resolveGroup(txs []models.Transaction, g *group) []int {
	first := txs[g.members[0]]
	year, ok := d.chooseYear(d.plausibleYears(txs, g), g.key.Month)
	if !ok {
		// No plausible year: keep the first-seen record along with its same-document
		// siblings of that year.
		year = first.Date.Year()
	}
	return bestDocument(txs, g.members, year)
}

// plausibleYears lists the distinct candidate years inside [MinYear, current year],
// ascending.
func (d *Deduplicator) plausibleYears(txs []models.Transaction, g *group) []int {
	maxYear := d.now().Year()
	seen := make(map[int]bool)
	var years []int
	for _, i := range g.members {
		y := txs[i].Date.Year()
		if y < d.opts.MinYear || y > maxYear || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (d *Deduplicator) chooseYear(years []int, month time.Month) (int, bool) {
	switch {
	case len(years) == 0:
		return 0, false
	case len(years) == 1:
		return years[0], true
	case len(years) == 2 && years[1]-years[0] == 1:
		if month < d.opts.LateMonth && d.opts.PreferLaterForEarlyMonths {
			return years[1], true
		}
		return years[0], true
	default:
		return years[0], true
	}
}

// bestDocument keeps the members dated in year that come from the document contributing
// the most of them. Ties go to the document seen first.
func bestDocument(txs []models.Transaction, members []int, year int) []int {
	var order []string
	byDoc := make(map[string][]int)
	for _, i := range members {
		if txs[i].Date.Year() != year {
			continue
		}
		doc := txs[i].Provenance.Document
		if _, ok := byDoc[doc]; !ok {
			order = append(order, doc)
		}
		byDoc[doc] = append(byDoc[doc], i)
	}

	var best []int
	for _, doc := range order {
		if len(byDoc[doc]) > len(best) {
			best = byDoc[doc]
		}
	}
	return best
}
