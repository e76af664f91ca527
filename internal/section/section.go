// Package section follows where a statement line sits: outside any transaction region,
// on a card header, or inside a transaction listing. It also owns the account tag of
// the card section being read.
package section

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"fjacquet/fatura-csv/internal/family"
	"fjacquet/fatura-csv/internal/textutils"
)

// State of the tracker.
type State int

const (
	OutsideTransactions State = iota
	AtCardHeader
	InsideTransactions
)

func (s State) String() string {
	switch s {
	case AtCardHeader:
		return "AT_CARD_HEADER"
	case InsideTransactions:
		return "INSIDE_TRANSACTIONS"
	default:
		return "OUTSIDE_TRANSACTIONS"
	}
}

// LineKind classifies a line for the caller.
type LineKind int

const (
	// Content lines may hold transactions.
	Content LineKind = iota
	// CardHeader lines switch the active account tag.
	CardHeader
	// BeginMarker lines open a transaction region.
	BeginMarker
	// EndMarker lines close it.
	EndMarker
)

var (
	digitsRegex   = regexp.MustCompile(`\d`)
	fourDigitsRun = regexp.MustCompile(`\d{4}`)
)

// Tracker is the per-document section state machine. It is not safe for concurrent use;
// each document gets its own.
type Tracker struct {
	prefix         string
	requireSection bool
	begin          []string
	end            []string
	headers        []*regexp.Regexp

	state      State
	tag        string
	defaultTag string
}

// NewTracker builds a tracker for one document of family f.
func NewTracker(f *family.Family, documentID string) (*Tracker, error) {
	t := &Tracker{
		prefix:         f.TagPrefix,
		requireSection: f.RequireSection,
		begin:          foldAll(f.BeginMarkers),
		end:            foldAll(f.EndMarkers),
		defaultTag:     DefaultTag(f.TagPrefix, documentID),
	}
	for _, p := range f.CardHeaderPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("card header pattern %q: %w", p, err)
		}
		t.headers = append(t.headers, re)
	}
	return t, nil
}

// Observe feeds one line to the state machine and reports what kind of line it was.
// Marker and header lines never carry transactions.
func (t *Tracker) Observe(line string) LineKind {
	folded := textutils.FoldUpper(line)

	if containsAny(folded, t.end) {
		t.state = OutsideTransactions
		return EndMarker
	}

	if tag, ok := t.headerTag(line); ok {
		t.tag = tag
		t.state = AtCardHeader
		if containsAny(folded, t.begin) {
			t.state = InsideTransactions
		}
		return CardHeader
	}

	if containsAny(folded, t.begin) {
		t.state = InsideTransactions
		return BeginMarker
	}
	return Content
}

// Eligible reports whether content lines should be offered to the matcher.
func (t *Tracker) Eligible() bool {
	return !t.requireSection || t.state == InsideTransactions
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// AccountTag returns the tag of the current card section, or the document default when no
// header has been seen.
func (t *Tracker) AccountTag() string {
	if t.tag != "" {
		return t.tag
	}
	return t.defaultTag
}

// HeaderSeen reports whether any card header has been observed.
func (t *Tracker) HeaderSeen() bool {
	return t.tag != ""
}

func (t *Tracker) headerTag(line string) (string, bool) {
	for _, re := range t.headers {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		captured := m[0]
		if len(m) > 1 {
			captured = m[1]
		}
		return t.prefix + "-" + lastFourDigits(captured), true
	}
	return "", false
}

// DefaultTag derives a stable tag for a document without card headers: the first run of
// four digits in the file name, or a short name-based UUID of the document id.
func DefaultTag(prefix, documentID string) string {
	base := filepath.Base(documentID)
	if digits := fourDigitsRun.FindString(base); digits != "" {
		return prefix + "-" + digits
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(documentID)).String()
	return prefix + "-" + id[:8]
}

func lastFourDigits(s string) string {
	digits := strings.Join(digitsRegex.FindAllString(s, -1), "")
	if len(digits) > 4 {
		return digits[len(digits)-4:]
	}
	if digits == "" {
		return strings.ReplaceAll(s, " ", "")
	}
	return digits
}

func foldAll(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, textutils.FoldUpper(m))
		}
	}
	return out
}

func containsAny(folded string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}
