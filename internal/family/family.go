// Package family describes the document families the engine understands. A Family is pure
// data: line patterns, keyword sets, section markers and polarity defaults. The engine,
// matcher and tracker compile what they need from it.
package family

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"fjacquet/fatura-csv/internal/models"
	"fjacquet/fatura-csv/internal/parsererror"
)

// StrategyKind selects how a cascade entry consumes lines.
type StrategyKind string

const (
	// SingleLine matches date, description and amount on one line.
	SingleLine StrategyKind = "single-line"
	// AmountNextLine matches date and description, with the amount alone on the next line.
	AmountNextLine StrategyKind = "amount-next-line"
	// ContinuationNextLine matches date and description, with the rest of the
	// description and the amount on the next line.
	ContinuationNextLine StrategyKind = "continuation-next-line"
	// TwoLineContinuation matches date and description, a description remainder on the
	// next line and the amount alone on the line after.
	TwoLineContinuation StrategyKind = "two-line-continuation"
)

// PatternSpec is one entry of a family's cascade. Pattern uses the named groups "date",
// "desc", "amount" and optionally "sign".
type PatternSpec struct {
	Kind    StrategyKind `yaml:"kind"`
	Pattern string       `yaml:"pattern"`
}

// Family holds the extraction rules of one statement layout.
type Family struct {
	Name      string `yaml:"name"`
	TagPrefix string `yaml:"tag_prefix"`

	// RequireSection restricts matching to lines between begin and end markers.
	RequireSection     bool     `yaml:"require_section"`
	BeginMarkers       []string `yaml:"begin_markers"`
	EndMarkers         []string `yaml:"end_markers"`
	CardHeaderPatterns []string `yaml:"card_header_patterns"`

	Cascade           []PatternSpec `yaml:"cascade"`
	AmountLinePattern string        `yaml:"amount_line_pattern"`
	AmountTailPattern string        `yaml:"amount_tail_pattern"`

	MinDescriptionLength int      `yaml:"min_description_length"`
	Boilerplate          []string `yaml:"boilerplate"`
	Categories           []string `yaml:"categories"`

	DebitKeywords    []string        `yaml:"debit_keywords"`
	CreditKeywords   []string        `yaml:"credit_keywords"`
	DefaultPolarity  models.Polarity `yaml:"default_polarity"`
	NegativePolarity models.Polarity `yaml:"negative_polarity"`

	DueDatePatterns   []string `yaml:"due_date_patterns"`
	SummaryPatterns   []string `yaml:"summary_patterns"`
	BillingOffsetDays int      `yaml:"billing_offset_days"`
}

// Validate checks that the family is usable and that every pattern compiles.
func (f *Family) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("family name is required")
	}
	if len(f.Cascade) == 0 {
		return fmt.Errorf("family %s: cascade is empty", f.Name)
	}
	if !f.DefaultPolarity.Valid() || !f.NegativePolarity.Valid() {
		return fmt.Errorf("family %s: default and negative polarity must be debit or credit", f.Name)
	}
	if f.RequireSection && len(f.BeginMarkers) == 0 {
		return fmt.Errorf("family %s: require_section needs at least one begin marker", f.Name)
	}

	for i, spec := range f.Cascade {
		switch spec.Kind {
		case SingleLine, AmountNextLine, ContinuationNextLine, TwoLineContinuation:
		default:
			return fmt.Errorf("family %s: cascade[%d]: unknown kind %q", f.Name, i, spec.Kind)
		}
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return fmt.Errorf("family %s: cascade[%d]: %w", f.Name, i, err)
		}
		if re.SubexpIndex("date") < 0 || re.SubexpIndex("desc") < 0 {
			return fmt.Errorf("family %s: cascade[%d]: pattern needs date and desc groups", f.Name, i)
		}
		if spec.Kind == SingleLine && re.SubexpIndex("amount") < 0 {
			return fmt.Errorf("family %s: cascade[%d]: single-line pattern needs an amount group", f.Name, i)
		}
	}

	patterns := []string{f.AmountLinePattern, f.AmountTailPattern}
	patterns = append(patterns, f.CardHeaderPatterns...)
	patterns = append(patterns, f.DueDatePatterns...)
	patterns = append(patterns, f.SummaryPatterns...)
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("family %s: %w", f.Name, err)
		}
	}
	return nil
}

// Clone returns a deep copy so overrides never touch the built-in definitions.
func (f *Family) Clone() *Family {
	c := *f
	c.BeginMarkers = append([]string(nil), f.BeginMarkers...)
	c.EndMarkers = append([]string(nil), f.EndMarkers...)
	c.CardHeaderPatterns = append([]string(nil), f.CardHeaderPatterns...)
	c.Cascade = append([]PatternSpec(nil), f.Cascade...)
	c.Boilerplate = append([]string(nil), f.Boilerplate...)
	c.Categories = append([]string(nil), f.Categories...)
	c.DebitKeywords = append([]string(nil), f.DebitKeywords...)
	c.CreditKeywords = append([]string(nil), f.CreditKeywords...)
	c.DueDatePatterns = append([]string(nil), f.DueDatePatterns...)
	c.SummaryPatterns = append([]string(nil), f.SummaryPatterns...)
	return &c
}

// Registry maps family names to rule sets.
type Registry struct {
	families map[string]*Family
}

// NewRegistry returns a registry holding the built-in families.
func NewRegistry() *Registry {
	r := &Registry{families: make(map[string]*Family)}
	for _, f := range BuiltIn() {
		r.families[f.Name] = f
	}
	return r
}

// Get looks a family up by case-insensitive name.
func (r *Registry) Get(name string) (*Family, error) {
	f, ok := r.families[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("family %q: %w", name, parsererror.ErrUnknownFamily)
	}
	return f, nil
}

// Names lists the registered families in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
