// Package matcher runs a family's ordered cascade of line strategies over statement lines.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/fatura-csv/internal/family"
	"fjacquet/fatura-csv/internal/textutils"
)

// Match is the structured result of a successful strategy.
type Match struct {
	Date string
	// RawDescription is the description as printed, continuation lines included.
	RawDescription string
	// Description is RawDescription after cleanup.
	Description string
	// AmountToken carries the amount with any sign the line printed ("-80,00", "+ 5,00").
	AmountToken string
	Strategy    string
	// Consumed is the number of lines after the current one that belong to this match.
	Consumed int
}

// Outcome tells the caller what happened on a line.
type Outcome int

const (
	// NoMatch means no strategy recognized the line.
	NoMatch Outcome = iota
	// Matched means a strategy produced a usable Match.
	Matched
	// Rejected means a strategy matched the shape but the content is boilerplate or too
	// short. The line is to be skipped; later strategies are not tried.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Rejected:
		return "rejected"
	default:
		return "no-match"
	}
}

// Strategy recognizes one line shape starting at lines[i].
type Strategy interface {
	Name() string
	Match(lines []string, i int) (Match, bool)
}

// Cascade tries strategies in order; the first one that matches wins.
type Cascade struct {
	strategies    []Strategy
	minLength     int
	boilerplate   []string
	categories    []string
	currencyStrip *regexp.Regexp
}

// NewCascade compiles the cascade of a family.
func NewCascade(f *family.Family) (*Cascade, error) {
	amountLine, err := compileOptional(f.AmountLinePattern)
	if err != nil {
		return nil, fmt.Errorf("amount line pattern: %w", err)
	}
	amountTail, err := compileOptional(f.AmountTailPattern)
	if err != nil {
		return nil, fmt.Errorf("amount tail pattern: %w", err)
	}

	strategies := make([]Strategy, 0, len(f.Cascade))
	for i, spec := range f.Cascade {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("cascade[%d]: %w", i, err)
		}
		s, err := newStrategy(spec.Kind, re, amountLine, amountTail)
		if err != nil {
			return nil, fmt.Errorf("cascade[%d]: %w", i, err)
		}
		strategies = append(strategies, s)
	}

	c := NewCascadeFromStrategies(f.MinDescriptionLength, f.Boilerplate, strategies...)
	c.categories = f.Categories
	return c, nil
}

// NewCascadeFromStrategies builds a cascade from ready-made strategies, tried in order.
func NewCascadeFromStrategies(minLength int, boilerplate []string, strategies ...Strategy) *Cascade {
	return &Cascade{
		strategies:    strategies,
		minLength:     minLength,
		boilerplate:   boilerplate,
		currencyStrip: regexp.MustCompile(`(?i)R\$|[\s\p{P}\p{S}]`),
	}
}

// Strategies returns the names of the strategies in cascade order.
func (c *Cascade) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Match runs the cascade on lines[i].
func (c *Cascade) Match(lines []string, i int) (Match, Outcome) {
	if i < 0 || i >= len(lines) || strings.TrimSpace(lines[i]) == "" {
		return Match{}, NoMatch
	}
	for _, s := range c.strategies {
		m, ok := s.Match(lines, i)
		if !ok {
			continue
		}
		m.Description = textutils.CleanDescription(m.RawDescription, c.categories)
		if c.Reject(m.Description) {
			return m, Rejected
		}
		return m, Matched
	}
	return Match{}, NoMatch
}

// Reject reports whether a description is boilerplate rather than a purchase: too short,
// only currency symbols and punctuation, or containing a boilerplate word.
func (c *Cascade) Reject(desc string) bool {
	if len([]rune(strings.TrimSpace(desc))) < c.minLength {
		return true
	}
	if c.currencyStrip.ReplaceAllString(desc, "") == "" {
		return true
	}
	return textutils.ContainsAny(desc, c.boilerplate)
}

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}
