package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/fatura-csv/internal/family"
)

func newStrategy(kind family.StrategyKind, head, amountLine, amountTail *regexp.Regexp) (Strategy, error) {
	switch kind {
	case family.SingleLine:
		return &singleLine{re: head}, nil
	case family.AmountNextLine:
		if amountLine == nil {
			return nil, fmt.Errorf("%s needs an amount line pattern", kind)
		}
		return &amountNextLine{head: head, amount: amountLine}, nil
	case family.ContinuationNextLine:
		if amountTail == nil {
			return nil, fmt.Errorf("%s needs an amount tail pattern", kind)
		}
		return &continuationNextLine{head: head, tail: amountTail}, nil
	case family.TwoLineContinuation:
		if amountLine == nil || amountTail == nil {
			return nil, fmt.Errorf("%s needs amount line and tail patterns", kind)
		}
		return &twoLineContinuation{head: head, amount: amountLine, tail: amountTail}, nil
	default:
		return nil, fmt.Errorf("unknown strategy kind %q", kind)
	}
}

// group returns a named capture or "" when the group is absent or did not participate.
func group(re *regexp.Regexp, m []string, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(m) {
		return ""
	}
	return strings.TrimSpace(m[idx])
}

// amountToken glues sign, amount and trailing minus back together so the normalizer sees
// exactly what the statement printed.
func amountToken(re *regexp.Regexp, m []string) string {
	return group(re, m, "sign") + group(re, m, "amount") + group(re, m, "trail")
}

type singleLine struct {
	re *regexp.Regexp
}

func (s *singleLine) Name() string { return string(family.SingleLine) }

func (s *singleLine) Match(lines []string, i int) (Match, bool) {
	m := s.re.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if m == nil {
		return Match{}, false
	}
	return Match{
		Date:           group(s.re, m, "date"),
		RawDescription: group(s.re, m, "desc"),
		AmountToken:    amountToken(s.re, m),
		Strategy:       s.Name(),
	}, true
}

type amountNextLine struct {
	head   *regexp.Regexp
	amount *regexp.Regexp
}

func (s *amountNextLine) Name() string { return string(family.AmountNextLine) }

func (s *amountNextLine) Match(lines []string, i int) (Match, bool) {
	if i+1 >= len(lines) {
		return Match{}, false
	}
	h := s.head.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if h == nil {
		return Match{}, false
	}
	a := s.amount.FindStringSubmatch(strings.TrimSpace(lines[i+1]))
	if a == nil {
		return Match{}, false
	}
	return Match{
		Date:           group(s.head, h, "date"),
		RawDescription: group(s.head, h, "desc"),
		AmountToken:    amountToken(s.amount, a),
		Strategy:       s.Name(),
		Consumed:       1,
	}, true
}

type continuationNextLine struct {
	head *regexp.Regexp
	tail *regexp.Regexp
}

func (s *continuationNextLine) Name() string { return string(family.ContinuationNextLine) }

func (s *continuationNextLine) Match(lines []string, i int) (Match, bool) {
	if i+1 >= len(lines) {
		return Match{}, false
	}
	h := s.head.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if h == nil {
		return Match{}, false
	}
	next := strings.TrimSpace(lines[i+1])
	if next == "" || s.head.MatchString(next) {
		return Match{}, false
	}

	joined := group(s.head, h, "desc") + " " + next
	loc := s.tail.FindStringSubmatchIndex(joined)
	if loc == nil {
		return Match{}, false
	}
	t := submatches(joined, loc)
	return Match{
		Date:           group(s.head, h, "date"),
		RawDescription: strings.TrimSpace(joined[:loc[0]]),
		AmountToken:    amountToken(s.tail, t),
		Strategy:       s.Name(),
		Consumed:       1,
	}, true
}

type twoLineContinuation struct {
	head   *regexp.Regexp
	amount *regexp.Regexp
	tail   *regexp.Regexp
}

func (s *twoLineContinuation) Name() string { return string(family.TwoLineContinuation) }

func (s *twoLineContinuation) Match(lines []string, i int) (Match, bool) {
	if i+2 >= len(lines) {
		return Match{}, false
	}
	h := s.head.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if h == nil {
		return Match{}, false
	}
	middle := strings.TrimSpace(lines[i+1])
	if middle == "" || s.head.MatchString(middle) || s.tail.MatchString(middle) || s.amount.MatchString(middle) {
		return Match{}, false
	}
	a := s.amount.FindStringSubmatch(strings.TrimSpace(lines[i+2]))
	if a == nil {
		return Match{}, false
	}
	return Match{
		Date:           group(s.head, h, "date"),
		RawDescription: group(s.head, h, "desc") + " " + middle,
		AmountToken:    amountToken(s.amount, a),
		Strategy:       s.Name(),
		Consumed:       2,
	}, true
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for k := range out {
		if loc[2*k] >= 0 {
			out[k] = s[loc[2*k]:loc[2*k+1]]
		}
	}
	return out
}
