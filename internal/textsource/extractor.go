// Package textsource turns statement files into ordered text lines for the extraction
// engine.
package textsource

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"fjacquet/fatura-csv/internal/fileutils"
	"fjacquet/fatura-csv/internal/parsererror"
)

// Extractor pulls the text content out of a statement file.
// Implementations are swappable so the engine can be tested without PDF tooling.
type Extractor interface {
	ExtractText(path string) (string, error)
}

// MinReadableRatio is the share of characters that must be letters, digits, spaces or
// common punctuation for extracted text to count as readable.
const MinReadableRatio = 0.85

// Readable reports whether text looks like decoded statement text rather than the
// glyph soup produced by fonts without a Unicode map.
func Readable(text string) bool {
	total, good := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(".,;:-+/()$%*#@&'\"!?=_[]", r) {
			good++
		}
	}
	if total == 0 {
		return false
	}
	return float64(good)/float64(total) >= MinReadableRatio
}

// PlainTextExtractor reads text dumps that were already extracted.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a PlainTextExtractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// ExtractText returns the file content as-is.
func (e *PlainTextExtractor) ExtractText(path string) (string, error) {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ChainExtractor tries each extractor in turn and returns the first readable text.
type ChainExtractor struct {
	extractors []Extractor
}

// NewChainExtractor creates a ChainExtractor over extractors, tried in order.
func NewChainExtractor(extractors ...Extractor) *ChainExtractor {
	return &ChainExtractor{extractors: extractors}
}

// ExtractText returns the first readable result, or the joined failures.
func (c *ChainExtractor) ExtractText(path string) (string, error) {
	var errs []error
	for _, e := range c.extractors {
		text, err := e.ExtractText(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !Readable(text) {
			errs = append(errs, &parsererror.InvalidFormatError{
				FilePath:             path,
				ExpectedFormat:       "text-based PDF",
				ActualContentSnippet: snippet(text),
				Msg:                  fmt.Sprintf("%T returned unreadable text", e),
			})
			continue
		}
		return text, nil
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("no extractor configured for %s", path)
	}
	return "", errors.Join(errs...)
}

// MockExtractor returns canned text, for tests.
type MockExtractor struct {
	MockText string
	MockErr  error
	Calls    []string
}

// NewMockExtractor creates a new MockExtractor with the given mock data.
func NewMockExtractor(mockText string, mockErr error) *MockExtractor {
	return &MockExtractor{MockText: mockText, MockErr: mockErr}
}

// ExtractText returns the predefined mock text or error.
func (e *MockExtractor) ExtractText(path string) (string, error) {
	e.Calls = append(e.Calls, path)
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}

func snippet(text string) string {
	const limit = 40
	r := []rune(strings.TrimSpace(text))
	if len(r) > limit {
		r = r[:limit]
	}
	return string(r)
}
