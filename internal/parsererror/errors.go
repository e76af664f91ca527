// Package parsererror defines the typed errors raised while turning statement text into
// transactions. Soft misses inside the engine are not errors; these types surface where a
// caller has to decide between skipping and failing.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrUnknownFamily is returned when a document family name has no rule set.
var ErrUnknownFamily = errors.New("unknown document family")

// ParseError reports a field that could not be parsed.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AmountParseError is raised by the amount normalizer for non-numeric tokens.
type AmountParseError struct {
	Token string
	Err   error
}

func (e *AmountParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid amount %q: %v", e.Token, e.Err)
	}
	return fmt.Sprintf("invalid amount %q", e.Token)
}

func (e *AmountParseError) Unwrap() error {
	return e.Err
}

// DateParseError is raised when a date token has no recognizable shape.
type DateParseError struct {
	Token  string
	Reason string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Token, e.Reason)
}

// ValidationError reports an input file that failed a precondition check.
type ValidationError struct {
	FilePath string
	Reason   string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for %s: %s: %v", e.FilePath, e.Reason, e.Err)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InvalidFormatError reports a file that does not look like the expected document type.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s", e.FilePath, e.Msg, e.ExpectedFormat)
}

// DataExtractionError reports that text could not be recovered from a document, or that a
// required document-level fact was missing.
type DataExtractionError struct {
	FilePath  string
	FieldName string
	Reason    string
	Err       error
}

func (e *DataExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s: %v",
			e.FilePath, e.FieldName, e.Reason, e.Err)
	}
	return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s", e.FilePath, e.FieldName, e.Reason)
}

func (e *DataExtractionError) Unwrap() error {
	return e.Err
}
