package textsource

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"fjacquet/fatura-csv/internal/parsererror"
)

// LibraryExtractor reads PDFs in-process. Rows are rebuilt from the text runs of each
// page, so column spacing is approximate; it serves as a fallback when pdftotext is not
// installed.
type LibraryExtractor struct{}

// NewLibraryExtractor creates a LibraryExtractor.
func NewLibraryExtractor() *LibraryExtractor {
	return &LibraryExtractor{}
}

// ExtractText returns the page rows joined by newlines, pages separated by form feeds.
func (e *LibraryExtractor) ExtractText(path string) (text string, err error) {
	// The decoder panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &parsererror.ParseError{
				Parser: "pdf",
				Field:  "text extraction",
				Value:  path,
				Err:    fmt.Errorf("decoder panic: %v", r),
			}
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "PDF",
			Msg:            err.Error(),
		}
	}
	defer func() { _ = f.Close() }()

	numPages := r.NumPage()
	if numPages == 0 {
		return "", &parsererror.InvalidFormatError{FilePath: path, ExpectedFormat: "PDF", Msg: "document has no pages"}
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	if len(pages) > 0 {
		return strings.Join(pages, "\f"), nil
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", &parsererror.ParseError{Parser: "pdf", Field: "plain text", Value: path, Err: err}
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read plain text of %s: %w", path, err)
	}
	return string(data), nil
}
