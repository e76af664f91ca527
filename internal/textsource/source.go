package textsource

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/fatura-csv/internal/fileutils"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/models"
	"fjacquet/fatura-csv/internal/parsererror"
)

// Supported input extensions.
var Extensions = []string{".pdf", ".txt"}

// Source loads statement files as Documents, routing text dumps and PDFs to the
// appropriate extractor.
type Source struct {
	pdf    Extractor
	text   Extractor
	logger logging.Logger
}

// NewSource creates a Source. A nil pdfExtractor selects pdftotext with the pure-Go
// reader as fallback.
func NewSource(pdfExtractor Extractor, logger logging.Logger) *Source {
	if pdfExtractor == nil {
		pdfExtractor = NewChainExtractor(NewPdftotextExtractor(""), NewLibraryExtractor())
	}
	return &Source{pdf: pdfExtractor, text: NewPlainTextExtractor(), logger: logger}
}

// Load extracts the text of path and splits it into a Document whose ID is the file's
// base name. Unreadable or blank statements yield a *parsererror.DataExtractionError.
func (s *Source) Load(path string) (models.Document, error) {
	if !fileutils.FileExists(path) {
		return models.Document{}, fmt.Errorf("input file does not exist: %s", path)
	}

	extractor := s.pdf
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		extractor = s.text
	}

	text, err := extractor.ExtractText(path)
	if err != nil {
		return models.Document{}, &parsererror.DataExtractionError{
			FilePath:  path,
			FieldName: "text",
			Reason:    "text extraction failed",
			Err:       err,
		}
	}

	doc := models.NewDocument(filepath.Base(path), path, text)
	if doc.IsEmpty() {
		return models.Document{}, &parsererror.DataExtractionError{
			FilePath:  path,
			FieldName: "text",
			Reason:    "document has no text",
		}
	}
	s.logger.Debug("Loaded document",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(doc.Lines)))
	return doc, nil
}

// Discover lists the statement files directly inside dir.
func Discover(dir string) ([]string, error) {
	return fileutils.ListFilesWithExtensions(dir, Extensions...)
}
