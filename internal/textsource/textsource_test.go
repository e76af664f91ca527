package textsource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/parsererror"
)

const statementText = "FATURA ITAU\r\nLançamentos: compras e saques\n05/11 ACME STORE 150,00\fPágina 2\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"statement text", "05/11 PADARIA SÃO JOÃO 12,50", true},
		{"empty", "", false},
		{"glyph soup", "\x01\x02\x03\x04\x05\x06\x07\x08 ab", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Readable(tt.text))
		})
	}
}

func TestPlainTextExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fatura.txt", statementText)

	text, err := NewPlainTextExtractor().ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, statementText, text)

	_, err = NewPlainTextExtractor().ExtractText(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestChainExtractor(t *testing.T) {
	failing := NewMockExtractor("", errors.New("boom"))
	garbage := NewMockExtractor("\x01\x02\x03\x04\x05\x06", nil)
	good := NewMockExtractor("05/11 ACME STORE 150,00", nil)

	text, err := NewChainExtractor(failing, garbage, good).ExtractText("x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "05/11 ACME STORE 150,00", text)
	assert.Equal(t, []string{"x.pdf"}, failing.Calls)
	assert.Equal(t, []string{"x.pdf"}, garbage.Calls)

	_, err = NewChainExtractor(failing, garbage).ExtractText("y.pdf")
	require.Error(t, err)
	var formatErr *parsererror.InvalidFormatError
	assert.ErrorAs(t, err, &formatErr)
	assert.Contains(t, err.Error(), "boom")

	_, err = NewChainExtractor().ExtractText("z.pdf")
	assert.Error(t, err)
}

func TestPdftotextExtractor_MissingBinary(t *testing.T) {
	e := NewPdftotextExtractor("pdftotext-does-not-exist")
	_, err := e.ExtractText("statement.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")

	assert.Equal(t, DefaultPdftotextBinary, NewPdftotextExtractor("").Binary)
}

func TestLibraryExtractor_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "this is not a pdf")

	_, err := NewLibraryExtractor().ExtractText(path)
	assert.Error(t, err)
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "itau-2025-02.txt", statementText)
	pdf := writeFile(t, dir, "inter.pdf", "%PDF-1.4")

	mock := NewMockExtractor("linha 1\nlinha 2", nil)
	src := NewSource(mock, logging.NewMockLogger())

	doc, err := src.Load(txt)
	require.NoError(t, err)
	assert.Equal(t, "itau-2025-02.txt", doc.ID)
	assert.Equal(t, txt, doc.Path)
	assert.Equal(t, []string{
		"FATURA ITAU",
		"Lançamentos: compras e saques",
		"05/11 ACME STORE 150,00",
		"Página 2",
		"",
	}, doc.Lines)
	assert.Empty(t, mock.Calls, "text dumps bypass the PDF extractor")

	doc, err = src.Load(pdf)
	require.NoError(t, err)
	assert.Equal(t, []string{"linha 1", "linha 2"}, doc.Lines)
	assert.Equal(t, []string{pdf}, mock.Calls)

	_, err = src.Load(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestSource_LoadExtractorError(t *testing.T) {
	dir := t.TempDir()
	pdf := writeFile(t, dir, "scan.pdf", "%PDF-1.4")

	src := NewSource(NewMockExtractor("", errors.New("image-only")), logging.NewMockLogger())
	_, err := src.Load(pdf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image-only")
	var extractionErr *parsererror.DataExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, pdf, extractionErr.FilePath)
}

func TestSource_LoadBlankStatement(t *testing.T) {
	dir := t.TempDir()
	blank := writeFile(t, dir, "blank.txt", "  \n\f\n")

	src := NewSource(NewMockExtractor("", nil), logging.NewMockLogger())
	_, err := src.Load(blank)
	var extractionErr *parsererror.DataExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "document has no text", extractionErr.Reason)

	_, err = src.Load(writeFile(t, dir, "blank.pdf", "%PDF-1.4"))
	assert.ErrorAs(t, err, &extractionErr)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pdf", "x")
	writeFile(t, dir, "a.txt", "x")
	writeFile(t, dir, "notes.md", "x")

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.pdf")}, files)
}
