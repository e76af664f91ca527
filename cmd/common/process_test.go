package common

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fatura-csv/internal/config"
	"fjacquet/fatura-csv/internal/container"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/report"
	"fjacquet/fatura-csv/internal/textsource"
)

const statementA = `Banco Itaú - Fatura do cartão
Vencimento: 17/12/2024
Cartão 5234.XXXX.XXXX.1234
Lançamentos: compras e saques
05/11 ACME STORE 150,00
10/11 PADARIA BOM PAO 25,90
`

const statementB = `Banco Itaú - Fatura do cartão
Vencimento: 17/12/2025
Cartão 5234.XXXX.XXXX.1234
Lançamentos: compras e saques
05/11 ACME STORE 150,00
`

func newTestContainer(t *testing.T) (*container.Container, *logging.MockLogger) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Extraction.Family = "itau"
	cfg.Extraction.Workers = 2
	cfg.Extraction.MinYear = 2000
	cfg.Extraction.YearHintRatio = 0.8
	cfg.Installments.DistanceThreshold = 2
	cfg.Installments.HeavyDistanceThreshold = 1
	cfg.Installments.MaterialTotal = "1.00"
	cfg.Dedup.Enabled = true
	cfg.Dedup.MinYear = 2000
	cfg.Dedup.LateMonth = 9

	logger := logging.NewMockLogger()
	c, err := container.NewContainer(cfg,
		container.WithLogger(logger),
		container.WithExtractor(textsource.NewMockExtractor("", os.ErrInvalid)),
		container.WithClock(func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	return c, logger
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestExtractFile(t *testing.T) {
	c, _ := newTestContainer(t)
	dir := t.TempDir()
	input := write(t, dir, "fatura.txt", statementA)
	output := filepath.Join(dir, "out", "fatura.csv")
	validation := filepath.Join(dir, "out", "validation.yaml")

	count, err := ExtractFile(context.Background(), c, ExtractOptions{
		Input: input, Output: output, ValidationReport: validation,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows := readCSV[report.StandardRow](t, output, ',')
	require.Len(t, rows, 2)
	assert.Equal(t, "05/11/2024", rows[0].Date)
	assert.Equal(t, "ACME STORE", rows[0].Description)
	assert.Equal(t, "150.00", rows[0].Amount)
	assert.Equal(t, "Itau-1234", rows[0].Account)
	assert.FileExists(t, validation)
}

func TestExtractFile_Errors(t *testing.T) {
	c, _ := newTestContainer(t)
	dir := t.TempDir()
	scan := write(t, dir, "scan.pdf", "%PDF-1.4")

	tests := []struct {
		name string
		opts ExtractOptions
	}{
		{"missing flags", ExtractOptions{}},
		{"missing input", ExtractOptions{Input: filepath.Join(dir, "nope.pdf"), Output: filepath.Join(dir, "x.csv")}},
		{"unreadable pdf", ExtractOptions{Input: scan, Output: filepath.Join(dir, "x.csv")}},
		{"unknown family", ExtractOptions{Input: scan, Output: filepath.Join(dir, "x.csv"), Family: "nubank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractFile(context.Background(), c, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestRunBatch_DeduplicatesAcrossStatements(t *testing.T) {
	c, _ := newTestContainer(t)
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "reports")
	write(t, in, "2024-12.txt", statementA)
	write(t, in, "2025-12.txt", statementB)
	write(t, in, "notes.md", "ignored")

	summary, err := RunBatch(context.Background(), c, BatchOptions{
		InputDir: in, OutputDir: out, Report: report.TypeStandard, Dedup: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Files)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, 2, summary.Transactions)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, []string{
		filepath.Join(out, "transactions.csv"),
		filepath.Join(out, ValidationReportName),
	}, summary.Written)
}

func TestRunBatch_PerCardAndNoDedup(t *testing.T) {
	c, _ := newTestContainer(t)
	in := t.TempDir()
	out := t.TempDir()
	write(t, in, "2024-12.txt", statementA)
	write(t, in, "2025-12.txt", statementB)

	summary, err := RunBatch(context.Background(), c, BatchOptions{
		InputDir: in, OutputDir: out, Report: report.TypePerCard,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Transactions)
	assert.Zero(t, summary.Duplicates)
	require.Len(t, summary.Written, 2)
	assert.Equal(t, filepath.Join(out, "transactions_Itau-1234_2024-11-05_2025-11-05.csv"), summary.Written[0])
}

func TestRunBatch_EmptyAndInvalid(t *testing.T) {
	c, logger := newTestContainer(t)

	summary, err := RunBatch(context.Background(), c, BatchOptions{
		InputDir: t.TempDir(), OutputDir: t.TempDir(), Report: report.TypeStandard,
	})
	require.NoError(t, err)
	assert.Zero(t, summary.Files)
	assert.True(t, logger.HasEntry("WARN", "No supported files found in input directory"))

	_, err = RunBatch(context.Background(), c, BatchOptions{})
	assert.Error(t, err)

	in := t.TempDir()
	write(t, in, "a.txt", statementA)
	_, err = RunBatch(context.Background(), c, BatchOptions{
		InputDir: in, OutputDir: t.TempDir(), Report: report.TypeOmie,
	})
	assert.Error(t, err, "omie without invoice date")
}

func TestParseInvoiceDate(t *testing.T) {
	got, err := ParseInvoiceDate("17/02/2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.February, 17, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseInvoiceDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseInvoiceDate("2025/17/02")
	assert.Error(t, err)
}

func readCSV[TRow any](t *testing.T, path string, comma rune) []TRow {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	var rows []TRow
	require.NoError(t, gocsv.UnmarshalCSV(reader, &rows))
	return rows
}
