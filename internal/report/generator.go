// Package report renders deduplicated transactions as CSV exports and extraction results
// as validation reports.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fjacquet/fatura-csv/internal/batch"
	"fjacquet/fatura-csv/internal/common"
	"fjacquet/fatura-csv/internal/extraction"
	"fjacquet/fatura-csv/internal/fileutils"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/models"
)

// Type names an export layout.
type Type string

const (
	TypeStandard   Type = "standard"
	TypeOmie       Type = "omie"
	TypeByCard     Type = "by-card"
	TypeByVendor   Type = "by-vendor"
	TypeCardVendor Type = "by-card-vendor"
	TypeByMonth    Type = "by-month"
	TypeSummary    Type = "summary"
	TypePerCard    Type = "per-card"
)

// Types lists every supported layout.
func Types() []Type {
	return []Type{TypeStandard, TypeOmie, TypeByCard, TypeByVendor, TypeCardVendor, TypeByMonth, TypeSummary, TypePerCard}
}

// ParseType validates a layout name.
func ParseType(s string) (Type, error) {
	want := Type(strings.ToLower(strings.TrimSpace(s)))
	if want == "" {
		return TypeStandard, nil
	}
	for _, t := range Types() {
		if t == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported report type: %s", s)
}

// DefaultFilename is the output name used when a directory is given. TypePerCard has
// none: it names one file per card.
func (t Type) DefaultFilename() string {
	switch t {
	case TypeStandard:
		return "transactions.csv"
	case TypeOmie:
		return "omie_transactions.csv"
	case TypeSummary:
		return "summary_report.csv"
	case TypePerCard:
		return ""
	default:
		return "transactions_" + strings.ReplaceAll(string(t), "-", "_") + ".csv"
	}
}

// DefaultObservation prefixes the observation column of ERP titles.
const DefaultObservation = "Fatura do cartão"

// Options carries the per-run values some layouts need.
type Options struct {
	// InvoiceDate is the due date of every ERP title. Required for TypeOmie.
	InvoiceDate time.Time
	Observation string
}

// Generator writes exports with the configured CSV delimiter.
type Generator struct {
	delimiter rune
	logger    logging.Logger
}

// NewGenerator creates a new instance of Generator.
func NewGenerator(delimiter rune, logger logging.Logger) *Generator {
	return &Generator{delimiter: delimiter, logger: logger.WithField("component", "ReportGenerator")}
}

// Write renders txs in the given layout. For TypePerCard output is a directory and one
// file per account tag is written; otherwise output is the CSV file. It returns the
// paths written.
func (g *Generator) Write(kind Type, txs []models.Transaction, output string, opts Options) ([]string, error) {
	if txs == nil {
		txs = []models.Transaction{}
	}
	g.logger.Debug("Writing report",
		logging.F(logging.FieldReport, string(kind)),
		logging.F(logging.FieldOutputFile, output),
		logging.F(logging.FieldCount, len(txs)))

	var err error
	switch kind {
	case TypeStandard:
		err = common.WriteCSVFile(StandardRows(txs), output, g.delimiter, g.logger)
	case TypeOmie:
		if opts.InvoiceDate.IsZero() {
			return nil, fmt.Errorf("omie report requires an invoice date")
		}
		obs := opts.Observation
		if obs == "" {
			obs = DefaultObservation
		}
		err = common.WriteCSVFile(OmieRows(txs, opts.InvoiceDate, obs), output, g.delimiter, g.logger)
	case TypeByCard:
		err = common.WriteCSVFile(CardRows(txs), output, g.delimiter, g.logger)
	case TypeByVendor:
		err = common.WriteCSVFile(VendorRows(txs), output, g.delimiter, g.logger)
	case TypeCardVendor:
		err = common.WriteCSVFile(CardVendorRows(txs), output, g.delimiter, g.logger)
	case TypeByMonth:
		err = common.WriteCSVFile(MonthRows(txs), output, g.delimiter, g.logger)
	case TypeSummary:
		err = common.WriteCSVFile(SummaryRows(txs), output, g.delimiter, g.logger)
	case TypePerCard:
		return g.writePerCard(txs, output)
	default:
		return nil, fmt.Errorf("unsupported report type: %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write %s report: %w", kind, err)
	}
	return []string{output}, nil
}

func (g *Generator) writePerCard(txs []models.Transaction, dir string) ([]string, error) {
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}

	var written []string
	for _, group := range batch.NewAggregator(g.logger).GroupByCard(txs) {
		path := filepath.Join(dir, batch.OutputFilename(group.AccountTag, group.DateRange))
		if err := common.WriteCSVFile(StandardRows(group.Transactions), path, g.delimiter, g.logger); err != nil {
			return written, fmt.Errorf("failed to write card %s: %w", group.AccountTag, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// GenerateValidationReport renders per-document diagnostics and installment validation
// in the specified format (json or yaml).
func (g *Generator) GenerateValidationReport(results []extraction.Result, format string) ([]byte, error) {
	if results == nil {
		results = []extraction.Result{}
	}
	switch format {
	case "json":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON report")
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return data, nil
	case "yaml", "yml":
		data, err := yaml.Marshal(results)
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal YAML report")
			return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteValidationReport writes the validation report, choosing the format from path's
// extension.
func (g *Generator) WriteValidationReport(results []extraction.Result, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	data, err := g.GenerateValidationReport(results, format)
	if err != nil {
		return err
	}
	if err := fileutils.WriteFile(path, data, 0600); err != nil {
		return err
	}

	var mismatches int
	for _, r := range results {
		if r.Validation.Mismatch {
			mismatches++
		}
	}
	g.logger.Info("Wrote validation report",
		logging.F(logging.FieldOutputFile, path),
		logging.F("documents", len(results)),
		logging.F("mismatches", mismatches))
	return nil
}
