// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fjacquet/fatura-csv/internal/container"
	"fjacquet/fatura-csv/internal/dateutils"
	"fjacquet/fatura-csv/internal/fileutils"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/report"
	"fjacquet/fatura-csv/internal/textsource"
)

// ValidationReportName is the file written next to batch outputs.
const ValidationReportName = "validation.json"

// ExtractOptions drives a single-file extraction.
type ExtractOptions struct {
	Input  string
	Output string
	Family string
	Year   int
	// ValidationReport, when set, receives the JSON or YAML validation report.
	ValidationReport string
}

// ExtractFile extracts one statement into a standard CSV and returns the number of
// transactions written.
func ExtractFile(ctx context.Context, c *container.Container, opts ExtractOptions) (int, error) {
	if opts.Input == "" || opts.Output == "" {
		return 0, fmt.Errorf("input and output files must be specified")
	}
	if !fileutils.FileExists(opts.Input) {
		return 0, fmt.Errorf("input file does not exist: %s", opts.Input)
	}

	logger := c.GetLogger()
	// A single statement never overlaps itself, so deduplication is skipped.
	pipeline, err := c.GetPipeline(opts.Family, opts.Year, false)
	if err != nil {
		return 0, err
	}
	out, err := pipeline.Run(ctx, []string{opts.Input})
	if err != nil {
		return 0, err
	}
	if len(out.Failed) > 0 {
		return 0, fmt.Errorf("could not read statement %s", opts.Input)
	}

	gen := c.GetReportGenerator()
	if _, err := gen.Write(report.TypeStandard, out.Transactions, opts.Output, report.Options{}); err != nil {
		return 0, err
	}
	if opts.ValidationReport != "" {
		if err := gen.WriteValidationReport(out.Results, opts.ValidationReport); err != nil {
			return 0, err
		}
	}

	logger.Info("Extraction completed",
		logging.F(logging.FieldInputFile, opts.Input),
		logging.F(logging.FieldOutputFile, opts.Output),
		logging.F(logging.FieldCount, len(out.Transactions)))
	return len(out.Transactions), nil
}

// BatchOptions drives a directory run.
type BatchOptions struct {
	InputDir    string
	OutputDir   string
	Family      string
	Year        int
	Report      report.Type
	InvoiceDate time.Time
	Dedup       bool
}

// BatchSummary reports what a batch run produced.
type BatchSummary struct {
	Files        int
	Failed       []string
	Transactions int
	Duplicates   int
	Written      []string
}

// RunBatch extracts every statement in InputDir, deduplicates across them and writes
// the selected report plus a validation report into OutputDir.
func RunBatch(ctx context.Context, c *container.Container, opts BatchOptions) (BatchSummary, error) {
	var summary BatchSummary
	if opts.InputDir == "" || opts.OutputDir == "" {
		return summary, fmt.Errorf("input and output directories must be specified")
	}
	if err := fileutils.EnsureDirectoryExists(opts.OutputDir); err != nil {
		return summary, err
	}

	logger := c.GetLogger()
	files, err := textsource.Discover(opts.InputDir)
	if err != nil {
		return summary, err
	}
	summary.Files = len(files)
	if len(files) == 0 {
		logger.Warn("No supported files found in input directory",
			logging.F(logging.FieldFile, opts.InputDir))
		return summary, nil
	}
	logger.Info("Found files for processing", logging.F(logging.FieldCount, len(files)))

	pipeline, err := c.GetPipeline(opts.Family, opts.Year, opts.Dedup)
	if err != nil {
		return summary, err
	}
	out, err := pipeline.Run(ctx, files)
	if err != nil {
		return summary, err
	}
	summary.Failed = out.Failed
	summary.Transactions = len(out.Transactions)
	summary.Duplicates = out.Duplicates

	target := opts.OutputDir
	if name := opts.Report.DefaultFilename(); name != "" {
		target = filepath.Join(opts.OutputDir, name)
	}
	gen := c.GetReportGenerator()
	written, err := gen.Write(opts.Report, out.Transactions, target, report.Options{InvoiceDate: opts.InvoiceDate})
	if err != nil {
		return summary, err
	}

	validationPath := filepath.Join(opts.OutputDir, ValidationReportName)
	if err := gen.WriteValidationReport(out.Results, validationPath); err != nil {
		return summary, err
	}
	summary.Written = append(written, validationPath)
	return summary, nil
}

// ParseInvoiceDate parses the --invoice-date flag (DD/MM/YYYY). Empty input yields the
// zero time.
func ParseInvoiceDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateutils.ParseFullDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid invoice date %q (expected DD/MM/YYYY): %w", s, err)
	}
	return t, nil
}
