// Package batch handles batch processing of statement directories
package batch

import (
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/fatura-csv/cmd/common"
	"fjacquet/fatura-csv/cmd/root"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/report"
)

var (
	family      string
	year        int
	reportType  string
	invoiceDate string
	noDedup     bool
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process statements from a directory",
	Long: `Batch process every PDF and text statement in an input directory.

Transactions from all statements are merged, duplicates caused by overlapping
invoices are removed and the selected report is written to the output directory
together with validation.json.

Example:
  fatura-csv batch -i faturas/ -o output/ --report omie --invoice-date 17/02/2025`,
	Run: batchFunc,
}

func init() {
	names := make([]string, 0, len(report.Types()))
	for _, t := range report.Types() {
		names = append(names, string(t))
	}
	Cmd.Flags().StringVar(&family, "family", "", "Statement family (itau, inter); defaults to extraction.family")
	Cmd.Flags().IntVar(&year, "year", 0, "Explicit year for every partial date")
	Cmd.Flags().StringVar(&reportType, "report", "", "Report type: "+strings.Join(names, ", ")+" (default report.type)")
	Cmd.Flags().StringVar(&invoiceDate, "invoice-date", "", "Invoice due date DD/MM/YYYY, required by the omie report")
	Cmd.Flags().BoolVar(&noDedup, "no-dedup", false, "Keep duplicates across statements")

	// For batch, -i/-o refer to directories.
	Cmd.SetUsageTemplate(strings.Replace(Cmd.UsageTemplate(), "Global Flags:", "Global Flags (for batch, -i/-o refer to directories):", 1))
}

func batchFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogger()
	appContainer := root.GetContainer()
	if appContainer == nil {
		logger.Fatal("Container not initialized")
	}
	cfg := appContainer.GetConfig()

	kindName := reportType
	if kindName == "" {
		kindName = cfg.Report.Type
	}
	kind, err := report.ParseType(kindName)
	if err != nil {
		logger.Fatalf("Invalid report type: %v", err)
	}
	due, err := common.ParseInvoiceDate(invoiceDate)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	outputDir := root.SharedFlags.Output
	if outputDir == "" {
		outputDir = cfg.Report.OutputDir
	}

	summary, err := common.RunBatch(cmd.Context(), appContainer, common.BatchOptions{
		InputDir:    root.SharedFlags.Input,
		OutputDir:   outputDir,
		Family:      family,
		Year:        year,
		Report:      kind,
		InvoiceDate: due,
		Dedup:       cfg.Dedup.Enabled && !noDedup,
	})
	if err != nil {
		logger.Fatalf("Error during batch processing: %v", err)
	}

	logger.Info("Batch processing completed",
		logging.F("files", summary.Files),
		logging.F("failed", len(summary.Failed)),
		logging.F(logging.FieldCount, summary.Transactions),
		logging.F("duplicates", summary.Duplicates),
		logging.F("written", strings.Join(summary.Written, ", ")))
}
