// Package extract handles single-statement extraction
package extract

import (
	"github.com/spf13/cobra"

	"fjacquet/fatura-csv/cmd/common"
	"fjacquet/fatura-csv/cmd/root"
	"fjacquet/fatura-csv/internal/logging"
)

var (
	family           string
	year             int
	validationReport string
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract one statement to CSV",
	Long: `Extract the transactions of one credit-card statement (PDF or text dump) into a CSV file.

Example:
  fatura-csv extract -i fatura-2025-02.pdf -o fatura-2025-02.csv --family itau`,
	Run: extractFunc,
}

func init() {
	Cmd.Flags().StringVar(&family, "family", "", "Statement family (itau, inter); defaults to extraction.family")
	Cmd.Flags().IntVar(&year, "year", 0, "Explicit year for every partial date")
	Cmd.Flags().StringVar(&validationReport, "validation-report", "", "Write the installment validation report to this .json or .yaml file")
}

func extractFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogger()
	appContainer := root.GetContainer()
	if appContainer == nil {
		logger.Fatal("Container not initialized")
	}

	count, err := common.ExtractFile(cmd.Context(), appContainer, common.ExtractOptions{
		Input:            root.SharedFlags.Input,
		Output:           root.SharedFlags.Output,
		Family:           family,
		Year:             year,
		ValidationReport: validationReport,
	})
	if err != nil {
		logger.Fatalf("Error extracting statement: %v", err)
	}
	logger.Info("Statement extracted", logging.F(logging.FieldCount, count))
}
