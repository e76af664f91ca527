// Package common holds the CSV plumbing shared by the report sink and the commands.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"fjacquet/fatura-csv/internal/logging"
)

// DefaultDelimiter is used when configuration leaves the delimiter empty.
const DefaultDelimiter = ','

// WriteCSVFile marshals rows to filePath, creating parent directories as needed.
//
// Parameters:
//   - rows: slice of structs carrying csv tags
//   - filePath: destination file, truncated if it exists
//   - delimiter: field separator, ',' when zero
func WriteCSVFile[TRow any](rows []TRow, filePath string, delimiter rune, logger logging.Logger) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to CSV")
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(filePath) // #nosec G304 -- caller-provided report path
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	writer := csv.NewWriter(file)
	writer.Comma = normalizeDelimiter(delimiter)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	logger.Info("Wrote CSV file",
		logging.F(logging.FieldOutputFile, filePath),
		logging.F(logging.FieldCount, len(rows)),
		logging.F(logging.FieldDelimiter, string(normalizeDelimiter(delimiter))))
	return nil
}

func normalizeDelimiter(d rune) rune {
	if d == 0 {
		return DefaultDelimiter
	}
	return d
}
