// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/fatura-csv/internal/config"
	"fjacquet/fatura-csv/internal/container"
	"fjacquet/fatura-csv/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input        string
	Output       string
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	CSVDelimiter string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fatura-csv",
		Short: "Extract transactions from Brazilian credit-card statements into CSV.",
		Long: `fatura-csv reads Itaú and Inter credit-card invoices (PDF or text dumps),
extracts dated, typed transactions per card, resolves partial dates against the
billing cycle, removes duplicates across overlapping statements and writes CSV
reports.`,
		SilenceUsage:      true,
		PersistentPreRunE: initContainer,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				_ = appContainer.Close()
			}
		},
	}

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	pf := Cmd.PersistentFlags()
	pf.StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	pf.StringVarP(&SharedFlags.Output, "output", "o", "", "Output file or directory")
	pf.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches $HOME/.fatura-csv, .fatura-csv and .)")
	pf.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text or json)")
	pf.StringVar(&SharedFlags.CSVDelimiter, "csv-delimiter", "", "CSV field delimiter")
}

// ApplyFlagOverrides copies explicitly set persistent flags over the loaded configuration.
func ApplyFlagOverrides(cfg *config.Config, flags CommonFlags) {
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.CSVDelimiter != "" {
		cfg.CSV.Delimiter = flags.CSVDelimiter
	}
}

func initContainer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	ApplyFlagOverrides(cfg, SharedFlags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appContainer = c
	return nil
}

// GetContainer returns the container built for the running command, or nil before
// PersistentPreRunE has run.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogger returns the container logger, or a default logrus adapter before the
// container exists.
func GetLogger() logging.Logger {
	if appContainer != nil {
		return appContainer.GetLogger()
	}
	return logging.NewLogrusAdapter("info", "text")
}
