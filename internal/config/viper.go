// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/fatura-csv/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. FATURA_EXTRACTION_YEAR.
const EnvPrefix = "FATURA"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Extraction struct {
		Family            string  `mapstructure:"family" yaml:"family"`
		Year              int     `mapstructure:"year" yaml:"year"`
		Workers           int     `mapstructure:"workers" yaml:"workers"`
		MinYear           int     `mapstructure:"min_year" yaml:"min_year"`
		YearHintRatio     float64 `mapstructure:"year_hint_ratio" yaml:"year_hint_ratio"`
		BillingOffsetDays int     `mapstructure:"billing_offset_days" yaml:"billing_offset_days"`
		RulesFile         string  `mapstructure:"rules_file" yaml:"rules_file"`
		Pdftotext         string  `mapstructure:"pdftotext" yaml:"pdftotext"`
	} `mapstructure:"extraction" yaml:"extraction"`

	Installments struct {
		DistanceThreshold      int    `mapstructure:"distance_threshold" yaml:"distance_threshold"`
		HeavyDistanceThreshold int    `mapstructure:"heavy_distance_threshold" yaml:"heavy_distance_threshold"`
		MaterialTotal          string `mapstructure:"material_total" yaml:"material_total"`
	} `mapstructure:"installments" yaml:"installments"`

	Dedup struct {
		Enabled                   bool `mapstructure:"enabled" yaml:"enabled"`
		MinYear                   int  `mapstructure:"min_year" yaml:"min_year"`
		LateMonth                 int  `mapstructure:"late_month" yaml:"late_month"`
		PreferLaterForEarlyMonths bool `mapstructure:"prefer_later_for_early_months" yaml:"prefer_later_for_early_months"`
	} `mapstructure:"dedup" yaml:"dedup"`

	Report struct {
		Type      string `mapstructure:"type" yaml:"type"`
		OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	} `mapstructure:"report" yaml:"report"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig loads configuration from defaults, an optional config file and FATURA_*
// environment variables, in increasing precedence. An empty configFile searches
// $HOME/.fatura-csv, .fatura-csv and the working directory for config.yaml.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.fatura-csv")
		v.AddConfigPath(".fatura-csv")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("extraction.family", "itau")
	v.SetDefault("extraction.year", 0)
	v.SetDefault("extraction.workers", 4)
	v.SetDefault("extraction.min_year", 2000)
	v.SetDefault("extraction.year_hint_ratio", 0.8)
	v.SetDefault("extraction.billing_offset_days", 0)
	v.SetDefault("extraction.rules_file", "")
	v.SetDefault("extraction.pdftotext", "pdftotext")

	// Empirically tuned on real invoices.
	v.SetDefault("installments.distance_threshold", 2)
	v.SetDefault("installments.heavy_distance_threshold", 1)
	v.SetDefault("installments.material_total", "1.00")

	v.SetDefault("dedup.enabled", true)
	v.SetDefault("dedup.min_year", 2000)
	v.SetDefault("dedup.late_month", 9)
	v.SetDefault("dedup.prefer_later_for_early_months", false)

	v.SetDefault("report.type", "standard")
	v.SetDefault("report.output_dir", "output")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Extraction.Family == "" {
		return fmt.Errorf("extraction.family must not be empty")
	}
	if config.Extraction.Year != 0 && (config.Extraction.Year < 1900 || config.Extraction.Year > 2999) {
		return fmt.Errorf("extraction.year must be a four-digit year, got: %d", config.Extraction.Year)
	}
	if config.Extraction.Workers < 1 || config.Extraction.Workers > 64 {
		return fmt.Errorf("extraction.workers must be between 1 and 64, got: %d", config.Extraction.Workers)
	}
	if config.Extraction.YearHintRatio <= 0 || config.Extraction.YearHintRatio > 1 {
		return fmt.Errorf("extraction.year_hint_ratio must be in (0, 1], got: %f", config.Extraction.YearHintRatio)
	}
	if config.Extraction.BillingOffsetDays < 0 || config.Extraction.BillingOffsetDays > 31 {
		return fmt.Errorf("extraction.billing_offset_days must be between 0 and 31, got: %d", config.Extraction.BillingOffsetDays)
	}

	if config.Installments.DistanceThreshold < 1 {
		return fmt.Errorf("installments.distance_threshold must be positive, got: %d", config.Installments.DistanceThreshold)
	}
	if config.Installments.HeavyDistanceThreshold < 1 || config.Installments.HeavyDistanceThreshold > config.Installments.DistanceThreshold {
		return fmt.Errorf("installments.heavy_distance_threshold must be between 1 and distance_threshold, got: %d", config.Installments.HeavyDistanceThreshold)
	}
	if d, err := decimal.NewFromString(config.Installments.MaterialTotal); err != nil || d.IsNegative() {
		return fmt.Errorf("installments.material_total must be a non-negative amount, got: %s", config.Installments.MaterialTotal)
	}

	if config.Dedup.LateMonth < 1 || config.Dedup.LateMonth > 12 {
		return fmt.Errorf("dedup.late_month must be between 1 and 12, got: %d", config.Dedup.LateMonth)
	}

	return nil
}

// Validate re-checks the configuration after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// ConfigureLoggingFromConfig builds the application logger from the log section.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(strings.ToLower(config.Log.Level), strings.ToLower(config.Log.Format))
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// MaterialTotal returns installments.material_total as a decimal. Invalid values were
// rejected at load time.
func (c *Config) MaterialTotal() decimal.Decimal {
	d, err := decimal.NewFromString(c.Installments.MaterialTotal)
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return d
}
