package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into dir for the duration of the test so no stray config.yaml is found.
func chdir(t *testing.T, dir string) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(originalDir))
	})
}

func isolate(t *testing.T) {
	t.Helper()
	clearTestEnvVars(t)
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
}

func TestInitializeConfig_Defaults(t *testing.T) {
	isolate(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Equal(t, "itau", config.Extraction.Family)
	assert.Zero(t, config.Extraction.Year)
	assert.Equal(t, 4, config.Extraction.Workers)
	assert.Equal(t, 2000, config.Extraction.MinYear)
	assert.Equal(t, 0.8, config.Extraction.YearHintRatio)
	assert.Equal(t, "pdftotext", config.Extraction.Pdftotext)
	assert.Equal(t, 2, config.Installments.DistanceThreshold)
	assert.Equal(t, 1, config.Installments.HeavyDistanceThreshold)
	assert.True(t, decimal.NewFromInt(1).Equal(config.MaterialTotal()))
	assert.True(t, config.Dedup.Enabled)
	assert.Equal(t, 9, config.Dedup.LateMonth)
	assert.False(t, config.Dedup.PreferLaterForEarlyMonths)
	assert.Equal(t, "standard", config.Report.Type)
	assert.Equal(t, ',', config.Delimiter())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)

	testEnvVars := map[string]string{
		"FATURA_LOG_LEVEL":                           "debug",
		"FATURA_LOG_FORMAT":                          "json",
		"FATURA_CSV_DELIMITER":                       ";",
		"FATURA_EXTRACTION_FAMILY":                   "inter",
		"FATURA_EXTRACTION_YEAR":                     "2024",
		"FATURA_EXTRACTION_WORKERS":                  "8",
		"FATURA_INSTALLMENTS_MATERIAL_TOTAL":         "5.50",
		"FATURA_DEDUP_ENABLED":                       "false",
		"FATURA_DEDUP_PREFER_LATER_FOR_EARLY_MONTHS": "true",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ';', config.Delimiter())
	assert.Equal(t, "inter", config.Extraction.Family)
	assert.Equal(t, 2024, config.Extraction.Year)
	assert.Equal(t, 8, config.Extraction.Workers)
	assert.True(t, decimal.RequireFromString("5.5").Equal(config.MaterialTotal()))
	assert.False(t, config.Dedup.Enabled)
	assert.True(t, config.Dedup.PreferLaterForEarlyMonths)
}

const fileConfig = `
log:
  level: "warn"
  format: "json"
csv:
  delimiter: "|"
extraction:
  family: "inter"
  billing_offset_days: 10
  rules_file: "rules.yaml"
dedup:
  late_month: 10
report:
  type: "omie"
`

func TestInitializeConfig_ConfigFile(t *testing.T) {
	isolate(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(fileConfig), 0600))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, '|', config.Delimiter())
	assert.Equal(t, "inter", config.Extraction.Family)
	assert.Equal(t, 10, config.Extraction.BillingOffsetDays)
	assert.Equal(t, "rules.yaml", config.Extraction.RulesFile)
	assert.Equal(t, 10, config.Dedup.LateMonth)
	assert.Equal(t, "omie", config.Report.Type)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "fatura.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fileConfig), 0600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "inter", config.Extraction.Family)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	isolate(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(fileConfig), 0600))

	t.Setenv("FATURA_LOG_LEVEL", "error")
	t.Setenv("FATURA_EXTRACTION_FAMILY", "itau")

	config, err := InitializeConfig()
	require.NoError(t, err)

	// Environment beats file, file beats defaults.
	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "itau", config.Extraction.Family)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 4, config.Extraction.Workers)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"log level", map[string]string{"FATURA_LOG_LEVEL": "loud"}, "invalid log level"},
		{"log format", map[string]string{"FATURA_LOG_FORMAT": "xml"}, "invalid log format"},
		{"delimiter", map[string]string{"FATURA_CSV_DELIMITER": ";;"}, "single character"},
		{"year", map[string]string{"FATURA_EXTRACTION_YEAR": "25"}, "extraction.year"},
		{"workers", map[string]string{"FATURA_EXTRACTION_WORKERS": "0"}, "extraction.workers"},
		{"hint ratio", map[string]string{"FATURA_EXTRACTION_YEAR_HINT_RATIO": "1.5"}, "year_hint_ratio"},
		{"offset", map[string]string{"FATURA_EXTRACTION_BILLING_OFFSET_DAYS": "40"}, "billing_offset_days"},
		{"distance", map[string]string{"FATURA_INSTALLMENTS_DISTANCE_THRESHOLD": "0"}, "distance_threshold"},
		{"heavy distance", map[string]string{"FATURA_INSTALLMENTS_HEAVY_DISTANCE_THRESHOLD": "3"}, "heavy_distance_threshold"},
		{"material total", map[string]string{"FATURA_INSTALLMENTS_MATERIAL_TOTAL": "abc"}, "material_total"},
		{"late month", map[string]string{"FATURA_DEDUP_LATE_MONTH": "13"}, "late_month"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := InitializeConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	isolate(t)
	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.NotNil(t, ConfigureLoggingFromConfig(config))
}

func TestLoadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FATURA_EXTRACTION_FAMILY", "")
	require.NoError(t, os.Unsetenv("FATURA_EXTRACTION_FAMILY"))

	loaded, err := LoadEnv()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, os.WriteFile(".env", []byte("FATURA_EXTRACTION_FAMILY=inter\n"), 0600))
	loaded, err = LoadEnv("missing.env", ".env")
	require.NoError(t, err)
	assert.Equal(t, ".env", loaded)
	assert.Equal(t, "inter", os.Getenv("FATURA_EXTRACTION_FAMILY"))
}

// clearTestEnvVars unsets every FATURA_* variable for the duration of the test.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}
