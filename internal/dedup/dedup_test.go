package dedup

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/models"
)

func clock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC) }
}

func tx(doc string, line, y int, m time.Month, d int, desc, amount string) models.Transaction {
	return models.Transaction{
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Polarity:    models.PolarityDebit,
		Provenance:  models.Provenance{Document: doc, Line: line},
	}
}

func newDedup(opts Options) (*Deduplicator, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	return NewDeduplicatorWithClock(opts, logger, clock(2026)), logger
}

func TestDeduplicate_LateMonthPicksEarlierYear(t *testing.T) {
	d, logger := newDedup(DefaultOptions())

	in := []models.Transaction{
		tx("a.pdf", 10, 2024, time.November, 5, "ACME STORE", "150.00"),
		tx("b.pdf", 12, 2025, time.November, 5, "ACME STORE", "150.00"),
	}
	out := d.Deduplicate(in)

	require.Len(t, out, 1)
	assert.Equal(t, "05/11/2024", out[0].Date.Format("02/01/2006"))
	assert.Equal(t, "a.pdf", out[0].Provenance.Document)
	assert.True(t, logger.HasEntry("INFO", "Removed duplicate transactions"))
}

func TestDeduplicate_EarlyMonth(t *testing.T) {
	tests := []struct {
		name       string
		preferLate bool
		wantYear   int
	}{
		{"earliest by default", false, 2024},
		{"later when configured", true, 2025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.PreferLaterForEarlyMonths = tt.preferLate
			d, _ := newDedup(opts)

			out := d.Deduplicate([]models.Transaction{
				tx("b.pdf", 3, 2025, time.March, 2, "LOJA X", "10.00"),
				tx("a.pdf", 4, 2024, time.March, 2, "LOJA X", "10.00"),
			})
			require.Len(t, out, 1)
			assert.Equal(t, tt.wantYear, out[0].Date.Year())
		})
	}
}

func TestDeduplicate_LateMonthIgnoresPreference(t *testing.T) {
	opts := DefaultOptions()
	opts.PreferLaterForEarlyMonths = true
	d, _ := newDedup(opts)

	out := d.Deduplicate([]models.Transaction{
		tx("a.pdf", 1, 2024, time.December, 20, "LOJA X", "10.00"),
		tx("b.pdf", 1, 2025, time.December, 20, "LOJA X", "10.00"),
	})
	require.Len(t, out, 1)
	assert.Equal(t, 2024, out[0].Date.Year())
}

func TestDeduplicate_ImplausibleYearsDropped(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	out := d.Deduplicate([]models.Transaction{
		tx("a.pdf", 1, 2027, time.May, 1, "LOJA X", "10.00"),
		tx("b.pdf", 1, 2025, time.May, 1, "LOJA X", "10.00"),
		tx("c.pdf", 1, 1999, time.May, 1, "LOJA X", "10.00"),
	})
	require.Len(t, out, 1)
	assert.Equal(t, 2025, out[0].Date.Year())
	assert.Equal(t, "b.pdf", out[0].Provenance.Document)
}

func TestDeduplicate_NoPlausibleYearKeepsFirstSeen(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	out := d.Deduplicate([]models.Transaction{
		tx("a.pdf", 1, 2030, time.May, 1, "LOJA X", "10.00"),
		tx("b.pdf", 1, 2031, time.May, 1, "LOJA X", "10.00"),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "a.pdf", out[0].Provenance.Document)
}

func TestDeduplicate_PreservesSameDocumentMultiplicity(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	in := []models.Transaction{
		tx("a.pdf", 5, 2024, time.October, 7, "UBER TRIP", "12.30"),
		tx("a.pdf", 6, 2024, time.October, 7, "UBER TRIP", "12.30"),
		tx("b.pdf", 8, 2025, time.October, 7, "UBER TRIP", "12.30"),
		tx("b.pdf", 9, 2024, time.October, 7, "UBER TRIP", "12.30"),
	}
	out := d.Deduplicate(in)

	require.Len(t, out, 2)
	for _, got := range out {
		assert.Equal(t, "a.pdf", got.Provenance.Document)
		assert.Equal(t, 2024, got.Date.Year())
	}
	assert.Equal(t, 5, out[0].Provenance.Line)
	assert.Equal(t, 6, out[1].Provenance.Line)
}

func TestDeduplicate_KeepsFirstSeenOrder(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	in := []models.Transaction{
		tx("b.pdf", 1, 2025, time.November, 5, "ACME STORE", "150.00"),
		tx("b.pdf", 2, 2025, time.January, 3, "PADARIA", "8.00"),
		tx("a.pdf", 1, 2024, time.November, 5, "ACME STORE", "150.00"),
		tx("a.pdf", 2, 2024, time.February, 9, "FARMACIA", "20.00"),
	}
	out := d.Deduplicate(in)

	require.Len(t, out, 3)
	assert.Equal(t, "PADARIA", out[0].Description)
	assert.Equal(t, "ACME STORE", out[1].Description)
	assert.Equal(t, 2024, out[1].Date.Year())
	assert.Equal(t, "FARMACIA", out[2].Description)
}

func TestDeduplicate_KeyIgnoresCaseAndAccents(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	out := d.Deduplicate([]models.Transaction{
		tx("a.pdf", 1, 2024, time.November, 5, "Café Brasil", "9.90"),
		tx("b.pdf", 1, 2025, time.November, 5, "CAFE  BRASIL", "9.90"),
	})
	assert.Len(t, out, 1)
}

func TestDeduplicate_DifferentAmountsAreDistinct(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	out := d.Deduplicate([]models.Transaction{
		tx("a.pdf", 1, 2024, time.November, 5, "ACME STORE", "150.00"),
		tx("b.pdf", 1, 2025, time.November, 5, "ACME STORE", "150.01"),
	})
	assert.Len(t, out, 2)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	in := []models.Transaction{
		tx("a.pdf", 1, 2024, time.November, 5, "ACME STORE", "150.00"),
		tx("a.pdf", 2, 2024, time.November, 5, "ACME STORE", "150.00"),
		tx("b.pdf", 1, 2025, time.November, 5, "ACME STORE", "150.00"),
		tx("b.pdf", 2, 2025, time.March, 1, "LOJA", "1.00"),
		tx("c.pdf", 2, 2033, time.March, 2, "LOJA", "1.00"),
		tx("d.pdf", 2, 2034, time.March, 2, "LOJA", "1.00"),
	}
	once := d.Deduplicate(in)
	twice := d.Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestDeduplicate_SmallInputs(t *testing.T) {
	d, _ := newDedup(DefaultOptions())

	assert.Empty(t, d.Deduplicate(nil))
	single := []models.Transaction{tx("a.pdf", 1, 2024, time.May, 1, "X", "1.00")}
	assert.Equal(t, single, d.Deduplicate(single))
}

func TestNewDeduplicator_InvalidLateMonthDefaults(t *testing.T) {
	d := NewDeduplicatorWithClock(Options{MinYear: 2000, LateMonth: 13}, logging.NewMockLogger(), clock(2026))
	assert.Equal(t, time.September, d.opts.LateMonth)
}
