package family

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fatura-csv/internal/models"
	"fjacquet/fatura-csv/internal/parsererror"
)

func TestBuiltInFamiliesValidate(t *testing.T) {
	for _, f := range BuiltIn() {
		t.Run(f.Name, func(t *testing.T) {
			require.NoError(t, f.Validate())
		})
	}
}

func TestNegativePolarityDiffersByFamily(t *testing.T) {
	assert.Equal(t, models.PolarityCredit, Itau().NegativePolarity)
	assert.Equal(t, models.PolarityDebit, Inter().NegativePolarity)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Family)
	}{
		{"missing name", func(f *Family) { f.Name = "" }},
		{"empty cascade", func(f *Family) { f.Cascade = nil }},
		{"bad polarity", func(f *Family) { f.DefaultPolarity = "up" }},
		{"unknown kind", func(f *Family) { f.Cascade[0].Kind = "three-line" }},
		{"bad regex", func(f *Family) { f.Cascade[0].Pattern = `(?P<date>[` }},
		{"missing groups", func(f *Family) { f.Cascade[0].Pattern = `(\d{2}/\d{2})` }},
		{"single line without amount", func(f *Family) { f.Cascade[0].Pattern = `(?P<date>\d{2}/\d{2}) (?P<desc>.+)` }},
		{"section without markers", func(f *Family) { f.BeginMarkers = nil }},
		{"bad header pattern", func(f *Family) { f.CardHeaderPatterns = []string{`(`} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Itau()
			tt.mutate(f)
			assert.Error(t, f.Validate())
		})
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	f, err := r.Get(" ITAU ")
	require.NoError(t, err)
	assert.Equal(t, "itau", f.Name)

	_, err = r.Get("bradesco")
	assert.ErrorIs(t, err, parsererror.ErrUnknownFamily)
	assert.Equal(t, []string{"inter", "itau"}, r.Names())
}

func TestRegistry_ApplyOverrides(t *testing.T) {
	r := NewRegistry()
	err := r.ApplyOverrides([]byte(`
families:
  itau:
    credit_keywords: [PAGAMENTO, ESTORNO, CASHBACK]
    billing_offset_days: 28
`))
	require.NoError(t, err)

	f, err := r.Get("itau")
	require.NoError(t, err)
	assert.Equal(t, []string{"PAGAMENTO", "ESTORNO", "CASHBACK"}, f.CreditKeywords)
	assert.Equal(t, 28, f.BillingOffsetDays)
	assert.Equal(t, Itau().DebitKeywords, f.DebitKeywords, "untouched fields keep built-in values")
	assert.Equal(t, []string{"PAGAMENTO", "CREDITO", "ESTORNO", "DEVOLUÇÃO"}, Itau().CreditKeywords)
}

func TestRegistry_ApplyOverridesRequireSection(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.ApplyOverrides([]byte("families:\n  itau:\n    require_section: false\n")))
	f, err := r.Get("itau")
	require.NoError(t, err)
	assert.False(t, f.RequireSection, "an explicit false switches section gating off")

	require.NoError(t, r.ApplyOverrides([]byte("families:\n  itau:\n    tag_prefix: ITAU\n")))
	f, err = r.Get("itau")
	require.NoError(t, err)
	assert.False(t, f.RequireSection, "an absent key keeps the current value")
	assert.Equal(t, "ITAU", f.TagPrefix)

	require.NoError(t, r.ApplyOverrides([]byte("families:\n  inter:\n    require_section: true\n    begin_markers: [Lançamentos]\n")))
	f, err = r.Get("inter")
	require.NoError(t, err)
	assert.True(t, f.RequireSection)
}

func TestRegistry_ApplyOverridesErrors(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.ApplyOverrides([]byte("families:\n  nubank:\n    tag_prefix: NU\n")), parsererror.ErrUnknownFamily)
	assert.Error(t, r.ApplyOverrides([]byte("families: [")))
	assert.Error(t, r.ApplyOverrides([]byte("families:\n  inter:\n    default_polarity: sideways\n")))
}

func TestRegistry_LoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "families.yaml")
	require.NoError(t, os.WriteFile(path, []byte("families:\n  inter:\n    tag_prefix: BancoInter\n"), 0o600))

	r := NewRegistry()
	require.NoError(t, r.LoadOverrides(path))
	f, err := r.Get("inter")
	require.NoError(t, err)
	assert.Equal(t, "BancoInter", f.TagPrefix)

	assert.Error(t, r.LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("families:\n  nubank:\n    tag_prefix: NU\n"), 0o600))
	err = r.LoadOverrides(bad)
	var validationErr *parsererror.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, bad, validationErr.FilePath)
	assert.ErrorIs(t, err, parsererror.ErrUnknownFamily)
}
