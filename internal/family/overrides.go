package family

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fjacquet/fatura-csv/internal/parsererror"
)

// OverrideFile is the YAML layout accepted by LoadOverrides:
//
//	families:
//	  itau:
//	    credit_keywords: [PAGAMENTO, ESTORNO]
//	    billing_offset_days: 28
type OverrideFile struct {
	Families map[string]Family `yaml:"families"`
}

// presence records the boolean fields an override actually sets, since a decoded false is
// indistinguishable from an absent key.
type presence struct {
	Families map[string]struct {
		RequireSection *bool `yaml:"require_section"`
	} `yaml:"families"`
}

// LoadOverrides reads a YAML file and applies it to the registry. Only fields present in
// the file replace the built-in values; lists are replaced, not appended.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return fmt.Errorf("reading family overrides: %w", err)
	}
	if err := r.ApplyOverrides(data); err != nil {
		return &parsererror.ValidationError{FilePath: path, Reason: "rejected family overrides", Err: err}
	}
	return nil
}

// ApplyOverrides merges YAML override data into the registry.
func (r *Registry) ApplyOverrides(data []byte) error {
	var file OverrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing family overrides: %w", err)
	}
	var set presence
	if err := yaml.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("parsing family overrides: %w", err)
	}

	for name, override := range file.Families {
		base, err := r.Get(name)
		if err != nil {
			return err
		}
		merged := base.Clone()
		merge(merged, override)
		if rs := set.Families[name].RequireSection; rs != nil {
			merged.RequireSection = *rs
		}
		if err := merged.Validate(); err != nil {
			return fmt.Errorf("invalid override: %w", err)
		}
		r.families[merged.Name] = merged
	}
	return nil
}

func merge(dst *Family, src Family) {
	if src.TagPrefix != "" {
		dst.TagPrefix = src.TagPrefix
	}
	replaceStrings(&dst.BeginMarkers, src.BeginMarkers)
	replaceStrings(&dst.EndMarkers, src.EndMarkers)
	replaceStrings(&dst.CardHeaderPatterns, src.CardHeaderPatterns)
	if len(src.Cascade) > 0 {
		dst.Cascade = src.Cascade
	}
	if src.AmountLinePattern != "" {
		dst.AmountLinePattern = src.AmountLinePattern
	}
	if src.AmountTailPattern != "" {
		dst.AmountTailPattern = src.AmountTailPattern
	}
	if src.MinDescriptionLength > 0 {
		dst.MinDescriptionLength = src.MinDescriptionLength
	}
	replaceStrings(&dst.Boilerplate, src.Boilerplate)
	replaceStrings(&dst.Categories, src.Categories)
	replaceStrings(&dst.DebitKeywords, src.DebitKeywords)
	replaceStrings(&dst.CreditKeywords, src.CreditKeywords)
	if src.DefaultPolarity != "" {
		dst.DefaultPolarity = src.DefaultPolarity
	}
	if src.NegativePolarity != "" {
		dst.NegativePolarity = src.NegativePolarity
	}
	replaceStrings(&dst.DueDatePatterns, src.DueDatePatterns)
	replaceStrings(&dst.SummaryPatterns, src.SummaryPatterns)
	if src.BillingOffsetDays > 0 {
		dst.BillingOffsetDays = src.BillingOffsetDays
	}
}

func replaceStrings(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}
