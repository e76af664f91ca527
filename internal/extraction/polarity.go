package extraction

import (
	"fjacquet/fatura-csv/internal/currencyutils"
	"fjacquet/fatura-csv/internal/family"
	"fjacquet/fatura-csv/internal/models"
	"fjacquet/fatura-csv/internal/textutils"
)

// resolvePolarity applies, in order: the sign printed with the amount (a minus or
// parentheses map to the family's negative polarity, a plus is always a credit), the
// credit keywords, the debit keywords and finally the family default.
func resolvePolarity(f *family.Family, amount currencyutils.Amount, description string) models.Polarity {
	if amount.Signed {
		if amount.Negative {
			return f.NegativePolarity
		}
		return models.PolarityCredit
	}
	if textutils.ContainsAnyFold(description, f.CreditKeywords) {
		return models.PolarityCredit
	}
	if textutils.ContainsAnyFold(description, f.DebitKeywords) {
		return models.PolarityDebit
	}
	return f.DefaultPolarity
}
