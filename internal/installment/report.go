package installment

import (
	"github.com/shopspring/decimal"

	"fjacquet/fatura-csv/internal/models"
)

// MismatchTolerance is the absolute difference tolerated between the expected and the
// printed future-installment totals.
var MismatchTolerance = decimal.NewFromInt(1)

// ValidationReport compares the extracted installments with the invoice summary. It is
// diagnostic output and never changes extraction results.
type ValidationReport struct {
	Document         string          `json:"document" yaml:"document"`
	InstallmentCount int             `json:"installment_count" yaml:"installment_count"`
	RegularCount     int             `json:"regular_count" yaml:"regular_count"`
	InstallmentTotal decimal.Decimal `json:"installment_total" yaml:"installment_total"`
	RegularTotal     decimal.Decimal `json:"regular_total" yaml:"regular_total"`
	SummaryFound     bool            `json:"summary_found" yaml:"summary_found"`
	SummaryTotal     decimal.Decimal `json:"summary_total" yaml:"summary_total"`
	// ExpectedFuture sums amount x remaining installments over lines with counters.
	ExpectedFuture decimal.Decimal `json:"expected_future" yaml:"expected_future"`
	Mismatch       bool            `json:"mismatch" yaml:"mismatch"`
}

// Validate builds the report for the debits of one document.
func Validate(document string, txs []models.Transaction, summary Summary) ValidationReport {
	r := ValidationReport{
		Document:         document,
		InstallmentTotal: decimal.Zero,
		RegularTotal:     decimal.Zero,
		ExpectedFuture:   decimal.Zero,
		SummaryFound:     summary.Found,
		SummaryTotal:     summary.FutureTotal,
	}
	for _, tx := range txs {
		if !tx.IsDebit() {
			continue
		}
		if !tx.IsInstallment {
			r.RegularCount++
			r.RegularTotal = r.RegularTotal.Add(tx.Amount)
			continue
		}
		r.InstallmentCount++
		r.InstallmentTotal = r.InstallmentTotal.Add(tx.Amount)
		if remaining, ok := Remaining(tx.Installment); ok {
			r.ExpectedFuture = r.ExpectedFuture.Add(tx.Amount.Mul(decimal.NewFromInt(int64(remaining))))
		}
	}
	if summary.Found {
		r.Mismatch = r.ExpectedFuture.Sub(summary.FutureTotal).Abs().GreaterThan(MismatchTolerance)
	}
	return r
}
