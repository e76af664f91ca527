// Package models defines the records produced by the extraction engine.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/fatura-csv/internal/textutils"
)

// Polarity is the accounting direction of a transaction.
type Polarity string

const (
	PolarityDebit  Polarity = "debit"
	PolarityCredit Polarity = "credit"
)

// Valid reports whether p is one of the known polarities.
func (p Polarity) Valid() bool {
	return p == PolarityDebit || p == PolarityCredit
}

// Provenance locates the source of a transaction.
type Provenance struct {
	Document string `json:"document" yaml:"document"`
	Line     int    `json:"line" yaml:"line"`
}

func (p Provenance) String() string {
	return fmt.Sprintf("%s:%d", p.Document, p.Line)
}

// Transaction is one dated, typed statement entry. Amount is always positive; the
// direction lives in Polarity.
type Transaction struct {
	ID          string          `json:"id" yaml:"id"`
	Date        time.Time       `json:"date" yaml:"date"`
	Description string          `json:"description" yaml:"description"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Polarity    Polarity        `json:"polarity" yaml:"polarity"`
	AccountTag  string          `json:"account_tag" yaml:"account_tag"`
	Provenance  Provenance      `json:"provenance" yaml:"provenance"`
	Category    string          `json:"category,omitempty" yaml:"category,omitempty"`

	// Installment holds "current/total" counters when the description carried them.
	Installment   string `json:"installment,omitempty" yaml:"installment,omitempty"`
	IsInstallment bool   `json:"is_installment" yaml:"is_installment"`
	// DateSource names the rule that resolved the year (explicit, billing, due, hint,
	// fallback or document).
	DateSource string `json:"date_source" yaml:"date_source"`
}

// IsDebit reports whether the transaction is a charge.
func (t Transaction) IsDebit() bool {
	return t.Polarity == PolarityDebit
}

// IsCredit reports whether the transaction is a payment, refund or other credit.
func (t Transaction) IsCredit() bool {
	return t.Polarity == PolarityCredit
}

// SignedAmount returns the amount negated for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// DedupKey identifies transactions that may be the same real event seen twice.
type DedupKey struct {
	Day         int
	Month       time.Month
	Description string
	Amount      string
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%02d/%02d|%s|%s", k.Day, int(k.Month), k.Description, k.Amount)
}

// Key builds the transaction's DedupKey. The year is deliberately left out.
func (t Transaction) Key() DedupKey {
	return DedupKey{
		Day:         t.Date.Day(),
		Month:       t.Date.Month(),
		Description: textutils.NormalizeForKey(t.Description),
		Amount:      t.Amount.StringFixed(2),
	}
}
