package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionBuilder assembles a Transaction and validates it on Build.
type TransactionBuilder struct {
	tx  Transaction
	err error
}

// NewTransactionBuilder returns a builder defaulting to a debit.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{tx: Transaction{Polarity: PolarityDebit, Amount: decimal.Zero}}
}

func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date must not be zero")
		return b
	}
	b.tx.Date = date
	return b
}

func (b *TransactionBuilder) WithDescription(description string) *TransactionBuilder {
	b.tx.Description = description
	return b
}

// WithAmount stores the magnitude of amount.
func (b *TransactionBuilder) WithAmount(amount decimal.Decimal) *TransactionBuilder {
	b.tx.Amount = amount.Abs()
	return b
}

func (b *TransactionBuilder) WithPolarity(p Polarity) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if !p.Valid() {
		b.err = fmt.Errorf("invalid polarity %q", p)
		return b
	}
	b.tx.Polarity = p
	return b
}

func (b *TransactionBuilder) WithAccountTag(tag string) *TransactionBuilder {
	b.tx.AccountTag = tag
	return b
}

func (b *TransactionBuilder) WithProvenance(document string, line int) *TransactionBuilder {
	b.tx.Provenance = Provenance{Document: document, Line: line}
	return b
}

// WithInstallment records the classifier verdict and any counters found.
func (b *TransactionBuilder) WithInstallment(isInstallment bool, counters string) *TransactionBuilder {
	b.tx.IsInstallment = isInstallment
	b.tx.Installment = counters
	return b
}

func (b *TransactionBuilder) WithDateSource(source string) *TransactionBuilder {
	b.tx.DateSource = source
	return b
}

func (b *TransactionBuilder) WithCategory(category string) *TransactionBuilder {
	b.tx.Category = category
	return b
}

// Build validates the transaction. A missing ID is derived from the provenance so the same
// line of the same document always yields the same ID.
func (b *TransactionBuilder) Build() (Transaction, error) {
	if b.err != nil {
		return Transaction{}, fmt.Errorf("builder error: %w", b.err)
	}
	if b.tx.Date.IsZero() {
		return Transaction{}, errors.New("date is required")
	}
	if !b.tx.Amount.GreaterThan(decimal.Zero) {
		return Transaction{}, errors.New("amount must be positive")
	}
	if b.tx.Description == "" {
		return Transaction{}, errors.New("description is required")
	}
	if b.tx.ID == "" {
		name := fmt.Sprintf("%s|%s|%s", b.tx.Provenance, b.tx.Date.Format("2006-01-02"), b.tx.Amount.StringFixed(2))
		b.tx.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
	}
	return b.tx, nil
}
