package family

import "fjacquet/fatura-csv/internal/models"

// Amount shapes shared by both families. Statement amounts always carry two decimals
// after a comma, which keeps store numbers and counters out of the amount slot.
const (
	amountLine = `^\s*(?P<sign>[-+])?\s*(?:R\$\s*)?(?P<amount>\d[\d.]*,\d{2})(?P<trail>-)?\s*$`
	amountTail = `\s(?P<sign>[-+])?(?P<amount>\d[\d.]*,\d{2})\s*$`
	dayMonth   = `(?P<date>\d{2}/\d{2})`
)

// Itau returns the rule set for Itaú card statements.
func Itau() *Family {
	return &Family{
		Name:           "itau",
		TagPrefix:      "Itau",
		RequireSection: true,
		BeginMarkers:   []string{"Lançamentos:", "DATA ESTABELECIMENTO VALOR"},
		EndMarkers:     []string{"Limites de crédito", "Encargos cobrados", "Resumo da fatura", "próximas faturas"},
		CardHeaderPatterns: []string{
			`(?i)cart[ãa]o\s+(\d{4}\.XXXX\.XXXX\.\d{4})`,
			`(\d{4}\.XXXX\.XXXX\.\d{4})`,
			`(?i)\bfinal\s+(\d{4})`,
		},
		Cascade: []PatternSpec{
			{Kind: SingleLine, Pattern: `^` + dayMonth + `\s+(?P<desc>.+?)\s+(?P<amount>-?\d[\d.]*,\d{2})(?P<trail>-)?$`},
			{Kind: AmountNextLine, Pattern: `^` + dayMonth + `\s+(?P<desc>.+)$`},
			{Kind: ContinuationNextLine, Pattern: `^` + dayMonth + `\s+(?P<desc>.+)$`},
			{Kind: TwoLineContinuation, Pattern: `^` + dayMonth + `\s+(?P<desc>.+)$`},
		},
		AmountLinePattern:    amountLine,
		AmountTailPattern:    amountTail,
		MinDescriptionLength: 3,
		Boilerplate:          []string{"FINAL", "CARTÃO", "TOTAL", "SALDO"},
		Categories: []string{
			"ALIMENTAÇÃO", "EDUCAÇÃO", "VESTUÁRIO", "SAÚDE",
			"TURISMO E ENTRETENIM", "DIVERSOS", "HOBBY", "TRANSPORTE",
		},
		DebitKeywords:    []string{"COMPRA", "SAQUE", "ANUIDADE", "JUROS", "MULTA", "IOF", "ENCARGO"},
		CreditKeywords:   []string{"PAGAMENTO", "CREDITO", "ESTORNO", "DEVOLUÇÃO"},
		DefaultPolarity:  models.PolarityDebit,
		NegativePolarity: models.PolarityCredit,
		DueDatePatterns: []string{
			`(?i)vencimento\s*:?\s*(\d{2}/\d{2}/\d{4})`,
		},
		SummaryPatterns:   []string{`(?i)pr[óo]ximas\s+faturas`},
		BillingOffsetDays: 30,
	}
}

// Inter returns the rule set for Banco Inter statements. Inter dumps are matched
// anywhere in the document.
func Inter() *Family {
	textual := `(?P<date>\d{2}\s+de\s+\p{L}+\.?\s+\d{4})`
	return &Family{
		Name:           "inter",
		TagPrefix:      "Inter",
		RequireSection: false,
		CardHeaderPatterns: []string{
			`(\d{4}\s*\*{4}\s*\*{4}\s*\d{4})`,
			`(?i)cart[ãa]o.*?(\d{4}\s*\*+\s*\d{4})`,
		},
		Cascade: []PatternSpec{
			{Kind: SingleLine, Pattern: `(?i)` + textual + `\s+(?P<desc>.+?)\s+-\s+(?P<sign>\+)?\s*R\$\s*(?P<amount>\d[\d.]*,\d{2})`},
			{Kind: SingleLine, Pattern: `(?i)` + textual + `\s+(?P<desc>.+?)\s+(?P<sign>\+)?\s*R\$\s*(?P<amount>\d[\d.]*,\d{2})`},
			{Kind: SingleLine, Pattern: `(?P<date>\d{2}[/-]\d{2}[/-]\d{4})\s+(?P<desc>.+?)\s+(?P<amount>[-+]?\d[\d.]*[.,]\d{2})\b`},
			{Kind: SingleLine, Pattern: `(?P<date>\d{4}-\d{2}-\d{2})\s+(?P<desc>.+?)\s+(?P<amount>[-+]?\d[\d.]*[.,]\d{2})\b`},
		},
		AmountLinePattern:    amountLine,
		AmountTailPattern:    amountTail,
		MinDescriptionLength: 3,
		Boilerplate:          []string{"DATA", "VALOR", "DESCRIÇÃO", "TOTAL"},
		DebitKeywords: []string{
			"DEBIT", "WITHDRAWAL", "TRANSFER OUT", "FEE", "CHARGE",
			"MULTA", "ENCARGOS", "JUROS", "IOF", "TRANSFERENCIA",
		},
		CreditKeywords:   []string{"CREDIT", "DEPOSIT", "TRANSFER IN", "REFUND", "INTEREST", "PAGAMENTO", "DEB AUT"},
		DefaultPolarity:  models.PolarityDebit,
		NegativePolarity: models.PolarityDebit,
		DueDatePatterns: []string{
			`(?i)vencimento\s*:?\s*(\d{2}/\d{2}/\d{4})`,
			`(?i)vencimento\s*:?\s*(\d{1,2}\s+de\s+\p{L}+\.?\s+\d{4})`,
		},
		SummaryPatterns:   []string{`(?i)pr[óo]ximas\s+faturas`},
		BillingOffsetDays: 30,
	}
}

// BuiltIn returns fresh copies of every built-in family.
func BuiltIn() []*Family {
	return []*Family{Itau(), Inter()}
}
