package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/fatura-csv/internal/currencyutils"
	"fjacquet/fatura-csv/internal/dateutils"
	"fjacquet/fatura-csv/internal/models"
	"fjacquet/fatura-csv/internal/textutils"
)

// StandardRow is one transaction in the default export.
type StandardRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Polarity    string `csv:"transaction_type"`
	Account     string `csv:"card_number"`
	Installment string `csv:"installment"`
	Reference   string `csv:"reference"`
	Category    string `csv:"category"`
	DateSource  string `csv:"date_source"`
}

// OmieRow is one payable title in the Omie ERP import layout.
type OmieRow struct {
	Supplier     string `csv:"cNomeFornecedor"`
	Amount       string `csv:"nValorTitulo"`
	Card         string `csv:"cNumeroCartao"`
	Installments string `csv:"cNumeroParcelas"`
	Observation  string `csv:"cObservacao"`
	IssueDate    string `csv:"dEmissao"`
	DueDate      string `csv:"dVencimento"`
}

// CardRow holds the totals of one account tag.
type CardRow struct {
	Card         string `csv:"card_number"`
	Transactions int    `csv:"total_transactions"`
	Debits       string `csv:"total_debits"`
	Credits      string `csv:"total_credits"`
	Net          string `csv:"net_amount"`
}

// VendorRow holds the totals of one supplier.
type VendorRow struct {
	Vendor       string `csv:"vendor_name"`
	Transactions int    `csv:"total_transactions"`
	Debits       string `csv:"total_debits"`
	Credits      string `csv:"total_credits"`
	Net          string `csv:"net_amount"`
}

// CardVendorRow holds the totals of one supplier on one card.
type CardVendorRow struct {
	Card         string `csv:"card_number"`
	Vendor       string `csv:"supplier"`
	Transactions int    `csv:"transactions"`
	Total        string `csv:"total_amount"`
	Debits       string `csv:"debits"`
	Credits      string `csv:"credits"`
}

// MonthRow holds the totals of one calendar month.
type MonthRow struct {
	Month        string `csv:"month"`
	Transactions int    `csv:"total_transactions"`
	Debits       string `csv:"total_debits"`
	Credits      string `csv:"total_credits"`
	Net          string `csv:"net_amount"`
}

// SummaryRow is one metric of the summary export.
type SummaryRow struct {
	Metric string `csv:"metric"`
	Value  string `csv:"value"`
}

// totals accumulates debits and credits. Net is credits minus debits.
type totals struct {
	count   int
	debits  decimal.Decimal
	credits decimal.Decimal
}

func (t *totals) add(tx models.Transaction) {
	t.count++
	if tx.IsDebit() {
		t.debits = t.debits.Add(tx.Amount)
	} else {
		t.credits = t.credits.Add(tx.Amount)
	}
}

func (t *totals) net() decimal.Decimal   { return t.credits.Sub(t.debits) }
func (t *totals) total() decimal.Decimal { return t.credits.Add(t.debits) }

// keyed keeps first-seen key order next to the totals.
type keyed struct {
	keys  []string
	byKey map[string]*totals
}

func newKeyed() *keyed { return &keyed{byKey: make(map[string]*totals)} }

func (k *keyed) add(key string, tx models.Transaction) {
	t, ok := k.byKey[key]
	if !ok {
		t = &totals{debits: decimal.Zero, credits: decimal.Zero}
		k.byKey[key] = t
		k.keys = append(k.keys, key)
	}
	t.add(tx)
}

// sortByTotalDesc orders keys by gross amount, largest first, ties by first-seen order.
func (k *keyed) sortByTotalDesc() {
	sort.SliceStable(k.keys, func(i, j int) bool {
		return k.byKey[k.keys[i]].total().GreaterThan(k.byKey[k.keys[j]].total())
	})
}

func cardLabel(tag string) string {
	if tag == "" {
		return "Unknown Card"
	}
	return tag
}

// installmentOf prefers the counters captured at extraction time.
func installmentOf(tx models.Transaction) string {
	if tx.Installment != "" {
		return tx.Installment
	}
	info, _ := textutils.ParcelaInfo(tx.Description)
	return info
}

// StandardRows converts transactions one to one.
func StandardRows(txs []models.Transaction) []StandardRow {
	rows := make([]StandardRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, StandardRow{
			Date:        dateutils.FormatBR(tx.Date),
			Description: tx.Description,
			Amount:      currencyutils.FormatAmount(tx.Amount),
			Polarity:    string(tx.Polarity),
			Account:     tx.AccountTag,
			Installment: installmentOf(tx),
			Reference:   tx.Provenance.String(),
			Category:    tx.Category,
			DateSource:  tx.DateSource,
		})
	}
	return rows
}

// OmieRows builds ERP titles for the debits. Every title falls due on invoiceDate.
func OmieRows(txs []models.Transaction, invoiceDate time.Time, observation string) []OmieRow {
	rows := make([]OmieRow, 0, len(txs))
	for _, tx := range txs {
		if !tx.IsDebit() {
			continue
		}
		inst := installmentOf(tx)
		obs := observation
		if inst != "" {
			obs += " - Parcela " + inst
		}
		rows = append(rows, OmieRow{
			Supplier:     textutils.SupplierName(tx.Description),
			Amount:       currencyutils.FormatAmount(tx.Amount),
			Card:         tx.AccountTag,
			Installments: inst,
			Observation:  obs,
			IssueDate:    dateutils.FormatBR(tx.Date),
			DueDate:      dateutils.FormatBR(invoiceDate),
		})
	}
	return rows
}

// CardRows totals transactions per account tag in first-seen order.
func CardRows(txs []models.Transaction) []CardRow {
	k := newKeyed()
	for _, tx := range txs {
		k.add(cardLabel(tx.AccountTag), tx)
	}
	rows := make([]CardRow, 0, len(k.keys))
	for _, key := range k.keys {
		t := k.byKey[key]
		rows = append(rows, CardRow{
			Card:         key,
			Transactions: t.count,
			Debits:       currencyutils.FormatAmount(t.debits),
			Credits:      currencyutils.FormatAmount(t.credits),
			Net:          currencyutils.FormatAmount(t.net()),
		})
	}
	return rows
}

// VendorRows totals transactions per supplier, largest gross amount first.
func VendorRows(txs []models.Transaction) []VendorRow {
	k := newKeyed()
	for _, tx := range txs {
		k.add(textutils.SupplierName(tx.Description), tx)
	}
	k.sortByTotalDesc()
	rows := make([]VendorRow, 0, len(k.keys))
	for _, key := range k.keys {
		t := k.byKey[key]
		rows = append(rows, VendorRow{
			Vendor:       key,
			Transactions: t.count,
			Debits:       currencyutils.FormatAmount(t.debits),
			Credits:      currencyutils.FormatAmount(t.credits),
			Net:          currencyutils.FormatAmount(t.net()),
		})
	}
	return rows
}

// CardVendorRows totals suppliers within each card. Cards keep first-seen order and
// suppliers are sorted by gross amount inside a card.
func CardVendorRows(txs []models.Transaction) []CardVendorRow {
	cards := newKeyed()
	perCard := make(map[string]*keyed)
	for _, tx := range txs {
		card := cardLabel(tx.AccountTag)
		cards.add(card, tx)
		if perCard[card] == nil {
			perCard[card] = newKeyed()
		}
		perCard[card].add(textutils.SupplierName(tx.Description), tx)
	}

	var rows []CardVendorRow
	for _, card := range cards.keys {
		vendors := perCard[card]
		vendors.sortByTotalDesc()
		for _, v := range vendors.keys {
			t := vendors.byKey[v]
			rows = append(rows, CardVendorRow{
				Card:         card,
				Vendor:       v,
				Transactions: t.count,
				Total:        currencyutils.FormatAmount(t.total()),
				Debits:       currencyutils.FormatAmount(t.debits),
				Credits:      currencyutils.FormatAmount(t.credits),
			})
		}
	}
	if rows == nil {
		rows = []CardVendorRow{}
	}
	return rows
}

// MonthRows totals transactions per month, in chronological order.
func MonthRows(txs []models.Transaction) []MonthRow {
	k := newKeyed()
	for _, tx := range txs {
		k.add(tx.Date.Format("2006-01"), tx)
	}
	sort.Strings(k.keys)

	rows := make([]MonthRow, 0, len(k.keys))
	for _, key := range k.keys {
		t := k.byKey[key]
		month, _ := time.Parse("2006-01", key)
		rows = append(rows, MonthRow{
			Month:        dateutils.FormatMonth(month),
			Transactions: t.count,
			Debits:       currencyutils.FormatAmount(t.debits),
			Credits:      currencyutils.FormatAmount(t.credits),
			Net:          currencyutils.FormatAmount(t.net()),
		})
	}
	return rows
}

// SummaryRows reports overall totals, date range and the number of cards and vendors.
func SummaryRows(txs []models.Transaction) []SummaryRow {
	all := totals{debits: decimal.Zero, credits: decimal.Zero}
	cards := make(map[string]bool)
	vendors := make(map[string]bool)
	var earliest, latest time.Time
	for _, tx := range txs {
		all.add(tx)
		cards[cardLabel(tx.AccountTag)] = true
		if tx.IsDebit() {
			vendors[textutils.SupplierName(tx.Description)] = true
		}
		if earliest.IsZero() || tx.Date.Before(earliest) {
			earliest = tx.Date
		}
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}

	formatDate := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return dateutils.FormatBR(t)
	}
	return []SummaryRow{
		{Metric: "Total Transactions", Value: strconv.Itoa(all.count)},
		{Metric: "Total Debits", Value: currencyutils.FormatBRL(all.debits)},
		{Metric: "Total Credits", Value: currencyutils.FormatBRL(all.credits)},
		{Metric: "Net Amount", Value: currencyutils.FormatBRL(all.net())},
		{Metric: "Date Range Start", Value: formatDate(earliest)},
		{Metric: "Date Range End", Value: formatDate(latest)},
		{Metric: "Number of Cards", Value: strconv.Itoa(len(cards))},
		{Metric: "Number of Vendors", Value: strconv.Itoa(len(vendors))},
	}
}
