package textutils

import (
	"regexp"
	"strings"
)

var (
	parcelaParenRegex = regexp.MustCompile(`\(PARCELA \d+ DE \d+\)`)
	parcelaPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`\(PARCELA (\d+) DE (\d+)\)`),
		regexp.MustCompile(`PARCELA (\d+) DE (\d+)`),
		regexp.MustCompile(`PARCELA (\d+)/(\d+)`),
		regexp.MustCompile(`(\d+)/(\d+) PARCELA`),
	}
	paymentWords = []string{"PAGAMENTO", "DEB AUT", "IOF", "JUROS", "ENCARGOS", "MULTA"}
)

// DefaultSupplier is the vendor name used when nothing usable remains.
const DefaultSupplier = "OTHER"

// ParcelaInfo finds "PARCELA X DE Y" style counters and returns them as "X/Y".
func ParcelaInfo(desc string) (string, bool) {
	upper := FoldUpper(desc)
	for _, re := range parcelaPatterns {
		if m := re.FindStringSubmatch(upper); m != nil {
			return m[1] + "/" + m[2], true
		}
	}
	return "", false
}

// SupplierName derives a vendor name for ERP exports: installment phrases and the part
// after a "*" are dropped, fee/payment lines collapse to their keyword and long names keep
// their first two words.
func SupplierName(desc string) string {
	s := strings.ToUpper(desc)
	s = strings.TrimSpace(parcelaParenRegex.ReplaceAllString(s, ""))

	if idx := strings.Index(s, "*"); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}

	for _, word := range paymentWords {
		if strings.Contains(s, word) {
			return word
		}
	}

	s = strings.TrimSpace(s)
	if len(s) > 30 {
		if parts := strings.Fields(s); len(parts) >= 2 {
			s = parts[0] + " " + parts[1]
		}
	}
	if s == "" {
		return DefaultSupplier
	}
	return s
}
