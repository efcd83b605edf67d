package extract

import (
	"strings"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

var dividendCascade = pattern.NewCascade(validAmount,
	pattern.NewRule(pattern.FieldDividend, "dividend-of-eur", `(?i)\bdividend\s+of\s+(?:EUR|€)\s*([0-9][0-9.,]*)`, 1),
	pattern.NewRule(pattern.FieldDividend, "dividend-of-amount-eur", `(?i)\bdividend\s+of\s+([0-9][0-9.,]*)\s*(?:EUR|€)`, 1),
	pattern.NewRule(pattern.FieldDividend, "dividende-de", `(?i)\bdividende\s+(?:brut\s+)?de\s+(?:EUR|€)?\s*([0-9][0-9.,]*)`, 1),
)

var fiscalYearCascade = pattern.NewCascade(nil,
	pattern.NewRule(pattern.FieldFiscalYearEnd, "year-ended", `(?i)\b(?:fiscal|financial)\s+year\s+ended\s+(?:on\s+)?([^,.\n]+)`, 1),
	pattern.NewRule(pattern.FieldFiscalYearEnd, "exercice-clos", `(?i)\bexercice\s+(?:social\s+)?clos\s+(?:le\s+|au\s+)?([^,.\n]+)`, 1),
)

var auditorCascade = pattern.NewCascade(nil,
	pattern.NewRule(pattern.FieldAuditor, "auditor", `(?i:auditor)\s+([A-Z][A-Za-z\s.&-]*?S\.A\.)`, 1),
	pattern.NewRule(pattern.FieldAuditor, "reviseur", `(?i:r[ée]viseur\s+d['’]entreprises(?:\s+agr[ée][ée])?)\s*,?\s*([A-Z][\pL\s.&-]*?S\.A\.)`, 1),
)

// validAmount drops sentence punctuation trailing a decimal amount.
func validAmount(m *pattern.Match) (string, bool) {
	v := strings.TrimRight(strings.TrimSpace(m.Value), ".,")
	return v, v != ""
}

func (e *Extractor) extractAGM(text string) *AGMDetails {
	return &AGMDetails{
		Dividend:      e.first(pattern.FieldDividend, dividendCascade, text),
		FiscalYearEnd: e.first(pattern.FieldFiscalYearEnd, fiscalYearCascade, text),
		Auditor:       strings.Join(strings.Fields(e.first(pattern.FieldAuditor, auditorCascade, text)), " "),
	}
}
