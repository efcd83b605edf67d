package extract

import (
	"strings"
	"unicode"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

// isinLength is the fixed length of an ISIN.
const isinLength = 12

var isinCascade = pattern.NewCascade(validISIN,
	pattern.NewRule(pattern.FieldISIN, "label", `(?i)\bISIN(?:\s+code)?\s*[:\s]\s*([A-Z]{2}[A-Z0-9]{9}[0-9])`, 1),
	pattern.NewRule(pattern.FieldISIN, "prefix-lu", `(?i)\b(LU[0-9]{10})\b`, 1),
	pattern.NewRule(pattern.FieldISIN, "prefix-xs", `(?i)\b(XS[0-9]{10})\b`, 1),
	pattern.NewRule(pattern.FieldISIN, "prefix-fr", `(?i)\b(FR[0-9]{10})\b`, 1),
	pattern.NewRule(pattern.FieldISIN, "prefix-de", `(?i)\b(DE[0-9]{10})\b`, 1),
	pattern.NewRule(pattern.FieldISIN, "prefix-be", `(?i)\b(BE[0-9]{10})\b`, 1),
	pattern.NewRule(pattern.FieldISIN, "generic", `\b([A-Z]{2}[A-Z0-9]{9}[0-9])\b`, 1),
	pattern.NewRule(pattern.FieldISIN, "spaced", `(?i)\b(?:LU|XS)(?:\s?[0-9]){10}\b`, 0),
)

// validISIN strips whitespace, uppercases and checks the length. There is no
// check-digit verification.
func validISIN(m *pattern.Match) (string, bool) {
	v := strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, m.Value))
	if len(v) != isinLength {
		return "", false
	}
	for _, r := range v {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", false
		}
	}
	return v, true
}

func (e *Extractor) extractISIN(text string) string {
	if m, ok := e.cascade(pattern.FieldISIN, isinCascade).First(text); ok {
		return m.Value
	}
	return ""
}
