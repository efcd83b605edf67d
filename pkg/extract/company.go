package extract

import (
	"regexp"
	"strings"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

// companyBoilerplate rejects headings that happen to end in a legal suffix.
var companyBoilerplate = regexp.MustCompile(`(?i)\b(?:notice|meeting|convocation|agenda|assembly|assembl[ée]e|avis|ordre du jour)\b`)

var companyCascade = pattern.NewCascade(validCompanyName,
	pattern.NewRule(pattern.FieldCompanyName, "bold-span",
		`\*\*\s*([A-Z][A-Za-z0-9&,.'\- ]*?\s(?:SE|SA|S\.A\.|Ltd\.?|GmbH))\s*\*\*`, 1),
	pattern.NewRule(pattern.FieldCompanyName, "caps-line",
		`(?m)^[ \t]*([A-Z][A-Z0-9&,.'\- ]*?[ ](?:SE|SA|S\.A\.|LTD\.?|Ltd\.?|GMBH|GmbH))[ \t]*$`, 1),
	pattern.NewRule(pattern.FieldCompanyName, "convened-by",
		`(?i:convened\s+by|convoqu[ée]e?s?\s+par)\s+(?:the\s+board\s+of\s+directors\s+of\s+)?([A-Z][A-Za-z0-9&,.'\- ]*?\s(?:SE|SA|S\.A\.|Ltd\.?|GmbH))(?:[^A-Za-z0-9]|$)`, 1),
)

func validCompanyName(m *pattern.Match) (string, bool) {
	name := strings.ToUpper(strings.TrimSpace(m.Value))
	if name == "" || companyBoilerplate.MatchString(name) {
		return "", false
	}
	return name, true
}

// extractCompanyName returns the uppercased issuer name or DefaultIssuer.
func (e *Extractor) extractCompanyName(text string) string {
	if m, ok := e.cascade(pattern.FieldCompanyName, companyCascade).First(text); ok {
		return m.Value
	}
	return DefaultIssuer
}
