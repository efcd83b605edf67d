package extract

import (
	"regexp"
	"strings"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

// luxembourgTown is the town appended to Luxembourg postal codes.
const luxembourgTown = "LUXEMBOURG"

var rcsCascade = pattern.NewCascade(validRCS,
	pattern.NewRule(pattern.FieldRCS, "rcs-label",
		`\b(?i:R\.?C\.?S\.?)(?:[ \t]+(?P<city>\p{Lu}[\pL-]+))?[ \t]*(?i:n°|no\.?|:)?[ \t]*(?P<number>[A-Z]?[ \t-]?\d+)\b`, 0),
)

// validRCS keeps the register town and number. Pack rules without a number
// group keep their whole capture.
func validRCS(m *pattern.Match) (string, bool) {
	v := m.Value
	if number := m.Group("number"); number != "" {
		v = m.Group("city") + " " + number
	}
	v = strings.Join(strings.Fields(strings.ReplaceAll(v, ":", " ")), " ")
	if !strings.ContainsAny(v, "0123456789") {
		return "", false
	}
	return v, true
}

var locationCascade = pattern.NewCascade(validLocation,
	pattern.NewRule(pattern.FieldLocation, "street-address",
		`(?i)\b(?:at|au)\s+(?P<number>\d+[A-Z]?),?\s+(?P<street>[\pL\s.'-]*?(?:Avenue|Street|Route|Rue|Boulevard|Place|Quai)[^,\n]*),\s*(?P<postcode>L-?\s?\d{4})`, 0),
)

var postcodeSpace = regexp.MustCompile(`\s+`)

func validLocation(m *pattern.Match) (string, bool) {
	number := strings.TrimSpace(m.Group("number"))
	street := strings.Join(strings.Fields(m.Group("street")), " ")
	postcode := normalizePostCode(m.Group("postcode"))
	if number == "" || street == "" || postcode == "" {
		return "", false
	}
	return number + ", " + street + ", " + postcode + " " + luxembourgTown, true
}

// normalizePostCode renders Luxembourg postal codes as L-NNNN.
func normalizePostCode(raw string) string {
	pc := strings.ToUpper(postcodeSpace.ReplaceAllString(raw, ""))
	if pc == "" {
		return ""
	}
	if strings.HasPrefix(pc, "L") && !strings.HasPrefix(pc, "L-") {
		pc = "L-" + pc[1:]
	}
	return pc
}

var emailCascade = pattern.NewCascade(nil,
	pattern.NewRule(pattern.FieldEmail, "email", `[\w.-]+@[\w.-]+\.\w+`, 0),
)

var phoneCascade = pattern.NewCascade(validPhone,
	pattern.NewRule(pattern.FieldPhone, "international",
		`(?:\+|\b00)\d{1,3}[\s.-]?(?:\(0\)\s?)?\d{1,4}(?:[\s.-]?\d{1,4}){1,4}`, 0),
)

// validPhone accepts 8 to 15 digits and collapses separators to spaces.
func validPhone(m *pattern.Match) (string, bool) {
	digits := 0
	for _, r := range m.Value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 8 || digits > 15 {
		return "", false
	}
	return strings.Join(strings.Fields(m.Value), " "), true
}

var urlCascade = pattern.NewCascade(validURL,
	pattern.NewRule(pattern.FieldURL, "http", `https?://[^\s<>"')\]]+`, 0),
)

func validURL(m *pattern.Match) (string, bool) {
	v := strings.TrimRight(m.Value, ".,;:")
	if len(v) <= len("https://") {
		return "", false
	}
	return v, true
}

var balanceCascade = pattern.NewCascade(validBalance,
	pattern.NewRule(pattern.FieldBalance, "units",
		`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)\s*(?:shares|actions|obligations)\b`, 1),
)

// validBalance drops thousands separators.
func validBalance(m *pattern.Match) (string, bool) {
	v := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m.Value)
	if v == "" || len(v) > 18 {
		return "", false
	}
	return v, true
}

var bicCascade = pattern.NewCascade(validBIC,
	pattern.NewRule(pattern.FieldBIC, "bic", `\b([A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?)\b`, 1),
)

// bicExclusions are capitalised notice words shaped like a BIC.
var bicExclusions = map[string]bool{
	"CONVOCATION": true,
	"BONDHOLDERS": true,
	"OBLIGATAIRE": true,
	"BIGREP":      true,
}

// validBIC accepts head-office codes ending in XXX and Luxembourg codes
// ending in LUX.
func validBIC(m *pattern.Match) (string, bool) {
	if bicExclusions[m.Value] {
		return "", false
	}
	if !strings.HasSuffix(m.Value, "XXX") && !strings.HasSuffix(m.Value, "LUX") {
		return "", false
	}
	return m.Value, true
}

var quorumPattern = regexp.MustCompile(`(?i)\b(?:no|without|sans|aucun)\s+quorum\b`)

// extractQuorum returns QuorumNotRequired when the notice waives the quorum.
func extractQuorum(text string) string {
	if quorumPattern.MatchString(text) {
		return QuorumNotRequired
	}
	return ""
}

func (e *Extractor) first(field pattern.Field, c *pattern.Cascade, text string) string {
	if m, ok := e.cascade(field, c).First(text); ok {
		return m.Value
	}
	return ""
}

// extractLocation fills the formatted venue and its address components.
func (e *Extractor) extractLocation(text string, rec *Record) {
	m, ok := e.cascade(pattern.FieldLocation, locationCascade).First(text)
	if !ok {
		return
	}
	rec.Location = m.Value
	rec.Address = &Address{
		BuildingNumber: strings.TrimSpace(m.Group("number")),
		Street:         strings.Join(strings.Fields(m.Group("street")), " "),
		PostCode:       normalizePostCode(m.Group("postcode")),
		Town:           luxembourgTown,
	}
}
