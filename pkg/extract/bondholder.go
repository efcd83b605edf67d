package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

var bondTypeCascade = pattern.NewCascade(nil,
	pattern.NewRule(pattern.FieldBondType, "due-year", `(?i)\b(?:Notes|Bonds|Obligations)\s+due\s+(?P<year>\d{4})`, 0),
	pattern.NewRule(pattern.FieldBondType, "echeant-en", `(?i)\bObligations\s+(?:échéant|à\s+échéance)\s+(?:en\s+)?(?P<year>\d{4})`, 0),
)

var clearingSystems = []struct {
	match *regexp.Regexp
	name  string
}{
	{regexp.MustCompile(`(?i)\beuroclear\b`), "Euroclear"},
	{regexp.MustCompile(`(?i)\bclearstream\b`), "Clearstream"},
}

var (
	deemedConsentPattern = regexp.MustCompile(`(?i)deemed\s+consent|consentement\s+r[ée]put[ée]`)
	meetingCallPattern   = regexp.MustCompile(`(?i)\b(first|second|third|\d+(?:st|nd|rd|th))\s+meeting`)
)

var ordinalWords = map[string]int{"first": 1, "second": 2, "third": 3}

func (e *Extractor) extractBondholder(text string) *BondholderDetails {
	details := &BondholderDetails{
		DeemedConsent: deemedConsentPattern.MatchString(text),
		MeetingCalls:  meetingCalls(text),
	}

	if m, ok := e.cascade(pattern.FieldBondType, bondTypeCascade).First(text); ok {
		details.BondType = m.Value
		details.MaturityYear, _ = strconv.Atoi(m.Group("year"))
	}
	for _, cs := range clearingSystems {
		if cs.match.MatchString(text) {
			details.ClearingSystems = append(details.ClearingSystems, cs.name)
		}
	}
	return details
}

// meetingCalls returns the distinct meeting-call ordinals in order of first
// appearance.
func meetingCalls(text string) []int {
	var calls []int
	seen := make(map[int]bool)
	for _, m := range meetingCallPattern.FindAllStringSubmatch(text, -1) {
		word := strings.ToLower(m[1])
		n, ok := ordinalWords[word]
		if !ok {
			digits := strings.TrimRight(word, "stndrh")
			var err error
			if n, err = strconv.Atoi(digits); err != nil {
				continue
			}
		}
		if n > 0 && !seen[n] {
			seen[n] = true
			calls = append(calls, n)
		}
	}
	return calls
}
