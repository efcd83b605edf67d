package extract

import (
	"regexp"
	"strings"
)

// MaxTitleLength is the longest resolution title kept, in characters.
const MaxTitleLength = 250

type titleRule struct {
	match *regexp.Regexp
	title func(text string) string
}

var (
	firstYear  = regexp.MustCompile(`\b(\d{4})\b`)
	properName = regexp.MustCompile(`(?:(?:^|\s)(?:of|to|de|à)\s+)(?:(?:Mr|Mrs|Ms|Dr|M|Mme)\.?\s+)?(\p{Lu}[\pL'-]+(?:\s+\p{Lu}[\pL'-]+){1,3})`)
)

func fixed(title string) func(string) string {
	return func(string) string { return title }
}

func withYear(prefix string) func(string) string {
	return func(text string) string {
		year := ""
		if m := firstYear.FindStringSubmatch(text); m != nil {
			year = m[1]
		}
		return strings.TrimSpace(prefix + " " + year)
	}
}

func withName(prefix, fallback string) func(string) string {
	return func(text string) string {
		if m := properName.FindStringSubmatch(text); m != nil {
			return prefix + " " + m[1]
		}
		return fallback
	}
}

// titleRules are tried in order; the first match produces the title.
var titleRules = []titleRule{
	{regexp.MustCompile(`(?i)^pr[ée]sentation\s+(?:of|des?|du)\b`), fixed("Presentation of reports")},
	{regexp.MustCompile(`(?i)approval\s+of\s+the\s+annual|approbation\s+des\s+comptes\s+annuels`), withYear("Approval of annual accounts")},
	{regexp.MustCompile(`(?i)approval\s+of\s+the\s+consolidated|approbation\s+des\s+comptes\s+consolid`), withYear("Approval of consolidated accounts")},
	{regexp.MustCompile(`(?i)approbation\s+des\s+comptes`), withYear("Approval of annual accounts")},
	{regexp.MustCompile(`(?i)allocation\s+of\s+(?:the\s+)?(?:results?|profits?)|affectation\s+(?:du|des)\s+r[ée]sultats?`), fixed("Allocation of results")},
	{regexp.MustCompile(`(?i)advisory\s+vote.*remuneration|vote\s+consultatif.*r[ée]mun[ée]ration`), fixed("Advisory vote on remuneration")},
	{regexp.MustCompile(`(?i)\bdischarge\b|\bquitus\b`), withName("Discharge to", "Granting of discharge")},
	{regexp.MustCompile(`(?i)renewal\s+of\s+(?:the\s+)?(?:mandate\s+of\s+(?:the\s+)?)?(?:statutory\s+|independent\s+)?auditor|renouvellement\s+du\s+mandat\s+du\s+r[ée]viseur`), fixed("Renewal of auditor mandate")},
	{regexp.MustCompile(`(?i)\bresignation\b|d[ée]mission`), withName("Resignation of", "Acknowledgement of resignation")},
	{regexp.MustCompile(`(?i)\b(?:appointment|election|nomination)\b`), withName("Appointment of", "Appointment")},
}

// Summarize maps raw resolution text to a short canonical title. Text that
// matches no rule is truncated to MaxTitleLength characters without ellipsis.
func Summarize(text string) string {
	text = strings.TrimSpace(text)
	for _, rule := range titleRules {
		if rule.match.MatchString(text) {
			return rule.title(text)
		}
	}
	return Truncate(text, MaxTitleLength)
}

// Truncate cuts s to at most n characters, never splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
