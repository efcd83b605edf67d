package extract

import (
	"regexp"
	"sort"
	"strings"
)

// monthNumbers maps lower-case English and French month names to 1-12.
// Unaccented French spellings are accepted as they appear in converted PDFs.
var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,

	"janvier": 1, "février": 2, "fevrier": 2, "mars": 3, "avril": 4,
	"mai": 5, "juin": 6, "juillet": 7, "août": 8, "aout": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12, "decembre": 12,
}

// monthAlternation is a regexp alternation of every month name, longest first.
var monthAlternation = buildMonthAlternation()

func buildMonthAlternation() string {
	names := make([]string, 0, len(monthNumbers))
	for name := range monthNumbers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}
	return strings.Join(names, "|")
}

// withMonths substitutes the month alternation for every MONTH placeholder.
func withMonths(expr string) string {
	return strings.ReplaceAll(expr, "MONTH", "(?:"+monthAlternation+")")
}

func monthNumber(name string) (int, bool) {
	n, ok := monthNumbers[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}
