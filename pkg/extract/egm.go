package extract

import "regexp"

// EGM purpose tags.
const (
	PurposeArticlesAmendment = "Articles Amendment"
	PurposeCapitalIncrease   = "Capital Increase"
	PurposeCapitalReduction  = "Capital Reduction"
	PurposeMerger            = "Merger"
)

var egmPurposes = []struct {
	trigger *regexp.Regexp
	tag     string
}{
	{regexp.MustCompile(`(?i)amendment\s+of\s+the\s+articles|modification\s+des\s+statuts`), PurposeArticlesAmendment},
	{regexp.MustCompile(`(?i)capital\s+increase|increase\s+of\s+the\s+(?:share\s+)?capital|augmentation\s+d[ue]\s+capital`), PurposeCapitalIncrease},
	{regexp.MustCompile(`(?i)capital\s+reduction|reduction\s+of\s+the\s+(?:share\s+)?capital|r[ée]duction\s+d[ue]\s+capital`), PurposeCapitalReduction},
	{regexp.MustCompile(`(?i)\bmerger\b|\bfusion\b`), PurposeMerger},
}

var liquidationPattern = regexp.MustCompile(`(?i)liquidation|winding[\s-]up|dissolution`)

func extractEGM(text string) *EGMDetails {
	details := &EGMDetails{
		Liquidation: liquidationPattern.MatchString(text),
	}
	for _, p := range egmPurposes {
		if p.trigger.MatchString(text) {
			details.Purposes = append(details.Purposes, p.tag)
		}
	}
	return details
}
