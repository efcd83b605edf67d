package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/coolbeans/seevgen/pkg/extract"
)

const notFound = "not found"

// FormatSummary renders the extracted record for review before generation.
func FormatSummary(rec *extract.Record) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	value := func(s string) string {
		if s == "" {
			return notFound
		}
		return s
	}
	line := func(label, v string) {
		fmt.Fprintf(&b, "%-16s %s\n", label+":", value(v))
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "EXTRACTED DATA (%s, %s)\n", rec.MeetingType, rec.Language)
	b.WriteString(rule + "\n")
	line("Document", string(rec.DocumentType))
	line("Company", rec.CompanyName)
	line("ISIN", rec.ISIN)
	line("RCS", rec.RCS)
	line("BIC", rec.BIC)
	line("Meeting date", rec.MeetingDate)
	line("Time", firstNonEmpty(rec.MeetingTime, rec.Time))
	line("Record date", rec.RecordDate)
	line("Deadline", rec.Deadline)
	line("Location", rec.Location)
	line("Email", rec.Contact.Email)
	line("Phone", rec.Contact.Phone)
	line("URL", rec.URL)
	line("Quorum", rec.Quorum)
	line("Holding", rec.HoldingBalance)

	switch {
	case rec.AGM != nil:
		line("Dividend", rec.AGM.Dividend)
		line("Fiscal year end", rec.AGM.FiscalYearEnd)
		line("Auditor", rec.AGM.Auditor)
	case rec.EGM != nil:
		line("Purposes", strings.Join(rec.EGM.Purposes, ", "))
		if rec.EGM.Liquidation {
			line("Liquidation", "yes")
		}
	case rec.Bondholder != nil:
		line("Bond type", rec.Bondholder.BondType)
		if rec.Bondholder.MaturityYear > 0 {
			line("Maturity", strconv.Itoa(rec.Bondholder.MaturityYear))
		}
		line("Clearing", strings.Join(rec.Bondholder.ClearingSystems, ", "))
		if rec.Bondholder.DeemedConsent {
			line("Deemed consent", "yes")
		}
	}

	fmt.Fprintf(&b, "%-16s %d\n", "Resolutions:", len(rec.Resolutions))
	for _, res := range rec.Resolutions {
		marker := ""
		if res.InfoOnly {
			marker = " (information)"
		}
		fmt.Fprintf(&b, "  %2d. %s%s\n", res.Number, extract.Truncate(res.Title, 80), marker)
	}

	if missing := missingFields(rec); len(missing) > 0 {
		fmt.Fprintf(&b, "%-16s %s\n", "Defaults used:", strings.Join(missing, ", "))
	}
	b.WriteString(rule + "\n")
	return b.String()
}

// missingFields lists, sorted, the coverage fields that were not found.
func missingFields(rec *extract.Record) []string {
	var missing []string
	for field, found := range rec.Coverage() {
		if !found {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
