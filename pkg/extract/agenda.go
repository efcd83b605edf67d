package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

type agendaState int

const (
	outsideAgenda agendaState = iota
	insideAgenda
)

var (
	agendaStartRules = []*pattern.Rule{
		pattern.NewRule(pattern.FieldAgendaStart, "agenda-heading",
			`(?i)AGENDA FOR THE ANNUAL|^I\.\s*AGENDA|AGENDA|ORDER OF BUSINESS|ORDRE DU JOUR`, 0),
	}
	agendaEndRules = []*pattern.Rule{
		pattern.NewRule(pattern.FieldAgendaEnd, "next-section",
			`(?i)^II\.|^III\.|^IV\.|^PARTICIPATION|^VOTING|^PROXY|^VOTE|^PROCURATION`, 0),
	}

	resolutionLine = regexp.MustCompile(`^\s*(\d{1,2})[.)]\s+(.+)`)
	infoOnlyText   = regexp.MustCompile(`(?i)^pr[ée]sentation`)
)

// minContinuationLength is the shortest line appended to a wrapped resolution.
const minContinuationLength = 6

// AgendaScanner walks a notice line by line and collects numbered agenda
// items between the agenda heading and the next section heading.
type AgendaScanner struct {
	start []*pattern.Rule
	end   []*pattern.Rule
}

// NewAgendaScanner creates a scanner. Extra heading rules are tried before
// the built-in ones.
func NewAgendaScanner(extraStart, extraEnd []*pattern.Rule) *AgendaScanner {
	return &AgendaScanner{
		start: append(append([]*pattern.Rule{}, extraStart...), agendaStartRules...),
		end:   append(append([]*pattern.Rule{}, extraEnd...), agendaEndRules...),
	}
}

type pendingResolution struct {
	number int
	parts  []string
}

// Scan returns the agenda items in order of appearance. Heading keywords are
// only recognized outside the agenda; inside it, the first next-section line
// ends the scan.
func (s *AgendaScanner) Scan(text string) []Resolution {
	var (
		state       = outsideAgenda
		resolutions []Resolution
		current     *pendingResolution
	)

	flush := func() {
		if current == nil {
			return
		}
		raw := strings.TrimSpace(strings.Join(current.parts, " "))
		if raw != "" {
			resolutions = append(resolutions, Resolution{
				Number:   current.number,
				Title:    Summarize(raw),
				Text:     raw,
				InfoOnly: infoOnlyText.MatchString(raw),
			})
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if state == outsideAgenda {
			if pattern.Matches(s.start, line) {
				state = insideAgenda
			}
			continue
		}

		if pattern.Matches(s.end, line) {
			break
		}
		if agendaDateLine.MatchString(line) {
			continue
		}
		if m := resolutionLine.FindStringSubmatch(line); m != nil {
			flush()
			n, _ := strconv.Atoi(m[1])
			current = &pendingResolution{number: n, parts: []string{strings.TrimSpace(m[2])}}
			continue
		}
		if current != nil && len([]rune(line)) >= minContinuationLength && !isAllCaps(line) {
			current.parts = append(current.parts, line)
		}
	}
	flush()

	return resolutions
}

// isAllCaps reports whether line has letters and none of them is lower case.
func isAllCaps(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0
}
