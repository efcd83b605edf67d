package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

// RuleSource supplies institution-specific rules per field.
type RuleSource interface {
	RulesFor(field pattern.Field) []*pattern.Rule
}

// Extractor builds a Record from notice text. It holds no per-notice state
// and is safe for concurrent use.
type Extractor struct {
	rules RuleSource
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRules adds rules from src ahead of the built-in cascades. Rules are read
// on every Extract call, so a reloading registry takes effect immediately.
func WithRules(src RuleSource) Option {
	return func(e *Extractor) {
		e.rules = src
	}
}

// NewExtractor creates an extractor with the built-in English and French
// patterns.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) cascade(field pattern.Field, base *pattern.Cascade) *pattern.Cascade {
	if e.rules == nil {
		return base
	}
	return base.With(e.rules.RulesFor(field))
}

func (e *Extractor) agendaScanner() *AgendaScanner {
	if e.rules == nil {
		return NewAgendaScanner(nil, nil)
	}
	return NewAgendaScanner(e.rules.RulesFor(pattern.FieldAgendaStart), e.rules.RulesFor(pattern.FieldAgendaEnd))
}

// spaceReplacer folds the non-breaking spaces common in French typography.
var spaceReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u00a0", " ", "\u202f", " ")

// Extract classifies the text and extracts every field. Missing fields are
// left empty; Extract never fails.
func (e *Extractor) Extract(text string) *Record {
	text = spaceReplacer.Replace(text)

	rec := &Record{
		MeetingType:  ClassifyMeeting(text),
		DocumentType: ClassifyDocument(text),
		Language:     DetectLanguage(text),
		CompanyName:  e.extractCompanyName(text),
		ISIN:         e.extractISIN(text),
		RCS:          e.first(pattern.FieldRCS, rcsCascade, text),
		BIC:          e.first(pattern.FieldBIC, bicCascade, text),
		Time:         e.extractTime(text),
		Contact: Contact{
			Email: e.first(pattern.FieldEmail, emailCascade, text),
			Phone: e.first(pattern.FieldPhone, phoneCascade, text),
		},
		URL:            e.first(pattern.FieldURL, urlCascade, text),
		Quorum:         extractQuorum(text),
		HoldingBalance: e.first(pattern.FieldBalance, balanceCascade, text),
	}
	e.extractDates(text, rec)
	e.extractLocation(text, rec)
	rec.Resolutions = e.agendaScanner().Scan(text)

	switch rec.MeetingType {
	case MeetingTypeAGM:
		rec.AGM = e.extractAGM(text)
	case MeetingTypeEGM:
		rec.EGM = extractEGM(text)
	case MeetingTypeBondholder:
		rec.Bondholder = e.extractBondholder(text)
	}

	return rec
}

// ExtractReader reads the whole notice from r and extracts it.
func (e *Extractor) ExtractReader(r io.Reader) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return e.Extract(string(data)), nil
}
