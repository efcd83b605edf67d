// Package pattern provides ordered regular-expression cascades and a pluggable
// registry of institution-specific pattern packs for meeting notice extraction.
package pattern

import (
	"fmt"
	"regexp"
	"sort"
)

// Field names a record field that pattern packs may contribute rules to.
type Field string

const (
	FieldCompanyName   Field = "company_name"
	FieldISIN          Field = "isin"
	FieldRCS           Field = "rcs"
	FieldMeetingDate   Field = "meeting_date"
	FieldRecordDate    Field = "record_date"
	FieldDeadline      Field = "deadline"
	FieldTime          Field = "time"
	FieldLocation      Field = "location"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldURL           Field = "url"
	FieldBalance       Field = "balance"
	FieldBIC           Field = "bic"
	FieldDividend      Field = "dividend"
	FieldFiscalYearEnd Field = "fiscal_year_end"
	FieldAuditor       Field = "auditor"
	FieldBondType      Field = "bond_type"
	FieldAgendaStart   Field = "agenda_start"
	FieldAgendaEnd     Field = "agenda_end"
)

var knownFields = map[Field]bool{
	FieldCompanyName:   true,
	FieldISIN:          true,
	FieldRCS:           true,
	FieldMeetingDate:   true,
	FieldRecordDate:    true,
	FieldDeadline:      true,
	FieldTime:          true,
	FieldLocation:      true,
	FieldEmail:         true,
	FieldPhone:         true,
	FieldURL:           true,
	FieldBalance:       true,
	FieldBIC:           true,
	FieldDividend:      true,
	FieldFiscalYearEnd: true,
	FieldAuditor:       true,
	FieldBondType:      true,
	FieldAgendaStart:   true,
	FieldAgendaEnd:     true,
}

// Valid reports whether f is a field rules can target.
func (f Field) Valid() bool {
	return knownFields[f]
}

// Fields returns every field name accepted in pattern packs, sorted.
func Fields() []Field {
	fields := make([]Field, 0, len(knownFields))
	for f := range knownFields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Rule is a single extraction pattern for one field.
//
// Date-like fields read the named groups day, month, year, hour, minute and
// meridiem (month may be a name or a number). Location rules read number,
// street and postcode. Every other field takes its value from Group (0 means
// the whole match).
type Rule struct {
	Name    string `yaml:"name" toml:"name" json:"name"`
	Field   Field  `yaml:"field" toml:"field" json:"field"`
	Pattern string `yaml:"pattern" toml:"pattern" json:"pattern"`
	Group   int    `yaml:"group,omitempty" toml:"group" json:"group,omitempty"`

	compiled *regexp.Regexp
}

// NewRule builds and compiles a rule, panicking on an invalid expression.
// It is meant for package-level built-in cascades.
func NewRule(field Field, name, expr string, group int) *Rule {
	return &Rule{
		Name:     name,
		Field:    field,
		Pattern:  expr,
		Group:    group,
		compiled: regexp.MustCompile(expr),
	}
}

// Validate checks the rule for required fields.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if !r.Field.Valid() {
		return fmt.Errorf("rule %q: unknown field %q", r.Name, r.Field)
	}
	if r.Pattern == "" {
		return fmt.Errorf("rule %q: pattern is required", r.Name)
	}
	if r.Group < 0 {
		return fmt.Errorf("rule %q: group must not be negative", r.Name)
	}
	return nil
}

// Compile compiles the rule's expression and checks the value group exists.
func (r *Rule) Compile() error {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("compiling rule %q: %w", r.Name, err)
	}
	if r.Group > re.NumSubexp() {
		return fmt.Errorf("rule %q: group %d exceeds %d capture groups", r.Name, r.Group, re.NumSubexp())
	}
	r.compiled = re
	return nil
}

// IsCompiled returns true if the rule has been compiled.
func (r *Rule) IsCompiled() bool {
	return r.compiled != nil
}

// Regexp returns the compiled expression, or nil before Compile.
func (r *Rule) Regexp() *regexp.Regexp {
	return r.compiled
}

// Pack is a named set of rules describing one institution's notice conventions.
type Pack struct {
	Name        string  `yaml:"name" toml:"name" json:"name"`
	Version     string  `yaml:"version" toml:"version" json:"version"`
	Institution string  `yaml:"institution,omitempty" toml:"institution" json:"institution,omitempty"`
	Description string  `yaml:"description,omitempty" toml:"description" json:"description,omitempty"`
	Rules       []*Rule `yaml:"rules" toml:"rules" json:"rules"`

	source string
}

// Validate checks the pack and every rule in it.
func (p *Pack) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pack name is required")
	}
	if len(p.Rules) == 0 {
		return fmt.Errorf("pack %q has no rules", p.Name)
	}
	seen := make(map[string]bool, len(p.Rules))
	for i, r := range p.Rules {
		if r == nil {
			return fmt.Errorf("pack %q: rule %d is empty", p.Name, i)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("pack %q: %w", p.Name, err)
		}
		if seen[r.Name] {
			return fmt.Errorf("pack %q: duplicate rule name %q", p.Name, r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Compile compiles every rule in the pack.
func (p *Pack) Compile() error {
	for _, r := range p.Rules {
		if r.IsCompiled() {
			continue
		}
		if err := r.Compile(); err != nil {
			return fmt.Errorf("pack %q: %w", p.Name, err)
		}
	}
	return nil
}

// RulesFor returns the pack's rules for field in declaration order.
func (p *Pack) RulesFor(field Field) []*Rule {
	var rules []*Rule
	for _, r := range p.Rules {
		if r.Field == field {
			rules = append(rules, r)
		}
	}
	return rules
}

// Source returns the file the pack was loaded from, if any.
func (p *Pack) Source() string {
	return p.source
}
