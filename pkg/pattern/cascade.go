package pattern

import "strings"

// Match is an accepted hit produced by a Cascade.
type Match struct {
	Rule   *Rule
	Value  string
	Text   string
	Index  int
	groups map[string]string
}

// Group returns the named capture group, or "" if it did not participate.
func (m *Match) Group(name string) string {
	return m.groups[name]
}

// Validator decides whether a raw match is structurally valid and returns the
// normalized value to keep.
type Validator func(m *Match) (string, bool)

// Cascade is an ordered list of rules where the first structurally valid match
// wins. Within a rule, matches are tried left to right.
type Cascade struct {
	rules    []*Rule
	validate Validator
}

// NewCascade creates a cascade over rules. A nil validator accepts any match
// whose trimmed value is non-empty.
func NewCascade(validate Validator, rules ...*Rule) *Cascade {
	return &Cascade{rules: rules, validate: validate}
}

// With returns a cascade that tries extra before the receiver's own rules.
func (c *Cascade) With(extra []*Rule) *Cascade {
	if len(extra) == 0 {
		return c
	}
	rules := make([]*Rule, 0, len(extra)+len(c.rules))
	rules = append(rules, extra...)
	rules = append(rules, c.rules...)
	return &Cascade{rules: rules, validate: c.validate}
}

// Rules returns the rules in evaluation order.
func (c *Cascade) Rules() []*Rule {
	return c.rules
}

// First returns the first accepted match in text.
func (c *Cascade) First(text string) (*Match, bool) {
	for _, rule := range c.rules {
		re := rule.Regexp()
		if re == nil {
			continue
		}
		names := re.SubexpNames()
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			m := &Match{
				Rule:   rule,
				Text:   text[loc[0]:loc[1]],
				Index:  loc[0],
				groups: make(map[string]string),
			}
			for i, name := range names {
				if i == 0 || name == "" || loc[2*i] < 0 {
					continue
				}
				m.groups[name] = text[loc[2*i]:loc[2*i+1]]
			}
			if g := rule.Group; g > 0 && 2*g < len(loc) && loc[2*g] >= 0 {
				m.Value = text[loc[2*g]:loc[2*g+1]]
			} else if g == 0 {
				m.Value = m.Text
			}

			if c.validate == nil {
				if v := strings.TrimSpace(m.Value); v != "" {
					m.Value = v
					return m, true
				}
				continue
			}
			if v, ok := c.validate(m); ok {
				m.Value = v
				return m, true
			}
		}
	}
	return nil, false
}

// Matches reports whether any rule in rules matches text.
func Matches(rules []*Rule, text string) bool {
	for _, r := range rules {
		if re := r.Regexp(); re != nil && re.MatchString(text) {
			return true
		}
	}
	return false
}
