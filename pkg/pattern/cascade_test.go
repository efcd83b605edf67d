package pattern

import (
	"strings"
	"testing"
)

func TestCascadeFirstOrder(t *testing.T) {
	c := NewCascade(nil,
		NewRule(FieldISIN, "label", `ISIN:\s*(\w+)`, 1),
		NewRule(FieldISIN, "generic", `\b(LU\d{10})\b`, 1),
	)

	m, ok := c.First("code LU1234567890 and ISIN: XS0000000001")
	if !ok {
		t.Fatal("First() found nothing")
	}
	if m.Rule.Name != "label" || m.Value != "XS0000000001" {
		t.Errorf("First() = %s/%q, want label/XS0000000001", m.Rule.Name, m.Value)
	}
}

func TestCascadeValidatorFallsThrough(t *testing.T) {
	twelve := func(m *Match) (string, bool) {
		v := strings.ToUpper(m.Value)
		return v, len(v) == 12
	}
	c := NewCascade(twelve,
		NewRule(FieldISIN, "short", `ISIN (\w+)`, 1),
		NewRule(FieldISIN, "generic", `\b([A-Z]{2}\d{10})\b`, 1),
	)

	m, ok := c.First("ISIN abc then FR0000120271")
	if !ok {
		t.Fatal("First() found nothing")
	}
	if m.Rule.Name != "generic" || m.Value != "FR0000120271" {
		t.Errorf("First() = %s/%q, want generic/FR0000120271", m.Rule.Name, m.Value)
	}
}

func TestCascadeTriesLaterMatchesOfSameRule(t *testing.T) {
	even := func(m *Match) (string, bool) {
		return m.Value, m.Value == "22"
	}
	c := NewCascade(even, NewRule(FieldDividend, "num", `(\d+)`, 1))

	m, ok := c.First("11 22 33")
	if !ok || m.Value != "22" {
		t.Errorf("First() = %v, %v; want 22", m, ok)
	}
}

func TestCascadeNamedGroups(t *testing.T) {
	c := NewCascade(nil, NewRule(FieldMeetingDate, "d", `(?P<day>\d+)/(?P<month>\d+)`, 0))
	m, ok := c.First("on 5/6")
	if !ok {
		t.Fatal("First() found nothing")
	}
	if m.Group("day") != "5" || m.Group("month") != "6" || m.Group("year") != "" {
		t.Errorf("groups = %q %q %q", m.Group("day"), m.Group("month"), m.Group("year"))
	}
	if m.Value != "5/6" || m.Index != 3 {
		t.Errorf("Value/Index = %q/%d, want 5/6 at 3", m.Value, m.Index)
	}
}

func TestCascadeWithPrepends(t *testing.T) {
	base := NewCascade(nil, NewRule(FieldRCS, "base", `RCS (\w+)`, 1))
	custom := NewRule(FieldRCS, "custom", `Registre (\w+)`, 1)

	c := base.With([]*Rule{custom})
	if got := c.Rules()[0].Name; got != "custom" {
		t.Errorf("first rule = %q, want custom", got)
	}
	if len(base.Rules()) != 1 {
		t.Error("With() must not modify the receiver")
	}
	if base.With(nil) != base {
		t.Error("With(nil) should return the receiver")
	}

	m, _ := c.First("RCS B1 Registre B2")
	if m.Value != "B2" {
		t.Errorf("First() = %q, want B2", m.Value)
	}
}

func TestCascadeNoMatch(t *testing.T) {
	c := NewCascade(nil, NewRule(FieldEmail, "email", `\S+@\S+`, 0))
	if _, ok := c.First("no address here"); ok {
		t.Error("First() should report no match")
	}
}

func TestMatches(t *testing.T) {
	rules := []*Rule{NewRule(FieldAgendaStart, "a", `(?i)^agenda`, 0)}
	if !Matches(rules, "Agenda:") {
		t.Error("Matches() = false, want true")
	}
	if Matches(rules, "The agenda") {
		t.Error("Matches() = true, want false")
	}
}
