package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coolbeans/seevgen/pkg/pattern"
)

var meetingDateCascade = pattern.NewCascade(validDateTime(false),
	pattern.NewRule(pattern.FieldMeetingDate, "held-on", withMonths(
		`(?i)\bheld\s+on\s+(?:[a-z]+day,?\s+)?(?P<day>\d{1,2})(?:st|nd|rd|th)?\s+(?P<month>MONTH)\s+(?P<year>\d{4})\s+at\s+(?P<hour>\d{1,2}):(?P<minute>\d{2})`), 0),
	pattern.NewRule(pattern.FieldMeetingDate, "se-tiendra-le", withMonths(
		`(?i)\bse\s+tiendra\s+le\s+(?:\pL+\s+)?(?P<day>\d{1,2})(?:er)?\s+(?P<month>MONTH)\s+(?P<year>\d{4})\s+à\s+(?P<hour>\d{1,2})\s*[h:]\s*(?P<minute>\d{2})`), 0),
)

var recordDateCascade = pattern.NewCascade(validDateTime(false),
	pattern.NewRule(pattern.FieldRecordDate, "midnight", withMonths(
		`(?i)\b(?P<day>\d{1,2})\s+(?P<month>MONTH)\s+(?P<year>\d{4})\s+\((?:midnight|minuit)\)`), 0),
	pattern.NewRule(pattern.FieldRecordDate, "record-date-label", withMonths(
		`(?i)\brecord\s+date\s*[:\s]\s*(?P<day>\d{1,2})\s+(?P<month>MONTH)\s+(?P<year>\d{4})`), 0),
	pattern.NewRule(pattern.FieldRecordDate, "date-enregistrement", withMonths(
		`(?i)\bdate\s+d['’]enregistrement\s*[:\s]\s*(?:le\s+)?(?P<day>\d{1,2})(?:er)?\s+(?P<month>MONTH)\s+(?P<year>\d{4})`), 0),
)

var deadlineCascade = pattern.NewCascade(validDateTime(true),
	pattern.NewRule(pattern.FieldDeadline, "date-at-meridiem", withMonths(
		`(?i)\b(?P<day>\d{1,2})\s+(?P<month>MONTH)\s+(?P<year>\d{4})\s+at\s+(?P<hour>\d{1,2}):(?P<minute>\d{2})\s*(?P<meridiem>[ap])\.?\s?m\b`), 0),
)

var timeCascade = pattern.NewCascade(validClock,
	pattern.NewRule(pattern.FieldTime, "at-clock", `(?i)\bat\s+(?P<hour>\d{1,2}):(?P<minute>\d{2})`, 0),
	pattern.NewRule(pattern.FieldTime, "a-heures", `(?i)(?:^|\s)à\s+(?P<hour>\d{1,2})\s*h\s*(?P<minute>\d{2})`, 0),
)

// agendaDateLine matches lines that open with a calendar date.
var agendaDateLine = regexp.MustCompile(withMonths(`(?i)^\d{1,2}(?:er|st|nd|rd|th)?\s+(?:MONTH)\s+\d{4}`))

// calendarDate builds a YYYY-MM-DD string, rejecting dates that do not exist.
func calendarDate(day, month, year string) (string, bool) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	mo, ok := monthNumber(month)
	if !ok {
		if mo, err = strconv.Atoi(month); err != nil {
			return "", false
		}
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo || t.Year() != y {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// clock builds an HH:MM string from hour and minute text.
func clock(hour, minute string) (string, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return "", false
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// to24Hour converts a 12-hour clock hour with an "a" or "p" marker.
// 12 a.m. is midnight and 12 p.m. is noon.
func to24Hour(hour int, meridiem string) (int, bool) {
	if hour < 1 || hour > 12 {
		return 0, false
	}
	switch strings.ToLower(meridiem) {
	case "a":
		if hour == 12 {
			return 0, true
		}
		return hour, true
	case "p":
		if hour == 12 {
			return 12, true
		}
		return hour + 12, true
	}
	return 0, false
}

// validDateTime validates a date match and any clock captured with it. With
// withTime set the value becomes YYYY-MM-DDTHH:MM, honouring an optional
// meridiem group.
func validDateTime(withTime bool) pattern.Validator {
	return func(m *pattern.Match) (string, bool) {
		date, ok := calendarDate(m.Group("day"), m.Group("month"), m.Group("year"))
		if !ok {
			return "", false
		}
		if !withTime {
			if m.Group("hour") != "" {
				if _, ok := clock(m.Group("hour"), m.Group("minute")); !ok {
					return "", false
				}
			}
			return date, true
		}

		hour := m.Group("hour")
		if meridiem := m.Group("meridiem"); meridiem != "" {
			h, err := strconv.Atoi(hour)
			if err != nil {
				return "", false
			}
			h24, ok := to24Hour(h, meridiem)
			if !ok {
				return "", false
			}
			hour = strconv.Itoa(h24)
		}
		hm, ok := clock(hour, m.Group("minute"))
		if !ok {
			return "", false
		}
		return date + "T" + hm, true
	}
}

func validClock(m *pattern.Match) (string, bool) {
	return clock(m.Group("hour"), m.Group("minute"))
}

// extractDates fills the meeting, record and deadline slots, each from its
// own search over the whole text.
func (e *Extractor) extractDates(text string, rec *Record) {
	if m, ok := e.cascade(pattern.FieldMeetingDate, meetingDateCascade).First(text); ok {
		rec.MeetingDate = m.Value
		if hm, ok := clock(m.Group("hour"), m.Group("minute")); ok {
			rec.MeetingTime = hm
		}
	}
	if m, ok := e.cascade(pattern.FieldRecordDate, recordDateCascade).First(text); ok {
		rec.RecordDate = m.Value
	}
	if m, ok := e.cascade(pattern.FieldDeadline, deadlineCascade).First(text); ok {
		rec.Deadline = m.Value
	}
}

// extractTime returns the first clock time introduced by "at" (or "à"),
// independent of the meeting date.
func (e *Extractor) extractTime(text string) string {
	if m, ok := e.cascade(pattern.FieldTime, timeCascade).First(text); ok {
		return m.Value
	}
	return ""
}
