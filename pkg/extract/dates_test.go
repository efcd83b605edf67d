package extract

import "testing"

func TestExtractDates_Deadline(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"afternoon", "received by 28 February 2025 at 5:00 p.m.", "2025-02-28T17:00"},
		{"noon", "received by 3 April 2025 at 12:00 p.m.", "2025-04-03T12:00"},
		{"midnight", "received by 3 April 2025 at 12:00 a.m.", "2025-04-03T00:00"},
		{"last minute", "received by 3 April 2025 at 11:59 pm", "2025-04-03T23:59"},
		{"morning", "received by 3 April 2025 at 9:15 a.m.", "2025-04-03T09:15"},
		{"uppercase", "RECEIVED BY 3 APRIL 2025 AT 9:15 AM", "2025-04-03T09:15"},
		{"out of range hour", "received by 3 April 2025 at 13:00 p.m.", ""},
		{"no meridiem", "received by 3 April 2025 at 17:00 CET", ""},
		{"french month", "reçu le 3 avril 2025 at 4:30 p.m.", "2025-04-03T16:30"},
	}

	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{}
			e.extractDates(tt.text, rec)
			if rec.Deadline != tt.want {
				t.Errorf("Deadline = %q, want %q", rec.Deadline, tt.want)
			}
		})
	}
}

func TestExtractDates_RecordDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"midnight phrase", "on 19 February 2025 (midnight)", "2025-02-19"},
		{"label", "Record Date: 7 march 2025", "2025-03-07"},
		{"midnight wins over label", "Record date: 1 March 2025. Holdings on 2 March 2025 (midnight)", "2025-03-02"},
		{"french label", "date d'enregistrement : le 1er décembre 2025", "2025-12-01"},
		{"unaccented french", "Record date: 15 fevrier 2025", "2025-02-15"},
		{"impossible date", "on 31 February 2025 (midnight)", ""},
	}

	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{}
			e.extractDates(tt.text, rec)
			if rec.RecordDate != tt.want {
				t.Errorf("RecordDate = %q, want %q", rec.RecordDate, tt.want)
			}
		})
	}
}

func TestExtractDates_Meeting(t *testing.T) {
	e := NewExtractor()

	rec := &Record{}
	e.extractDates("to be held on Tuesday, 1st July 2025 at 9:05", rec)
	if rec.MeetingDate != "2025-07-01" || rec.MeetingTime != "09:05" {
		t.Errorf("meeting = %q %q", rec.MeetingDate, rec.MeetingTime)
	}

	rec = &Record{}
	e.extractDates("held on 5 March 2025 at 25:00", rec)
	if rec.MeetingDate != "" || rec.MeetingTime != "" {
		t.Errorf("invalid clock accepted: %q %q", rec.MeetingDate, rec.MeetingTime)
	}
}

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		hour     int
		meridiem string
		want     int
		ok       bool
	}{
		{12, "a", 0, true},
		{1, "a", 1, true},
		{11, "A", 11, true},
		{12, "p", 12, true},
		{1, "p", 13, true},
		{11, "p", 23, true},
		{0, "a", 0, false},
		{13, "p", 0, false},
		{5, "x", 0, false},
	}

	for _, tt := range tests {
		got, ok := to24Hour(tt.hour, tt.meridiem)
		if got != tt.want || ok != tt.ok {
			t.Errorf("to24Hour(%d, %q) = %d, %v; want %d, %v", tt.hour, tt.meridiem, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCalendarDate(t *testing.T) {
	if got, ok := calendarDate("5", "Mars", "2025"); !ok || got != "2025-03-05" {
		t.Errorf("calendarDate(5 Mars 2025) = %q, %v", got, ok)
	}
	if got, ok := calendarDate("29", "2", "2024"); !ok || got != "2024-02-29" {
		t.Errorf("calendarDate(29 2 2024) = %q, %v", got, ok)
	}
	if _, ok := calendarDate("29", "February", "2025"); ok {
		t.Error("calendarDate accepted 29 February 2025")
	}
	if _, ok := calendarDate("1", "Brumaire", "2025"); ok {
		t.Error("calendarDate accepted an unknown month")
	}
}

func TestExtractTime(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		text string
		want string
	}{
		{"starting at 9:30 sharp", "09:30"},
		{"à 14h15 précises", "14:15"},
		{"at 10:00 then at 11:00", "10:00"},
		{"at 99:99", ""},
		{"no time", ""},
	}
	for _, tt := range tests {
		if got := e.extractTime(tt.text); got != tt.want {
			t.Errorf("extractTime(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
