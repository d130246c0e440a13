package model

import (
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2026-01-20T14:00:00", time.Date(2026, 1, 20, 14, 0, 0, 0, loc), false},
		{"2026-01-20T14:00", time.Date(2026, 1, 20, 14, 0, 0, 0, loc), false},
		{"2026-01-20T14:00:00Z", time.Date(2026, 1, 20, 14, 0, 0, 0, time.UTC), false},
		{"2026-01-20T14:00:00-05:00", time.Date(2026, 1, 20, 19, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, true},
		{"not-a-date", time.Time{}, true},
		{"2026/01/20 14:00", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := ParseDateTime(tt.input, loc)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDateTime(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDateTime(%q) error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDateTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEventTypeValid(t *testing.T) {
	valid := []EventType{TypeLecture, TypeExam, TypeAssignment, TypeProject, TypeOfficeHours, TypeOther}
	for _, typ := range valid {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	for _, typ := range []EventType{"", "seminar", "LECTURE"} {
		if typ.Valid() {
			t.Errorf("%q should not be valid", typ)
		}
	}
}

func TestEffectiveTypeDefaultsToOther(t *testing.T) {
	ev := CalendarEvent{}
	if got := ev.EffectiveType(); got != TypeOther {
		t.Errorf("EffectiveType() = %q, want %q", got, TypeOther)
	}
	ev.Type = TypeExam
	if got := ev.EffectiveType(); got != TypeExam {
		t.Errorf("EffectiveType() = %q, want %q", got, TypeExam)
	}
}

func TestMultiCourseFlattening(t *testing.T) {
	mc := MultiCourseCalendar{
		Courses: []CourseCalendar{
			{
				CourseCode: "CS301",
				Events: []CalendarEvent{
					{Title: "a"}, {Title: "b"}, {Title: "c"},
				},
			},
			{
				CourseCode: "MATH200",
				Events: []CalendarEvent{
					{Title: "d"}, {Title: "e"},
				},
			},
		},
	}

	all := mc.AllEvents()
	if len(all) != 5 {
		t.Fatalf("AllEvents() len = %d, want 5", len(all))
	}
	want := []string{"a", "b", "c", "d", "e"}
	for i, ev := range all {
		if ev.Title != want[i] {
			t.Errorf("AllEvents()[%d].Title = %q, want %q", i, ev.Title, want[i])
		}
	}

	if mc.TotalCourses() != 2 || mc.TotalEvents() != 5 {
		t.Errorf("totals = (%d, %d), want (2, 5)", mc.TotalCourses(), mc.TotalEvents())
	}
}

func TestNeedsReviewCounts(t *testing.T) {
	course := CourseCalendar{
		Events: []CalendarEvent{
			{Title: "a", NeedsReview: true},
			{Title: "b"},
			{Title: "c", NeedsReview: true},
		},
	}
	if got := course.NeedsReviewCount(); got != 2 {
		t.Errorf("NeedsReviewCount() = %d, want 2", got)
	}

	mc := MultiCourseCalendar{Courses: []CourseCalendar{course, {Events: []CalendarEvent{{NeedsReview: true}}}}}
	if got := mc.TotalNeedsReview(); got != 3 {
		t.Errorf("TotalNeedsReview() = %d, want 3", got)
	}
}

func TestFromSimple(t *testing.T) {
	loc := time.UTC

	ev, err := FromSimple(SimpleEvent{
		Title:    "Midterm",
		Date:     "2026-02-15",
		Time:     "10:00",
		Duration: 50,
		Type:     TypeExam,
		Location: "Room 101",
	}, loc)
	if err != nil {
		t.Fatalf("FromSimple error: %v", err)
	}
	if ev.StartDateTime != "2026-02-15T10:00:00" {
		t.Errorf("StartDateTime = %q", ev.StartDateTime)
	}
	if ev.EndDateTime != "2026-02-15T10:50:00" {
		t.Errorf("EndDateTime = %q", ev.EndDateTime)
	}
	if ev.Type != TypeExam || ev.Location != "Room 101" {
		t.Errorf("unexpected fields: type=%q location=%q", ev.Type, ev.Location)
	}
}

func TestFromSimpleDefaults(t *testing.T) {
	ev, err := FromSimple(SimpleEvent{Title: "Deadline", Date: "2026-03-01"}, time.UTC)
	if err != nil {
		t.Fatalf("FromSimple error: %v", err)
	}
	if ev.StartDateTime != "2026-03-01T00:00:00" {
		t.Errorf("StartDateTime = %q, want midnight", ev.StartDateTime)
	}
	if ev.EndDateTime != "2026-03-01T01:00:00" {
		t.Errorf("EndDateTime = %q, want +60 minutes", ev.EndDateTime)
	}
	if ev.Location != "TBD" {
		t.Errorf("Location = %q, want TBD", ev.Location)
	}
	if ev.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", ev.Confidence)
	}
}

func TestFromSimpleBadDate(t *testing.T) {
	if _, err := FromSimple(SimpleEvent{Title: "x", Date: "15/02/2026"}, time.UTC); err == nil {
		t.Error("expected error for malformed date")
	}
}
