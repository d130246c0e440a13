package model

import (
	"errors"
	"strings"
	"time"
)

// EventType classifies an academic event. The set is closed; the zero
// value is not valid and callers default to TypeOther.
type EventType string

const (
	TypeLecture     EventType = "lecture"
	TypeExam        EventType = "exam"
	TypeAssignment  EventType = "assignment"
	TypeProject     EventType = "project"
	TypeOfficeHours EventType = "office_hours"
	TypeOther       EventType = "other"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case TypeLecture, TypeExam, TypeAssignment, TypeProject, TypeOfficeHours, TypeOther:
		return true
	}
	return false
}

// Frequency is how often a recurring event repeats.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqMonthly:
		return true
	}
	return false
}

// RecurrenceRule describes how an event repeats, modeled after the
// iCalendar RRULE fields the extraction layer emits.
type RecurrenceRule struct {
	Frequency Frequency `json:"frequency"`

	// Interval between occurrences (e.g. 2 = every second week). A nil
	// pointer means the default of 1; an explicit 0 is invalid, and the
	// pointer keeps the two distinguishable after JSON decoding.
	Interval *int `json:"interval,omitempty"`

	// DaysOfWeek holds weekday indices, 0=Sunday through 6=Saturday.
	DaysOfWeek []int `json:"daysOfWeek,omitempty"`

	// EndDate is the last possible occurrence date, inclusive, in
	// YYYY-MM-DD form.
	EndDate string `json:"endDate,omitempty"`

	// Count is the number of occurrences, an alternative terminator to
	// EndDate. When both are set, EndDate wins at encoding time.
	Count int `json:"count,omitempty"`
}

// CalendarEvent is the unified event record produced by extraction or
// manual entry and consumed by validation, storage and calendar
// generation. Timestamps are carried in their wire form (ISO-8601
// strings); naive values are interpreted in the configured timezone at
// generation time.
type CalendarEvent struct {
	Title         string          `json:"title"`
	StartDateTime string          `json:"startDateTime"`
	EndDateTime   string          `json:"endDateTime"`
	Location      string          `json:"location"`
	Description   string          `json:"description,omitempty"`
	Type          EventType       `json:"type,omitempty"`
	Recurrence    *RecurrenceRule `json:"recurrence,omitempty"`

	// ID is assigned by the store when absent.
	ID string `json:"id,omitempty"`

	// NeedsReview flags low-confidence extraction output for human review.
	NeedsReview bool `json:"needsReview,omitempty"`

	// Confidence is the extraction confidence score in [0,1].
	Confidence float64 `json:"confidence,omitempty"`
}

// EffectiveType returns the event type, defaulting to TypeOther when unset.
func (e *CalendarEvent) EffectiveType() EventType {
	if e.Type == "" {
		return TypeOther
	}
	return e.Type
}

// Recurring reports whether the event carries a recurrence rule.
func (e *CalendarEvent) Recurring() bool {
	return e.Recurrence != nil
}

var errBadDateTime = errors.New("invalid ISO-8601 datetime")

// ParseDateTime parses an ISO-8601 timestamp. Values with an explicit
// offset (RFC3339 or trailing Z) keep their zone; naive values are
// interpreted in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errBadDateTime
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDateTime
}

// ParseDate parses a YYYY-MM-DD calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
}
