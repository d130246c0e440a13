package model

import (
	"fmt"
	"time"
)

// SimpleEvent is the legacy flat event shape (separate date, start time
// and duration) that predates the startDateTime/endDateTime record.
// It only exists at the input boundary: FromSimple normalizes it into a
// canonical CalendarEvent before anything downstream sees it.
type SimpleEvent struct {
	Title string `json:"title"`
	Date  string `json:"date"` // YYYY-MM-DD
	Time  string `json:"time"` // HH:MM, 24-hour

	// Duration is the event length in minutes.
	Duration int `json:"duration,omitempty"`

	Type        EventType       `json:"type,omitempty"`
	Location    string          `json:"location,omitempty"`
	Description string          `json:"description,omitempty"`
	Recurrence  *RecurrenceRule `json:"recurrence,omitempty"`
	ID          string          `json:"id,omitempty"`
	NeedsReview bool            `json:"needsReview,omitempty"`
	Confidence  float64         `json:"confidence,omitempty"`
}

// FromSimple converts a legacy simple-format event into the canonical
// CalendarEvent. A missing time means midnight, a missing duration
// means 60 minutes, and a missing location becomes "TBD".
func FromSimple(ev SimpleEvent, loc *time.Location) (CalendarEvent, error) {
	if loc == nil {
		loc = time.Local
	}

	timeStr := ev.Time
	if timeStr == "" {
		timeStr = "00:00"
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", ev.Date+" "+timeStr, loc)
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("simple event %q: %w", ev.Title, err)
	}

	duration := ev.Duration
	if duration <= 0 {
		duration = 60
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	location := ev.Location
	if location == "" {
		location = "TBD"
	}

	confidence := ev.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	const layout = "2006-01-02T15:04:05"
	return CalendarEvent{
		Title:         ev.Title,
		StartDateTime: start.Format(layout),
		EndDateTime:   end.Format(layout),
		Location:      location,
		Description:   ev.Description,
		Type:          ev.Type,
		Recurrence:    ev.Recurrence,
		ID:            ev.ID,
		NeedsReview:   ev.NeedsReview,
		Confidence:    confidence,
	}, nil
}
