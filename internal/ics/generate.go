package ics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "coursecal/internal/log"
	"coursecal/internal/model"
)

// ProductID identifies this generator in emitted calendars.
const ProductID = "-//Course Outline to Calendar//EN"

// ErrNoEvents is returned when calendar generation is requested for an
// empty event list.
var ErrNoEvents = errors.New("cannot generate calendar from empty events list")

// Generator compiles calendar events into an iCalendar document. Naive
// event timestamps are interpreted in the configured timezone, which is
// also advertised as the calendar's display timezone.
//
// A Generator holds only read-only state and is safe to share.
type Generator struct {
	loc    *time.Location
	tzName string
}

// New creates a Generator for the given IANA timezone name. An empty
// name selects America/Toronto.
func New(timezone string) (*Generator, error) {
	if timezone == "" {
		timezone = "America/Toronto"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Generator{loc: loc, tzName: timezone}, nil
}

// Location returns the generator's display timezone.
func (g *Generator) Location() *time.Location {
	return g.loc
}

// Generate compiles the given events into a serialized iCalendar
// document named calendarName.
//
// An empty input is rejected with ErrNoEvents. An event that fails to
// encode (e.g. malformed timestamp) is logged and skipped; the rest of
// the batch is still emitted. Input events are never mutated.
func (g *Generator) Generate(events []model.CalendarEvent, calendarName string) (string, error) {
	if len(events) == 0 {
		return "", ErrNoEvents
	}

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")
	cal.SetXWRCalName(calendarName)
	cal.SetXWRTimezone(g.tzName)

	added := 0
	for i := range events {
		ve, err := g.buildEvent(&events[i])
		if err != nil {
			appLog.Warn("skipping event during calendar generation",
				"title", events[i].Title,
				"reason", err.Error(),
			)
			continue
		}
		cal.AddVEvent(ve)
		added++
	}

	appLog.Info("calendar generated",
		"name", calendarName,
		"events", added,
		"skipped", len(events)-added,
	)
	return cal.Serialize(), nil
}

// GenerateMultiCourse flattens every course in the session, in course
// order, and compiles them into a single calendar whose name summarizes
// the course count.
func (g *Generator) GenerateMultiCourse(mc *model.MultiCourseCalendar) (string, error) {
	name := fmt.Sprintf("Course Schedule - %d Courses", mc.TotalCourses())
	return g.Generate(mc.AllEvents(), name)
}

func (g *Generator) buildEvent(ev *model.CalendarEvent) (*ical.VEvent, error) {
	start, err := model.ParseDateTime(ev.StartDateTime, g.loc)
	if err != nil {
		return nil, fmt.Errorf("startDateTime %q: %w", ev.StartDateTime, err)
	}
	end, err := model.ParseDateTime(ev.EndDateTime, g.loc)
	if err != nil {
		return nil, fmt.Errorf("endDateTime %q: %w", ev.EndDateTime, err)
	}

	uid := ev.ID
	if uid == "" {
		uid = uuid.NewString()
	}

	ve := ical.NewEvent(uid)
	ve.SetSummary(ev.Title)
	ve.SetStartAt(start)
	ve.SetEndAt(end)
	ve.SetLocation(ev.Location)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}

	ve.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(ev.EffectiveType())))

	if ev.Recurring() {
		rule, err := EncodeRRule(ev.Recurrence, g.loc)
		if err != nil {
			return nil, fmt.Errorf("recurrence: %w", err)
		}
		ve.AddRrule(rule)
		// Recurring events carry no alarm; a single reminder offset is
		// meaningless across occurrences.
		return ve, nil
	}

	reminder := ReminderFor(ev.EffectiveType())
	alarm := ve.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger(reminder.Trigger)
	alarm.SetProperty(ical.ComponentPropertyDescription, reminder.Message)

	return ve, nil
}
