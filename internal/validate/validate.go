package validate

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"coursecal/internal/model"
)

const (
	// Severity values carried on Issue.
	SeverityError   = "error"
	SeverityWarning = "warning"

	maxTitleLen       = 200
	minTitleLen       = 3
	maxLocationLen    = 200
	maxDescriptionLen = 1000

	// Advisory bounds on how far an event may sit from today before a
	// warning is raised. Never causes rejection.
	maxDaysInPast   = 365
	maxDaysInFuture = 730
)

// Issue is a single validation error or warning tied to a field.
type Issue struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Result aggregates the issues found for one event. IsValid is false
// iff at least one error was recorded; warnings never affect it.
type Result struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (r *Result) addError(field, message string) {
	r.Errors = append(r.Errors, Issue{Field: field, Message: message, Severity: SeverityError})
	r.IsValid = false
}

func (r *Result) addWarning(field, message string) {
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: message, Severity: SeverityWarning})
}

// Validator checks calendar events for structural correctness before
// they are stored or compiled into a calendar.
type Validator struct {
	loc *time.Location

	// now is replaceable in tests.
	now func() time.Time
}

// New returns a Validator that interprets naive timestamps in loc.
func New(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{loc: loc, now: time.Now}
}

// ValidateEvent validates a single event and returns the collected
// errors and warnings. The event is not mutated.
func (v *Validator) ValidateEvent(ev model.CalendarEvent) Result {
	result := Result{IsValid: true, Errors: []Issue{}, Warnings: []Issue{}}

	v.checkRequired(ev, &result)
	v.checkTitle(ev, &result)

	start, startOK := v.checkDateTime(ev.StartDateTime, "startDateTime", &result)
	end, endOK := v.checkDateTime(ev.EndDateTime, "endDateTime", &result)
	if startOK && endOK && !end.After(start) {
		result.addError("endDateTime", "End datetime must be after start datetime")
	}

	v.checkType(ev, &result)
	v.checkLocation(ev, &result)
	v.checkDescription(ev, &result)

	if ev.Recurrence != nil {
		v.checkRecurrence(ev.Recurrence, start, startOK, &result)
	}

	if startOK {
		v.checkTemporalDistance(start, &result)
	}

	return result
}

func (v *Validator) checkRequired(ev model.CalendarEvent, result *Result) {
	required := []struct {
		name  string
		value string
	}{
		{"title", ev.Title},
		{"startDateTime", ev.StartDateTime},
		{"endDateTime", ev.EndDateTime},
		{"location", ev.Location},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			result.addError(f.name, fmt.Sprintf("%s is required", f.name))
		}
	}
}

func (v *Validator) checkTitle(ev model.CalendarEvent, result *Result) {
	title := strings.TrimSpace(ev.Title)
	if title == "" {
		// Already reported by the required-field check.
		return
	}
	// Bounds are in characters, so multibyte titles are counted by rune.
	if utf8.RuneCountInString(title) < minTitleLen {
		result.addError("title", fmt.Sprintf("Title must be at least %d characters", minTitleLen))
	}
	if utf8.RuneCountInString(ev.Title) > maxTitleLen {
		result.addWarning("title", fmt.Sprintf("Title exceeds %d characters, may be truncated", maxTitleLen))
	}
}

// checkDateTime parses one timestamp field, recording an error when it
// is present but unparsable. The bool reports whether a usable value
// was produced.
func (v *Validator) checkDateTime(value, field string, result *Result) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	t, err := model.ParseDateTime(value, v.loc)
	if err != nil {
		result.addError(field, fmt.Sprintf("%s must be an ISO-8601 datetime", field))
		return time.Time{}, false
	}
	return t, true
}

func (v *Validator) checkType(ev model.CalendarEvent, result *Result) {
	// An absent type defaults to "other" downstream.
	if ev.Type == "" {
		return
	}
	if !ev.Type.Valid() {
		result.addError("type", fmt.Sprintf("Invalid event type %q", string(ev.Type)))
	}
}

func (v *Validator) checkLocation(ev model.CalendarEvent, result *Result) {
	if utf8.RuneCountInString(ev.Location) > maxLocationLen {
		result.addWarning("location", fmt.Sprintf("Location exceeds %d characters", maxLocationLen))
	}
}

func (v *Validator) checkDescription(ev model.CalendarEvent, result *Result) {
	if utf8.RuneCountInString(ev.Description) > maxDescriptionLen {
		result.addWarning("description", fmt.Sprintf("Description exceeds %d characters", maxDescriptionLen))
	}
}

func (v *Validator) checkRecurrence(rule *model.RecurrenceRule, start time.Time, startOK bool, result *Result) {
	if !rule.Frequency.Valid() {
		result.addError("recurrence.frequency", fmt.Sprintf("Invalid frequency %q", string(rule.Frequency)))
	}

	// An absent interval means the default of 1. An explicit value,
	// including 0, must be positive.
	if rule.Interval != nil && *rule.Interval < 1 {
		result.addError("recurrence.interval", "Interval must be a positive integer")
	}

	if rule.EndDate != "" {
		endDate, err := model.ParseDate(rule.EndDate, v.loc)
		if err != nil {
			result.addError("recurrence.endDate", "End date must be in YYYY-MM-DD format")
		} else if startOK {
			startDate := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, v.loc)
			if endDate.Before(startDate) {
				result.addError("recurrence.endDate", "End date must not be before the event start date")
			}
		}
	}

	for _, day := range rule.DaysOfWeek {
		if day < 0 || day > 6 {
			result.addError("recurrence.daysOfWeek", "Days of week must be integers between 0 (Sunday) and 6 (Saturday)")
			break
		}
	}
}

func (v *Validator) checkTemporalDistance(start time.Time, result *Result) {
	now := v.now().In(v.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, v.loc)

	days := int(today.Sub(startDay).Hours() / 24)
	if days > maxDaysInPast {
		result.addWarning("startDateTime", fmt.Sprintf("Event is %d days in the past", days))
	}
	if -days > maxDaysInFuture {
		result.addWarning("startDateTime", fmt.Sprintf("Event is %d days in the future", -days))
	}
}

// ValidateBatch validates a list of events and keys each result by the
// event's id, falling back to the positional key "event_<i>".
func (v *Validator) ValidateBatch(events []model.CalendarEvent) map[string]Result {
	results := make(map[string]Result, len(events))
	for i, ev := range events {
		key := ev.ID
		if key == "" {
			key = fmt.Sprintf("event_%d", i)
		}
		results[key] = v.ValidateEvent(ev)
	}
	return results
}

// signature identifies an event for deduplication. Two events with the
// same signature are duplicates regardless of other field differences.
type signature struct {
	title string
	start string
	end   string
	typ   model.EventType
}

// Deduplicate splits events into first occurrences and later duplicates,
// preserving input order within each slice.
func Deduplicate(events []model.CalendarEvent) (unique, duplicates []model.CalendarEvent) {
	seen := make(map[signature]struct{}, len(events))
	for _, ev := range events {
		sig := signature{
			title: strings.ToLower(strings.TrimSpace(ev.Title)),
			start: ev.StartDateTime,
			end:   ev.EndDateTime,
			typ:   ev.EffectiveType(),
		}
		if _, ok := seen[sig]; ok {
			duplicates = append(duplicates, ev)
			continue
		}
		seen[sig] = struct{}{}
		unique = append(unique, ev)
	}
	return unique, duplicates
}
