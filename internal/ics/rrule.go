package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"coursecal/internal/model"
)

// weekdayTokens maps the extraction layer's weekday indices
// (0=Sunday .. 6=Saturday) to iCalendar BYDAY tokens.
var weekdayTokens = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// EncodeRRule converts a recurrence rule into an iCalendar RRULE value
// string (without the "RRULE:" prefix).
//
// Termination: when both EndDate and Count are present, EndDate wins
// and Count is not emitted. The UNTIL bound is inclusive, set to 23:59
// local time on EndDate in loc.
func EncodeRRule(rule *model.RecurrenceRule, loc *time.Location) (string, error) {
	if rule == nil {
		return "", fmt.Errorf("nil recurrence rule")
	}
	if loc == nil {
		loc = time.Local
	}

	var opt rrule.ROption

	switch rule.Frequency {
	case model.FreqDaily:
		opt.Freq = rrule.DAILY
	case model.FreqWeekly:
		opt.Freq = rrule.WEEKLY
	case model.FreqMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		return "", fmt.Errorf("unsupported recurrence frequency %q", string(rule.Frequency))
	}

	// The default interval of 1 is left implicit.
	if rule.Interval != nil && *rule.Interval > 1 {
		opt.Interval = *rule.Interval
	}

	switch {
	case rule.EndDate != "":
		day, err := model.ParseDate(rule.EndDate, loc)
		if err != nil {
			return "", fmt.Errorf("recurrence end date %q: %w", rule.EndDate, err)
		}
		opt.Until = time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, loc)
	case rule.Count > 0:
		opt.Count = rule.Count
	}

	if len(rule.DaysOfWeek) > 0 {
		byday := make([]rrule.Weekday, 0, len(rule.DaysOfWeek))
		for _, day := range rule.DaysOfWeek {
			if day < 0 || day >= len(weekdayTokens) {
				return "", fmt.Errorf("weekday index %d out of range 0-6", day)
			}
			byday = append(byday, weekdayTokens[day])
		}
		opt.Byweekday = byday
	}

	return opt.RRuleString(), nil
}
