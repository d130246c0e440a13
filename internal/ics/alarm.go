package ics

import "coursecal/internal/model"

// Reminder is the per-type default alarm: an iCalendar duration trigger
// relative to the event start and a display message.
type Reminder struct {
	Trigger string
	Message string
}

// reminders is the fixed reminder policy by event type. Types without
// an entry fall back to the "other" reminder.
var reminders = map[model.EventType]Reminder{
	model.TypeExam:       {Trigger: "-P1D", Message: "Exam tomorrow!"},
	model.TypeAssignment: {Trigger: "-P2D", Message: "Assignment due in 2 days"},
	model.TypeLecture:    {Trigger: "-PT30M", Message: "Class starts in 30 minutes"},
	model.TypeProject:    {Trigger: "-P3D", Message: "Project deadline in 3 days"},
	model.TypeOther:      {Trigger: "-PT1H", Message: "Event starting soon"},
}

// ReminderFor returns the default reminder for the given event type.
func ReminderFor(t model.EventType) Reminder {
	if r, ok := reminders[t]; ok {
		return r
	}
	return reminders[model.TypeOther]
}
