package model

// CourseCalendar groups the events extracted from a single course
// outline together with the course metadata.
type CourseCalendar struct {
	CourseCode string          `json:"course_code"`
	CourseName string          `json:"course_name"`
	Semester   string          `json:"semester,omitempty"`
	Instructor string          `json:"instructor,omitempty"`
	Events     []CalendarEvent `json:"events"`
}

// EventCount returns the number of events in the course.
func (c *CourseCalendar) EventCount() int {
	return len(c.Events)
}

// NeedsReviewCount returns how many events are flagged for review.
func (c *CourseCalendar) NeedsReviewCount() int {
	n := 0
	for i := range c.Events {
		if c.Events[i].NeedsReview {
			n++
		}
	}
	return n
}

// MultiCourseCalendar is one upload session's ordered collection of
// courses. Course order is addition order and is preserved by AllEvents.
type MultiCourseCalendar struct {
	Courses []CourseCalendar `json:"courses"`
}

func (m *MultiCourseCalendar) TotalCourses() int {
	return len(m.Courses)
}

func (m *MultiCourseCalendar) TotalEvents() int {
	n := 0
	for i := range m.Courses {
		n += len(m.Courses[i].Events)
	}
	return n
}

func (m *MultiCourseCalendar) TotalNeedsReview() int {
	n := 0
	for i := range m.Courses {
		n += m.Courses[i].NeedsReviewCount()
	}
	return n
}

// AllEvents flattens every course's events into one sequence, keeping
// per-course ordering and concatenating in course order.
func (m *MultiCourseCalendar) AllEvents() []CalendarEvent {
	out := make([]CalendarEvent, 0, m.TotalEvents())
	for i := range m.Courses {
		out = append(out, m.Courses[i].Events...)
	}
	return out
}

// CalendarEventList is the JSON response shape for event collections.
type CalendarEventList struct {
	Events      []CalendarEvent `json:"events"`
	Total       int             `json:"total"`
	NeedsReview int             `json:"needsReview"`
}

// NewCalendarEventList builds the list response with derived counts.
func NewCalendarEventList(events []CalendarEvent) CalendarEventList {
	needsReview := 0
	for i := range events {
		if events[i].NeedsReview {
			needsReview++
		}
	}
	if events == nil {
		events = []CalendarEvent{}
	}
	return CalendarEventList{
		Events:      events,
		Total:       len(events),
		NeedsReview: needsReview,
	}
}
