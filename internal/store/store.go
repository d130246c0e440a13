package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appLog "coursecal/internal/log"
	"coursecal/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrEventNotFound   = errors.New("event not found")
)

// Store is the in-memory session aggregator. One session groups the
// courses uploaded by a user, in addition order; each course is keyed
// by the file id of the upload it came from.
//
// The store is an explicit handle passed to the layers that need it;
// there is no package-level instance. All methods are safe for
// concurrent use, and reads return snapshot copies so callers never
// alias internal state.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session

	// now is replaceable in tests.
	now func() time.Time
}

type session struct {
	createdAt time.Time
	updatedAt time.Time
	courses   []*courseEntry
}

type courseEntry struct {
	fileID string
	course model.CourseCalendar
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// CreateSession registers a new empty session and returns its id.
func (s *Store) CreateSession() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sessions[id] = &session{createdAt: now, updatedAt: now}
	return id
}

// AddCourse stores a course under the given session, keyed by fileID.
// Events without an id are assigned one. Re-adding an existing fileID
// replaces that course in place, keeping its position.
func (s *Store) AddCourse(sessionID, fileID string, course model.CourseCalendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	course.Events = append([]model.CalendarEvent(nil), course.Events...)
	for i := range course.Events {
		if course.Events[i].ID == "" {
			course.Events[i].ID = newEventID()
		}
	}

	for _, entry := range sess.courses {
		if entry.fileID == fileID {
			entry.course = course
			sess.updatedAt = s.now()
			return nil
		}
	}

	sess.courses = append(sess.courses, &courseEntry{fileID: fileID, course: course})
	sess.updatedAt = s.now()
	return nil
}

// Session returns a snapshot of all courses in the session.
func (s *Store) Session(sessionID string) (model.MultiCourseCalendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return model.MultiCourseCalendar{}, ErrSessionNotFound
	}
	return model.MultiCourseCalendar{Courses: copyCourses(sess.courses)}, nil
}

// Courses returns the session's courses in addition order.
func (s *Store) Courses(sessionID string) ([]model.CourseCalendar, error) {
	mc, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return mc.Courses, nil
}

// FlattenedEvents returns every event across the session's courses,
// preserving per-course ordering and course-addition order.
func (s *Store) FlattenedEvents(sessionID string) ([]model.CalendarEvent, error) {
	mc, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return mc.AllEvents(), nil
}

// SessionByFileID finds the session that owns the given upload.
func (s *Store) SessionByFileID(fileID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, sess := range s.sessions {
		for _, entry := range sess.courses {
			if entry.fileID == fileID {
				return id, true
			}
		}
	}
	return "", false
}

// CourseByFileID returns a snapshot of the course stored for fileID.
func (s *Store) CourseByFileID(fileID string) (model.CourseCalendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.findCourse(fileID)
	if entry == nil {
		return model.CourseCalendar{}, ErrCourseNotFound
	}
	return copyCourse(entry.course), nil
}

// Event returns a single event from the course stored for fileID.
func (s *Store) Event(fileID, eventID string) (model.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.findCourse(fileID)
	if entry == nil {
		return model.CalendarEvent{}, ErrCourseNotFound
	}
	for i := range entry.course.Events {
		if entry.course.Events[i].ID == eventID {
			return entry.course.Events[i], nil
		}
	}
	return model.CalendarEvent{}, ErrEventNotFound
}

// UpdateEvent replaces an event in place. The event keeps its original
// id regardless of what the update carries; the latest write wins.
func (s *Store) UpdateEvent(fileID, eventID string, updated model.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.findCourse(fileID)
	if entry == nil {
		return ErrCourseNotFound
	}
	for i := range entry.course.Events {
		if entry.course.Events[i].ID == eventID {
			updated.ID = eventID
			entry.course.Events[i] = updated
			s.touchSessionOf(fileID)
			return nil
		}
	}
	return ErrEventNotFound
}

// DeleteEvent removes a single event from its course.
func (s *Store) DeleteEvent(fileID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.findCourse(fileID)
	if entry == nil {
		return ErrCourseNotFound
	}
	for i := range entry.course.Events {
		if entry.course.Events[i].ID == eventID {
			entry.course.Events = append(entry.course.Events[:i], entry.course.Events[i+1:]...)
			s.touchSessionOf(fileID)
			return nil
		}
	}
	return ErrEventNotFound
}

// DeleteSession tears down a session and all its courses.
func (s *Store) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// Stats summarizes the events stored for one upload.
type Stats struct {
	Total       int            `json:"total"`
	NeedsReview int            `json:"needs_review"`
	ByType      map[string]int `json:"by_type"`
}

// CourseStats computes event statistics for the course stored under
// fileID.
func (s *Store) CourseStats(fileID string) (Stats, error) {
	course, err := s.CourseByFileID(fileID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{ByType: map[string]int{}}
	stats.Total = len(course.Events)
	for i := range course.Events {
		if course.Events[i].NeedsReview {
			stats.NeedsReview++
		}
		stats.ByType[string(course.Events[i].EffectiveType())]++
	}
	return stats, nil
}

// PruneExpired deletes sessions that have not been touched within ttl
// and returns how many were removed. A zero or negative ttl is a no-op.
func (s *Store) PruneExpired(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.updatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		appLog.Info("pruned expired sessions", "removed", removed, "ttl", ttl.String())
	}
	return removed
}

// findCourse locates the course entry for fileID. Caller must hold the
// lock.
func (s *Store) findCourse(fileID string) *courseEntry {
	for _, sess := range s.sessions {
		for _, entry := range sess.courses {
			if entry.fileID == fileID {
				return entry
			}
		}
	}
	return nil
}

// touchSessionOf bumps the owning session's update time. Caller must
// hold the lock.
func (s *Store) touchSessionOf(fileID string) {
	for _, sess := range s.sessions {
		for _, entry := range sess.courses {
			if entry.fileID == fileID {
				sess.updatedAt = s.now()
				return
			}
		}
	}
}

func copyCourses(entries []*courseEntry) []model.CourseCalendar {
	out := make([]model.CourseCalendar, 0, len(entries))
	for _, entry := range entries {
		out = append(out, copyCourse(entry.course))
	}
	return out
}

func copyCourse(c model.CourseCalendar) model.CourseCalendar {
	c.Events = append([]model.CalendarEvent(nil), c.Events...)
	return c
}

// newEventID mirrors the "evt-" + short hex convention used by the
// extraction pipeline.
func newEventID() string {
	return "evt-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
