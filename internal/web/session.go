package web

import (
	"errors"
	"net/http"

	"coursecal/internal/model"
	"coursecal/internal/store"
)

// courseSummary is the per-course slice of a session summary response.
type courseSummary struct {
	CourseCode       string `json:"course_code"`
	CourseName       string `json:"course_name"`
	Semester         string `json:"semester,omitempty"`
	Instructor       string `json:"instructor,omitempty"`
	EventCount       int    `json:"event_count"`
	NeedsReviewCount int    `json:"needs_review_count"`
}

// sessionSummary is the JSON shape for session detail responses.
type sessionSummary struct {
	SessionID        string          `json:"session_id"`
	TotalCourses     int             `json:"total_courses"`
	TotalEvents      int             `json:"total_events"`
	TotalNeedsReview int             `json:"total_needs_review"`
	Courses          []courseSummary `json:"courses"`
}

func summarizeSession(sessionID string, mc model.MultiCourseCalendar) sessionSummary {
	courses := make([]courseSummary, 0, len(mc.Courses))
	for i := range mc.Courses {
		c := &mc.Courses[i]
		courses = append(courses, courseSummary{
			CourseCode:       c.CourseCode,
			CourseName:       c.CourseName,
			Semester:         c.Semester,
			Instructor:       c.Instructor,
			EventCount:       c.EventCount(),
			NeedsReviewCount: c.NeedsReviewCount(),
		})
	}
	return sessionSummary{
		SessionID:        sessionID,
		TotalCourses:     mc.TotalCourses(),
		TotalEvents:      mc.TotalEvents(),
		TotalNeedsReview: mc.TotalNeedsReview(),
		Courses:          courses,
	}
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, _ *http.Request) {
	sessionID := s.store.CreateSession()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "Session created successfully",
		"session_id": sessionID,
	})
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	mc, err := s.store.Session(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session "+sessionID+" not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summarizeSession(sessionID, mc))
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := s.store.DeleteSession(sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session "+sessionID+" not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "session " + sessionID + " deleted",
	})
}
