package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"coursecal/internal/ics"
	appLog "coursecal/internal/log"
	"coursecal/internal/store"
)

// handleExportSession compiles every course in a session into a single
// .ics file and serves it as a download.
//
// POST /api/calendar/export/session/{id}
func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
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
	if mc.TotalEvents() == 0 {
		writeError(w, http.StatusBadRequest,
			"no events to export; upload and extract course outlines first")
		return
	}

	content, err := s.gen.GenerateMultiCourse(&mc)
	if err != nil {
		appLog.Error("session export failed", err, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "failed to generate calendar")
		return
	}

	filename := fmt.Sprintf("multi_course_%s.ics", sessionID)
	s.serveCalendar(w, content, filename, fmt.Sprintf("my_courses_%s.ics", sessionID))
}

// handleExportFile compiles a single course's events.
//
// POST /api/calendar/export/file/{fileID}
func (s *Server) handleExportFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileID")

	course, err := s.store.CourseByFileID(fileID)
	if err != nil || len(course.Events) == 0 {
		writeError(w, http.StatusNotFound, "no events found for file "+fileID)
		return
	}

	content, err := s.gen.Generate(course.Events, s.cfg.CalendarName)
	if err != nil {
		appLog.Error("course export failed", err, "file_id", fileID)
		writeError(w, http.StatusInternalServerError, "failed to generate calendar")
		return
	}

	filename := fmt.Sprintf("course_%s.ics", fileID)
	s.serveCalendar(w, content, filename, fmt.Sprintf("%s_calendar.ics", course.CourseCode))
}

// serveCalendar persists the generated document under the calendars
// directory and writes it to the response as an attachment. The
// compatibility check runs on every export; failures are logged but do
// not block the download.
func (s *Server) serveCalendar(w http.ResponseWriter, content, storedName, downloadName string) {
	if report := ics.CheckCompatibility(content); !report.IsValid {
		appLog.Warn("generated calendar failed compatibility check",
			"errors", fmt.Sprintf("%v", report.Errors))
	}

	dir := s.cfg.CalendarsDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		appLog.Error("failed to create calendars dir", err, "dir", dir)
	} else if err := os.WriteFile(filepath.Join(dir, storedName), []byte(content), 0o600); err != nil {
		appLog.Error("failed to persist calendar file", err, "file", storedName)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// handlePreviewSession returns a JSON summary of what a session export
// would contain.
//
// GET /api/calendar/preview/session/{id}
func (s *Server) handlePreviewSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	mc, err := s.store.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session "+sessionID+" not found")
		return
	}

	type coursePreview struct {
		CourseCode string `json:"course_code"`
		CourseName string `json:"course_name"`
		EventCount int    `json:"event_count"`
	}
	courses := make([]coursePreview, 0, len(mc.Courses))
	for i := range mc.Courses {
		courses = append(courses, coursePreview{
			CourseCode: mc.Courses[i].CourseCode,
			CourseName: mc.Courses[i].CourseName,
			EventCount: mc.Courses[i].EventCount(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    sessionID,
		"total_courses": mc.TotalCourses(),
		"total_events":  mc.TotalEvents(),
		"courses":       courses,
	})
}
