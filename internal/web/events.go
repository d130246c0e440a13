package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	appLog "coursecal/internal/log"
	"coursecal/internal/model"
	"coursecal/internal/store"
	"coursecal/internal/validate"
)

// importResponse is returned by the course import endpoint. It extends
// the session summary with the per-event validation report for the
// just-imported course.
type importResponse struct {
	sessionSummary
	FileID            string                     `json:"file_id"`
	Validation        map[string]validate.Result `json:"validation"`
	DuplicatesRemoved int                        `json:"duplicates_removed"`
}

// handleCourseImport accepts an already-extracted course (the typed
// output of the external extraction step) as JSON, validates and
// deduplicates its events, and stores it under a session.
//
// POST /api/process/import?session_id=<optional>
func (s *Server) handleCourseImport(w http.ResponseWriter, r *http.Request) {
	var course model.CourseCalendar
	if !decodeJSON(w, r, &course) {
		return
	}

	if len(course.Events) == 0 {
		writeError(w, http.StatusBadRequest, "course has no events")
		return
	}
	if len(course.Events) > s.cfg.MaxImportEvents {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("course exceeds the limit of %d events", s.cfg.MaxImportEvents))
		return
	}

	// Dedup first so validation is reported once per surviving event.
	unique, duplicates := validate.Deduplicate(course.Events)
	results := s.validator.ValidateBatch(unique)

	invalid := 0
	for _, res := range results {
		if !res.IsValid {
			invalid++
		}
	}
	if invalid > 0 {
		appLog.Warn("imported course has invalid events",
			"course", course.CourseCode,
			"invalid", invalid,
			"total", len(unique),
		)
	}
	course.Events = unique

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = s.store.CreateSession()
		appLog.Info("created session for import", "session_id", sessionID)
	}

	fileID := uuid.NewString()
	if err := s.store.AddCourse(sessionID, fileID, course); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session "+sessionID+" not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	mc, err := s.store.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session after import")
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		sessionSummary:    summarizeSession(sessionID, mc),
		FileID:            fileID,
		Validation:        results,
		DuplicatesRemoved: len(duplicates),
	})
}

// validateBatchRequest is the body for the standalone validation
// endpoint.
type validateBatchRequest struct {
	Events []model.CalendarEvent `json:"events"`
}

type validateBatchResponse struct {
	Results    map[string]validate.Result `json:"results"`
	Duplicates []model.CalendarEvent      `json:"duplicates"`
}

// handleValidateBatch runs the validator over a list of events without
// storing anything. Frontends use it for pre-import checks.
func (s *Server) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req validateBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Events) == 0 {
		writeError(w, http.StatusBadRequest, "no events to validate")
		return
	}

	_, duplicates := validate.Deduplicate(req.Events)
	if duplicates == nil {
		duplicates = []model.CalendarEvent{}
	}

	writeJSON(w, http.StatusOK, validateBatchResponse{
		Results:    s.validator.ValidateBatch(req.Events),
		Duplicates: duplicates,
	})
}

func (s *Server) handleEventList(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileID")

	course, err := s.store.CourseByFileID(fileID)
	if err != nil {
		// Match the original behavior: an unknown file id yields an
		// empty list, not an error.
		writeJSON(w, http.StatusOK, model.NewCalendarEventList(nil))
		return
	}

	writeJSON(w, http.StatusOK, model.NewCalendarEventList(course.Events))
}

func (s *Server) handleEventGet(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileID")
	eventID := r.PathValue("eventID")

	ev, err := s.store.Event(fileID, eventID)
	if err != nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("event %s not found in session %s", eventID, fileID))
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleEventUpdate(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileID")
	eventID := r.PathValue("eventID")

	var updated model.CalendarEvent
	if !decodeJSON(w, r, &updated) {
		return
	}

	result := s.validator.ValidateEvent(updated)
	if !result.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	if err := s.store.UpdateEvent(fileID, eventID, updated); err != nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("event %s not found in session %s", eventID, fileID))
		return
	}

	updated.ID = eventID
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleEventDelete(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileID")
	eventID := r.PathValue("eventID")

	if err := s.store.DeleteEvent(fileID, eventID); err != nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("event %s not found in session %s", eventID, fileID))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "event " + eventID + " deleted",
	})
}

func (s *Server) handleEventStats(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileID")

	stats, err := s.store.CourseStats(fileID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no events found for file "+fileID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file_id": fileID,
		"stats":   stats,
	})
}
