package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursecal/internal/config"
	"coursecal/internal/ics"
	"coursecal/internal/model"
	"coursecal/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Timezone = "UTC"

	gen, err := ics.New(cfg.Timezone)
	if err != nil {
		t.Fatalf("ics.New error: %v", err)
	}
	return NewServer(cfg, store.New(), gen)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func sampleCourse() model.CourseCalendar {
	ev := model.CalendarEvent{
		Title:         "CS301 Lecture",
		StartDateTime: "2026-01-20T14:00:00",
		EndDateTime:   "2026-01-20T15:20:00",
		Location:      "Room 101",
		Type:          model.TypeLecture,
	}
	exam := ev
	exam.Title = "CS301 Midterm"
	exam.Type = model.TypeExam
	dup := ev

	return model.CourseCalendar{
		CourseCode: "CS301",
		CourseName: "Data Structures",
		Events:     []model.CalendarEvent{ev, exam, dup},
	}
}

func importCourse(t *testing.T, s *Server) (sessionID, fileID string) {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/process/import", sampleCourse())
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID         string `json:"session_id"`
		FileID            string `json:"file_id"`
		TotalEvents       int    `json:"total_events"`
		DuplicatesRemoved int    `json:"duplicates_removed"`
	}
	decodeBody(t, rec, &resp)
	if resp.SessionID == "" || resp.FileID == "" {
		t.Fatalf("missing ids in response: %+v", resp)
	}
	if resp.DuplicatesRemoved != 1 {
		t.Errorf("duplicates_removed = %d, want 1", resp.DuplicatesRemoved)
	}
	if resp.TotalEvents != 2 {
		t.Errorf("total_events = %d, want 2 after dedup", resp.TotalEvents)
	}
	return resp.SessionID, resp.FileID
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/session/create", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, rec, &created)
	if created.SessionID == "" {
		t.Fatal("missing session_id")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/session/"+created.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/session/"+created.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/session/"+created.SessionID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestImportAndListEvents(t *testing.T) {
	s := testServer(t)
	_, fileID := importCourse(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/events/"+fileID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list model.CalendarEventList
	decodeBody(t, rec, &list)
	if list.Total != 2 {
		t.Errorf("total = %d, want 2", list.Total)
	}
	for _, ev := range list.Events {
		if ev.ID == "" {
			t.Error("stored events should carry assigned ids")
		}
	}
}

func TestImportIntoExistingSession(t *testing.T) {
	s := testServer(t)
	sessionID, _ := importCourse(t, s)

	second := sampleCourse()
	second.CourseCode = "MATH200"
	rec := doJSON(t, s, http.MethodPost, "/api/process/import?session_id="+sessionID, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("second import status = %d", rec.Code)
	}
	var resp struct {
		TotalCourses int `json:"total_courses"`
		TotalEvents  int `json:"total_events"`
	}
	decodeBody(t, rec, &resp)
	if resp.TotalCourses != 2 || resp.TotalEvents != 4 {
		t.Errorf("summary = %+v, want 2 courses / 4 events", resp)
	}
}

func TestImportRejectsEmptyCourse(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/process/import", model.CourseCalendar{CourseCode: "CS301"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEventUpdateAndDelete(t *testing.T) {
	s := testServer(t)
	_, fileID := importCourse(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/events/"+fileID, nil)
	var list model.CalendarEventList
	decodeBody(t, rec, &list)
	eventID := list.Events[0].ID

	updated := list.Events[0]
	updated.Title = "CS301 Lecture (moved)"
	rec = doJSON(t, s, http.MethodPut, "/api/events/"+fileID+"/"+eventID, updated)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/events/"+fileID+"/"+eventID, nil)
	var got model.CalendarEvent
	decodeBody(t, rec, &got)
	if got.Title != "CS301 Lecture (moved)" {
		t.Errorf("Title = %q after update", got.Title)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/events/"+fileID+"/"+eventID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/events/"+fileID+"/"+eventID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestEventUpdateRejectsInvalid(t *testing.T) {
	s := testServer(t)
	_, fileID := importCourse(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/events/"+fileID, nil)
	var list model.CalendarEventList
	decodeBody(t, rec, &list)

	bad := list.Events[0]
	bad.EndDateTime = bad.StartDateTime
	rec = doJSON(t, s, http.MethodPut, "/api/events/"+fileID+"/"+bad.ID, bad)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestValidateBatchEndpoint(t *testing.T) {
	s := testServer(t)

	invalid := model.CalendarEvent{Title: "x"}
	rec := doJSON(t, s, http.MethodPost, "/api/events/validate", map[string]any{
		"events": []model.CalendarEvent{invalid},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Results map[string]struct {
			IsValid bool `json:"is_valid"`
		} `json:"results"`
	}
	decodeBody(t, rec, &resp)
	res, ok := resp.Results["event_0"]
	if !ok || res.IsValid {
		t.Errorf("expected invalid result for event_0, got %+v", resp.Results)
	}
}

func TestExportSession(t *testing.T) {
	s := testServer(t)
	sessionID, _ := importCourse(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/calendar/export/session/"+sessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "VERSION:2.0") {
		t.Error("export is not a calendar document")
	}
	if got := strings.Count(body, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("VEVENT count = %d, want 2", got)
	}
}

func TestExportSessionEmpty(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/session/create", nil)
	var created struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, rec, &created)

	rec = doJSON(t, s, http.MethodPost, "/api/calendar/export/session/"+created.SessionID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportUnknownSession(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/calendar/export/session/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExportSingleCourse(t *testing.T) {
	s := testServer(t)
	_, fileID := importCourse(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/calendar/export/file/"+fileID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "CS301_calendar.ics") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestPreviewSession(t *testing.T) {
	s := testServer(t)
	sessionID, _ := importCourse(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/calendar/preview/session/"+sessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d", rec.Code)
	}
	var resp struct {
		TotalCourses int `json:"total_courses"`
		TotalEvents  int `json:"total_events"`
	}
	decodeBody(t, rec, &resp)
	if resp.TotalCourses != 1 || resp.TotalEvents != 2 {
		t.Errorf("preview = %+v", resp)
	}
}

func TestEventListUnknownFileIsEmpty(t *testing.T) {
	s := testServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/events/unknown", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list model.CalendarEventList
	decodeBody(t, rec, &list)
	if list.Total != 0 || list.Events == nil {
		t.Errorf("list = %+v, want empty list", list)
	}
}
