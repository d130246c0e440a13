package web

import (
	"context"
	"encoding/json"
	"net/http"

	"coursecal/internal/config"
	"coursecal/internal/ics"
	appLog "coursecal/internal/log"
	"coursecal/internal/store"
	"coursecal/internal/validate"
)

// Server provides the HTTP API for upload sessions, event review and
// calendar export.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	validator *validate.Validator
	gen       *ics.Generator
	mux       *http.ServeMux
}

// NewServer constructs a Server around an explicit store handle and a
// calendar generator.
func NewServer(cfg *config.Config, st *store.Store, gen *ics.Generator) *Server {
	s := &Server{
		cfg:       cfg,
		store:     st,
		validator: validate.New(gen.Location()),
		gen:       gen,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StartServer starts an HTTP server bound to cfg.Listen. Graceful
// shutdown via ctx is left to the caller wrapping http.Server; this
// helper only provides the plain ListenAndServe path.
func StartServer(_ context.Context, cfg *config.Config, st *store.Store, gen *ics.Generator) error {
	s := NewServer(cfg, st, gen)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "timezone", cfg.Timezone)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/session/create", s.handleSessionCreate)
	s.mux.HandleFunc("GET /api/session/{id}", s.handleSessionGet)
	s.mux.HandleFunc("DELETE /api/session/{id}", s.handleSessionDelete)

	s.mux.HandleFunc("POST /api/process/import", s.handleCourseImport)

	s.mux.HandleFunc("POST /api/events/validate", s.handleValidateBatch)
	s.mux.HandleFunc("GET /api/events/{fileID}", s.handleEventList)
	s.mux.HandleFunc("GET /api/events/{fileID}/stats", s.handleEventStats)
	s.mux.HandleFunc("GET /api/events/{fileID}/{eventID}", s.handleEventGet)
	s.mux.HandleFunc("PUT /api/events/{fileID}/{eventID}", s.handleEventUpdate)
	s.mux.HandleFunc("DELETE /api/events/{fileID}/{eventID}", s.handleEventDelete)

	s.mux.HandleFunc("POST /api/calendar/export/session/{id}", s.handleExportSession)
	s.mux.HandleFunc("POST /api/calendar/export/file/{fileID}", s.handleExportFile)
	s.mux.HandleFunc("GET /api/calendar/preview/session/{id}", s.handlePreviewSession)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// decodeJSON reads a request body into v, capping the read to guard
// against oversized payloads.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	const maxBody = 8 << 20
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
