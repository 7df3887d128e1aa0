package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - live debate events
	mux.HandleFunc("/ws", s.events.HandleWebSocket)

	// API routes - Debates
	mux.HandleFunc("/api/debates", s.handleDebatesRoute)  // GET (list), POST (run)
	mux.HandleFunc("/api/debates/", s.handleDebateRoutes) // GET/DELETE /{id}, GET /{id}/transcript

	// API routes - System
	mux.HandleFunc("/api/status", s.statusHandler)
	mux.HandleFunc("/api/agents", s.agentsHandler)
	mux.HandleFunc("/api/queues", s.queuesHandler)
	mux.HandleFunc("/api/queues/", s.handleQueueRoutes) // POST /clear, POST /{id}/clear
	mux.HandleFunc("/api/version", s.versionHandler)
	mux.HandleFunc("/api/health", s.healthHandler)

	return mux
}

// handleDebatesRoute dispatches /api/debates by method
func (s *Server) handleDebatesRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDebatesHandler(w, r)
	case http.MethodPost:
		s.runDebateHandler(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleDebateRoutes dispatches /api/debates/{id} and subpaths
func (s *Server) handleDebateRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/debates/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "debate id is required")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.getDebateHandler(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.deleteDebateHandler(w, r, id)
	case len(parts) == 2 && parts[1] == "transcript" && r.Method == http.MethodGet:
		s.transcriptHandler(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleQueueRoutes dispatches /api/queues/clear and /api/queues/{id}/clear
func (s *Server) handleQueueRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/queues/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] == "clear" && r.Method == http.MethodPost:
		s.clearAllQueuesHandler(w, r)
	case len(parts) == 2 && parts[1] == "clear" && r.Method == http.MethodPost:
		s.clearQueueHandler(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
