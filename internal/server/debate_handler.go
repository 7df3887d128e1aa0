package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
	badgerstorage "github.com/ternarybob/concord/internal/storage/badger"
)

// runDebateHandler executes a debate synchronously and returns its result.
// An aborted debate still returns the partial result with phase "failed".
func (s *Server) runDebateHandler(w http.ResponseWriter, r *http.Request) {
	var scenario models.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if scenario.Story == "" {
		writeError(w, http.StatusBadRequest, "story is required")
		return
	}

	result, err := s.app.RunDebate(r.Context(), scenario)
	if err != nil && result == nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// listDebatesHandler returns stored results, newest first.
func (s *Server) listDebatesHandler(w http.ResponseWriter, r *http.Request) {
	opts := &interfaces.ListOptions{Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			opts.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			opts.Offset = offset
		}
	}

	results, err := s.app.Storage.ListResults(opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) getDebateHandler(w http.ResponseWriter, _ *http.Request, id string) {
	result, err := s.app.Storage.GetResult(id)
	if err != nil {
		if errors.Is(err, badgerstorage.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) deleteDebateHandler(w http.ResponseWriter, _ *http.Request, id string) {
	if err := s.app.Storage.DeleteResult(id); err != nil {
		if errors.Is(err, badgerstorage.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// transcriptHandler renders a stored debate transcript. Markdown by
// default; ?format=html renders through goldmark.
func (s *Server) transcriptHandler(w http.ResponseWriter, r *http.Request, id string) {
	result, err := s.app.Storage.GetResult(id)
	if err != nil {
		if errors.Is(err, badgerstorage.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := s.app.Reports.HTML(result)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.app.Reports.Markdown(result)))
}
