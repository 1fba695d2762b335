package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/antoniostano/candidly/internal/history"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("list sessions failed")
		respondError(w, http.StatusInternalServerError, "store_error", "failed to list sessions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("session %s not found", id))
			return
		}
		s.log.WithError(err).Error("get session failed")
		respondError(w, http.StatusInternalServerError, "store_error", "failed to load session")
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("session %s not found", id))
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("session %s not found", id))
			return
		}
		s.log.WithError(err).Error("delete session failed")
		respondError(w, http.StatusInternalServerError, "store_error", "failed to delete session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.log.WithError(err).Error("clear sessions failed")
		respondError(w, http.StatusInternalServerError, "store_error", "failed to clear sessions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) handleExportSessions(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = history.FormatJSON
	}
	if !history.ValidFormat(format) {
		respondError(w, http.StatusBadRequest, "invalid_format", fmt.Sprintf("unsupported export format %q", format))
		return
	}

	sessions, err := s.store.List(r.Context(), 0)
	if err != nil {
		s.log.WithError(err).Error("export sessions failed")
		respondError(w, http.StatusInternalServerError, "store_error", "failed to list sessions")
		return
	}
	data, err := history.Export(sessions, format)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "export_error", err.Error())
		return
	}

	contentType := "application/json"
	if format == history.FormatCSV {
		contentType = "text/csv"
	}
	filename := history.ExportFilename(format, time.Now())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(data))
}
