package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/san-kum/seaglass/internal/notes"
	"go.uber.org/zap"
)

const maxTextLen = 2000

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := s.db.List(r.Context(), chi.URLParam(r, "owner"))
	if err != nil {
		s.log.Error("list notes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if list == nil {
		list = []notes.Note{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var n notes.Note
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if msg := checkText(n.Text); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	n.Owner = chi.URLParam(r, "owner")
	if n.ID == "" {
		n.ID = notes.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n = n.Normalize()

	if err := s.db.Create(r.Context(), n); err != nil {
		s.log.Warn("create note", zap.String("note_id", n.ID), zap.Error(err))
		writeError(w, http.StatusConflict, "create failed")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if msg := checkText(req.Text); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	owner, id := chi.URLParam(r, "owner"), chi.URLParam(r, "noteID")
	s.finish(w, s.db.Update(r.Context(), owner, id, req.Text), id)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	owner, id := chi.URLParam(r, "owner"), chi.URLParam(r, "noteID")
	s.finish(w, s.db.Delete(r.Context(), owner, id), id)
}

func (s *Server) finish(w http.ResponseWriter, err error, id string) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, notes.ErrNotFound):
		writeError(w, http.StatusNotFound, "note not found")
	default:
		s.log.Error("note write", zap.String("note_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "write failed")
	}
}

func checkText(text string) string {
	switch {
	case strings.TrimSpace(text) == "":
		return "text required"
	case len(text) > maxTextLen:
		return "text too long"
	}
	return ""
}
