package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pocketbook/internal/core"
	"pocketbook/internal/form"
	"pocketbook/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.session.Tracker().All())
	s.mu.Unlock()

	respondJSON(w, r, http.StatusOK, map[string]any{
		"status":       "ok",
		"transactions": n,
		"uptime":       s.uptime(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"types":      core.Types(),
		"categories": core.Categories(),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := s.session.Tracker()
	month, err := selectedMonth(r, tr.CurrentMonth())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	v, err := tr.View(month.String())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toViewDTO(v))
}

func (s *Server) handleFormDefaults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := s.session.Tracker()
	month, err := selectedMonth(r, tr.CurrentMonth())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{
		"date": form.DefaultDate(month, tr.Today()).String(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, r, http.StatusOK, s.sessionState())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	in, err := f.Parse()
	if err != nil {
		respondErr(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, created, err := s.session.Submit(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction submitted",
		log.NewFields().WithTransaction(tx).ToSlice()...)
	respondJSON(w, r, status, toTransactionDTO(tx))
}

func (s *Server) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.session.StartEdit(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"id":   tx.ID,
		"form": form.FromTransaction(tx),
	})
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.CancelEdit()
	respondJSON(w, r, http.StatusOK, s.sessionState())
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.RequestDelete(chi.URLParam(r, "id"))
	respondJSON(w, r, http.StatusAccepted, s.sessionState())
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, removed, err := s.session.ConfirmDelete(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"id":      id,
		"removed": removed,
	})
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.CancelDelete()
	respondJSON(w, r, http.StatusOK, s.sessionState())
}

// sessionState must be called with s.mu held.
func (s *Server) sessionState() sessionDTO {
	return sessionDTO{
		Editing:       optional(s.session.Editing()),
		PendingDelete: optional(s.session.PendingDelete()),
	}
}

func (s *Server) uptime() string {
	return time.Since(s.started).Round(time.Second).String()
}
