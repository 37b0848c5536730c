package tracker

import (
	"context"
	"errors"

	"pocketbook/internal/core"
)

// Session holds the per-user interaction state around a Tracker: which
// transaction the form is editing and which one awaits delete confirmation.
// It is not safe for concurrent use.
type Session struct {
	tracker       *Tracker
	editing       string
	pendingDelete string
}

func NewSession(t *Tracker) *Session {
	return &Session{tracker: t}
}

func (s *Session) Tracker() *Tracker {
	return s.tracker
}

// StartEdit switches the form to edit mode for id and returns the record to
// populate it with. An unknown id leaves the session in add mode.
func (s *Session) StartEdit(id string) (core.Transaction, error) {
	tx, err := s.tracker.Get(id)
	if err != nil {
		s.editing = ""
		return core.Transaction{}, err
	}
	s.editing = id
	return tx, nil
}

func (s *Session) CancelEdit() {
	s.editing = ""
}

// Editing returns the id under edit, if any.
func (s *Session) Editing() (string, bool) {
	return s.editing, s.editing != ""
}

// Submit updates the record under edit, or adds a new one in add mode.
// Invalid input and storage failures keep edit mode so the user can retry.
func (s *Session) Submit(ctx context.Context, in core.TransactionInput) (tx core.Transaction, created bool, err error) {
	id, editing := s.Editing()
	if !editing {
		tx, err = s.tracker.Add(ctx, in)
		return tx, err == nil, err
	}

	tx, err = s.tracker.Update(ctx, id, in)
	if err == nil || errors.Is(err, core.ErrNotFound) {
		s.editing = ""
	}
	return tx, false, err
}

// RequestDelete asks for confirmation before deleting id. A new request
// replaces any pending one.
func (s *Session) RequestDelete(id string) {
	s.pendingDelete = id
}

func (s *Session) PendingDelete() (string, bool) {
	return s.pendingDelete, s.pendingDelete != ""
}

// ConfirmDelete deletes the pending id and returns to idle. Without a
// pending request it does nothing.
func (s *Session) ConfirmDelete(ctx context.Context) (id string, removed bool, err error) {
	id, ok := s.PendingDelete()
	if !ok {
		return "", false, nil
	}
	removed, err = s.tracker.Delete(ctx, id)
	if err != nil {
		return id, false, err
	}
	s.pendingDelete = ""
	if s.editing == id {
		s.editing = ""
	}
	return id, removed, nil
}

// CancelDelete drops the pending request without touching the store.
func (s *Session) CancelDelete() {
	s.pendingDelete = ""
}
