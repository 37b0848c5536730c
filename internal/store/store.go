// Package store owns the authoritative transaction collection and keeps it
// mirrored in a durable key-value slot. Every successful mutation is written
// through before it returns.
//
// A Store is not safe for concurrent use; callers that share one across
// goroutines serialize access themselves.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/storage"
)

// DefaultKey is the name of the slot holding the serialized collection.
const DefaultKey = "transactions"

// BackupSuffix names the slot that keeps a payload Load could not fully
// decode, written just before the first persist replaces it.
const BackupSuffix = ".bak"

type Store struct {
	kv     storage.KV
	key    string
	ids    IDGenerator
	logger *log.Logger
	items  []core.Transaction

	// Set by Load when the slot held data that did not make it into items.
	backup     []byte
	unreadable bool
}

type Option func(*Store)

// WithKey overrides the slot name.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// New creates an empty store on top of kv. Call Load to read the slot.
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		ids:    NewTimestampIDs(nil),
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the slot name the store persists to.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory collection with the slot contents and returns
// a snapshot of it. It never fails: a missing, unreadable or corrupt slot
// yields an empty collection.
//
// A payload that could not be fully decoded is copied to the backup slot
// (key + BackupSuffix) by the next persist. A slot that could not be read
// at all is overwritten by the next persist, which is logged as an error.
func (s *Store) Load(ctx context.Context) []core.Transaction {
	s.items = nil
	s.backup = nil
	s.unreadable = false

	payload, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNoValue):
		s.logger.InfoContext(ctx, "No stored transactions, starting empty",
			log.FieldStorageKey, s.key, log.FieldOperation, log.OpLoad)
		return s.All()
	case err != nil:
		s.unreadable = true
		s.logger.ErrorContext(ctx, "Durable store unreadable, starting empty",
			log.FieldStorageKey, s.key, log.FieldOperation, log.OpLoad,
			log.FieldError, fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err).Error())
		return s.All()
	}

	items, skipped, err := Decode(payload)
	if err != nil {
		s.backup = payload
		s.logger.ErrorContext(ctx, "Stored payload unparsable, starting empty",
			log.FieldStorageKey, s.key, log.FieldOperation, log.OpLoad, log.FieldError, err.Error())
		return s.All()
	}
	if skipped > 0 {
		s.backup = payload
		s.logger.WarnContext(ctx, "Dropped invalid stored transactions",
			log.FieldStorageKey, s.key, "skipped", skipped)
	}

	s.items = items
	s.logger.InfoContext(ctx, "Transactions loaded",
		log.FieldStorageKey, s.key, log.FieldCount, len(items), log.FieldOperation, log.OpLoad)
	return s.All()
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []core.Transaction {
	return append([]core.Transaction{}, s.items...)
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	return len(s.items)
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (core.Transaction, error) {
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("get %s: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

// Add assigns a fresh id to in, appends it and persists the collection.
// The input is expected to be validated by the caller.
func (s *Store) Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t := core.Transaction{ID: s.freshID(), TransactionInput: in}

	s.items = append(s.items, t)
	if err := s.persist(ctx); err != nil {
		s.items = s.items[:len(s.items)-1]
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithTransaction(t).WithOperation(log.OpCreate).ToSlice()...)
	return t, nil
}

// Update replaces every field of the transaction with the given id except
// the id itself. An unknown id fails with core.ErrNotFound and writes nothing.
func (s *Store) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("update %s: %w", id, core.ErrNotFound)
	}

	prev := s.items[i]
	updated := core.Transaction{ID: prev.ID, TransactionInput: in}
	s.items[i] = updated
	if err := s.persist(ctx); err != nil {
		s.items[i] = prev
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.NewFields().WithTransaction(updated).WithOperation(log.OpUpdate).ToSlice()...)
	return updated, nil
}

// Delete removes the transaction with the given id. Deleting an id that is
// not present is a no-op that returns false and writes nothing.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		s.logger.DebugContext(ctx, "Delete of unknown transaction ignored", log.FieldTxID, id)
		return false, nil
	}

	prev := s.items
	s.items = slices.Delete(slices.Clone(s.items), i, i+1)
	if err := s.persist(ctx); err != nil {
		s.items = prev
		return false, fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTxID, id, log.FieldOperation, log.OpDelete)
	return true, nil
}

func (s *Store) persist(ctx context.Context) error {
	payload, err := Encode(s.items)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}

	if s.backup != nil {
		if err := s.kv.Put(ctx, s.key+BackupSuffix, s.backup); err != nil {
			s.logger.ErrorContext(ctx, "Failed to back up undecodable transactions",
				log.FieldStorageKey, s.key+BackupSuffix, log.FieldOperation, log.OpPersist, log.FieldError, err.Error())
			return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
		}
		s.logger.WarnContext(ctx, "Undecodable transactions backed up",
			log.FieldStorageKey, s.key+BackupSuffix, log.FieldOperation, log.OpPersist)
		s.backup = nil
	}

	if err := s.kv.Put(ctx, s.key, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions",
			log.FieldStorageKey, s.key, log.FieldOperation, log.OpPersist, log.FieldError, err.Error())
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}

	if s.unreadable {
		s.logger.ErrorContext(ctx, "Overwrote unreadable stored transactions",
			log.FieldStorageKey, s.key, log.FieldOperation, log.OpPersist)
		s.unreadable = false
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(t core.Transaction) bool { return t.ID == id })
}

// freshID draws ids until one is not already in use; loaded data may
// contain ids the generator could produce again.
func (s *Store) freshID() string {
	for {
		id := s.ids.NewID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}
