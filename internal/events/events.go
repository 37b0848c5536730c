// Package events carries change notifications from the tracker to whoever
// renders or mirrors its state. Notification is push-only; observers pull
// the fresh state from the tracker themselves.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"pocketbook/internal/core"
)

const (
	Added   Kind = "transaction.added"
	Updated Kind = "transaction.updated"
	Deleted Kind = "transaction.deleted"
)

type Kind string

// Event describes one durable mutation. Transaction is the stored record
// after the change; for Deleted only its ID is set.
type Event struct {
	Kind        Kind
	Transaction core.Transaction
	At          time.Time
}

// Notifier receives events after the mutation has been persisted.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e Event) error

func (f NotifierFunc) Notify(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Multi delivers each event to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broadcaster fans events out to in-process subscribers synchronously, in
// subscription order.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
	order  []int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Broadcaster) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *Broadcaster) Notify(_ context.Context, e Event) error {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
	return nil
}
