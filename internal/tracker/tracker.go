// Package tracker is the application service the adapters talk to. It owns
// the transaction store, memoizes month views between mutations and
// announces every durable change to a notifier.
package tracker

import (
	"context"
	"fmt"
	"time"

	"pocketbook/internal/cache"
	"pocketbook/internal/core"
	"pocketbook/internal/events"
	"pocketbook/internal/log"
	"pocketbook/internal/store"
	"pocketbook/internal/view"
)

type Tracker struct {
	store    *store.Store
	views    cache.Cache[view.View]
	notifier events.Notifier
	logger   *log.Logger
	now      func() time.Time
}

type Option func(*Tracker)

func WithNotifier(n events.Notifier) Option {
	return func(t *Tracker) {
		if n != nil {
			t.notifier = n
		}
	}
}

// WithViewCache memoizes views per month key in c.
func WithViewCache(c cache.Cache[view.View]) Option {
	return func(t *Tracker) {
		t.views = c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l.WithComponent(log.ComponentTracker)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func New(s *store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:    s,
		notifier: events.Nop{},
		logger:   log.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load reads the durable slot. It never fails; see store.Store.Load.
func (t *Tracker) Load(ctx context.Context) []core.Transaction {
	all := t.store.Load(ctx)
	t.purge()
	return all
}

// Today is the current calendar day according to the tracker clock.
func (t *Tracker) Today() core.Date {
	return core.DateOf(t.now())
}

// CurrentMonth is the month selected when the user has not picked one.
func (t *Tracker) CurrentMonth() core.YearMonth {
	return core.CurrentYearMonth(t.now())
}

// View returns the transactions, totals and category breakdown for a month
// key. An empty key selects every transaction. Each call returns its own
// copy; the memoized view is never handed out.
func (t *Tracker) View(monthKey string) (view.View, error) {
	if monthKey != "" {
		ym, err := core.ParseYearMonth(monthKey)
		if err != nil {
			return view.View{}, fmt.Errorf("view %q: %w", monthKey, err)
		}
		monthKey = ym.String()
	}

	if t.views != nil {
		if v, ok := t.views.Get(monthKey); ok {
			return v.Clone(), nil
		}
	}
	v := view.Build(t.store.All(), monthKey)
	if t.views != nil {
		t.views.Set(monthKey, v)
	}
	return v.Clone(), nil
}

func (t *Tracker) All() []core.Transaction {
	return t.store.All()
}

func (t *Tracker) Get(id string) (core.Transaction, error) {
	return t.store.Get(id)
}

func (t *Tracker) Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx, err := t.store.Add(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}
	t.changed(ctx, events.Added, tx)
	return tx, nil
}

func (t *Tracker) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx, err := t.store.Update(ctx, id, in)
	if err != nil {
		return core.Transaction{}, err
	}
	t.changed(ctx, events.Updated, tx)
	return tx, nil
}

// Delete removes id and reports whether anything was removed. Absent ids
// are not an error.
func (t *Tracker) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := t.store.Delete(ctx, id)
	if err != nil || !removed {
		return false, err
	}
	t.changed(ctx, events.Deleted, core.Transaction{ID: id})
	return true, nil
}

func (t *Tracker) changed(ctx context.Context, kind events.Kind, tx core.Transaction) {
	t.purge()

	e := events.Event{Kind: kind, Transaction: tx, At: t.now()}
	if err := t.notifier.Notify(ctx, e); err != nil {
		t.logger.WarnContext(ctx, "Failed to notify transaction change",
			log.FieldEventKind, string(kind),
			log.FieldTxID, tx.ID,
			log.FieldError, err.Error())
	}
}

func (t *Tracker) purge() {
	if t.views != nil {
		t.views.Purge()
	}
}
