package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/cache"
	"pocketbook/internal/core"
	"pocketbook/internal/events"
	"pocketbook/internal/storage"
	"pocketbook/internal/store"
	"pocketbook/internal/view"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type failingKV struct {
	*storage.Memory
	fail bool
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.Memory.Put(ctx, key, value)
}

type recorder struct {
	events []events.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) kinds() []events.Kind {
	out := make([]events.Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func input(typ core.Type, category, amount, date string) core.TransactionInput {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.TransactionInput{
		Type:     typ,
		Amount:   decimal.RequireFromString(amount),
		Category: core.Category(category),
		Date:     d,
	}
}

type fixture struct {
	kv      *failingKV
	tracker *Tracker
	events  *recorder
	views   *cache.LRU[view.View]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := &failingKV{Memory: storage.NewMemory()}
	s := store.New(kv, store.WithIDGenerator(store.NewTimestampIDs(func() time.Time { return now })))
	rec := &recorder{}
	views := cache.NewLRU[view.View](8, 0)
	tr := New(s,
		WithNotifier(rec),
		WithViewCache(views),
		WithClock(func() time.Time { return now }))
	tr.Load(context.Background())
	return &fixture{kv: kv, tracker: tr, events: rec, views: views}
}

func TestTracker_ViewReflectsMutationsImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v, err := f.tracker.View("2024-03")
	require.NoError(t, err)
	assert.True(t, v.Empty())
	assert.Equal(t, 1, f.views.Size())

	salary, err := f.tracker.Add(ctx, input(core.Income, "Salary", "1000", "2024-03-01"))
	require.NoError(t, err)
	_, err = f.tracker.Add(ctx, input(core.Expense, "Food", "200.50", "2024-03-02"))
	require.NoError(t, err)
	_, err = f.tracker.Add(ctx, input(core.Expense, "Rent", "700", "2024-02-01"))
	require.NoError(t, err)

	v, err = f.tracker.View("2024-03")
	require.NoError(t, err)
	require.Len(t, v.Transactions, 2)
	assert.Equal(t, "799.5", v.Summary.Balance.String())

	_, err = f.tracker.Update(ctx, salary.ID, input(core.Income, "Salary", "1200", "2024-03-01"))
	require.NoError(t, err)
	v, err = f.tracker.View("2024-03")
	require.NoError(t, err)
	assert.Equal(t, "999.5", v.Summary.Balance.String())

	all, err := f.tracker.View("")
	require.NoError(t, err)
	assert.Len(t, all.Transactions, 3)

	assert.Equal(t, []events.Kind{events.Added, events.Added, events.Added, events.Updated}, f.events.kinds())
	assert.Equal(t, now, f.events.events[0].At)
}

func TestTracker_ViewCopiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.tracker.Add(ctx, input(core.Expense, "Food", "20", "2024-03-02"))
	require.NoError(t, err)

	first, err := f.tracker.View("2024-03")
	require.NoError(t, err)
	require.Len(t, first.Transactions, 1)
	require.Equal(t, 1, first.ByCategory.Len())
	first.Transactions[0].Description = "scribbled"
	first.ByCategory.Labels[0] = "Other"
	first.ByCategory.Amounts[0] = decimal.NewFromInt(999)

	second, err := f.tracker.View("2024-03")
	require.NoError(t, err)
	assert.Equal(t, "", second.Transactions[0].Description)
	assert.Equal(t, core.Category("Food"), second.ByCategory.Labels[0])
	assert.Equal(t, "20", second.ByCategory.Amounts[0].String())

	second.Transactions[0].Description = "again"
	third, err := f.tracker.View("2024-03")
	require.NoError(t, err)
	assert.Equal(t, "", third.Transactions[0].Description)
}

func TestTracker_ViewRejectsBadMonth(t *testing.T) {
	f := newFixture(t)
	for _, key := range []string{"2024-3", "March", "2024-13"} {
		_, err := f.tracker.View(key)
		assert.ErrorIs(t, err, core.ErrInvalidMonth, key)
	}
}

func TestTracker_AddRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	in := input(core.Expense, "Food", "5", "2024-03-01")
	in.Amount = decimal.Zero

	_, err := f.tracker.Add(context.Background(), in)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Empty(t, f.tracker.All())
	assert.Empty(t, f.events.events)
}

func TestTracker_DeleteAbsentEmitsNothing(t *testing.T) {
	f := newFixture(t)
	removed, err := f.tracker.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, f.events.events)
	assert.Equal(t, 0, f.kv.Puts())
}

func TestTracker_StorageFailureKeepsStateAndSilence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx, err := f.tracker.Add(ctx, input(core.Expense, "Food", "10", "2024-03-01"))
	require.NoError(t, err)

	f.kv.fail = true
	_, err = f.tracker.Update(ctx, tx.ID, input(core.Expense, "Food", "99", "2024-03-01"))
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)

	got, err := f.tracker.Get(tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(10)))
	assert.Len(t, f.events.events, 1)
}

func TestTracker_NotifierFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	_, err := f.tracker.Add(context.Background(), input(core.Income, "Gift", "50", "2024-03-03"))
	require.NoError(t, err)
	assert.Len(t, f.tracker.All(), 1)
}

func TestTracker_TodayAndCurrentMonth(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "2024-03-15", f.tracker.Today().String())
	assert.Equal(t, "2024-03", f.tracker.CurrentMonth().String())
}
