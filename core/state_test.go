package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/huangsam/contacts/internal/iocache"
	"github.com/huangsam/contacts/internal/remote"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recorder collects every state a subscriber sees.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) loadingFlags() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	flags := make([]bool, 0, len(r.states))
	for _, st := range r.states {
		flags = append(flags, st.Loading)
	}
	return flags
}

func (r *recorder) last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

func TestSubscribe_LoadingTogglesAroundLoad(t *testing.T) {
	store, svc, _ := newTestStore()
	svc.On("List", mock.Anything).Return([]schema.Contact{luke()}, nil)

	rec := &recorder{}
	store.Subscribe(rec.observe)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	flags := rec.loadingFlags()
	require.GreaterOrEqual(t, len(flags), 2)
	assert.True(t, flags[0], "first notification turns loading on")
	assert.False(t, flags[len(flags)-1], "last notification turns loading off")

	final := rec.last()
	assert.Equal(t, []schema.Contact{luke()}, final.Contacts)
	assert.True(t, final.CacheValid)
}

func TestSubscribe_LoadingOffAfterFailure(t *testing.T) {
	store, svc, _ := newTestStore()
	svc.On("Delete", mock.Anything, lukeID).Return(errors.New("gateway timeout"))

	rec := &recorder{}
	store.Subscribe(rec.observe)

	require.Error(t, store.Delete(context.Background(), lukeID))
	flags := rec.loadingFlags()
	assert.Equal(t, []bool{true, false}, flags)
	assert.False(t, store.State().Loading)
}

func TestSubscribe_SeesEveryListChange(t *testing.T) {
	store, svc, _ := newTestStore()
	svc.On("List", mock.Anything).Return([]schema.Contact{luke(), leia()}, nil).Once()
	svc.On("Delete", mock.Anything, "leia-1").Return(nil)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	rec := &recorder{}
	store.Subscribe(rec.observe)
	require.NoError(t, store.Delete(context.Background(), "leia-1"))

	assert.Equal(t, []schema.Contact{luke()}, rec.last().Contacts)
}

func TestUnsubscribe(t *testing.T) {
	store, svc, _ := newTestStore()
	svc.On("List", mock.Anything).Return([]schema.Contact{luke()}, nil)

	rec := &recorder{}
	unsubscribe := store.Subscribe(rec.observe)
	unsubscribe()
	unsubscribe()

	_, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rec.loadingFlags())
}

func TestSubscriberCannotMutateStore(t *testing.T) {
	store, svc, _ := newTestStore()
	svc.On("List", mock.Anything).Return([]schema.Contact{luke()}, nil)

	store.Subscribe(func(st State) {
		for i := range st.Contacts {
			st.Contacts[i].FirstName = "Mutated"
		}
	})
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Luke", store.Contacts()[0].FirstName)
}

func TestSubscribe_LastNotificationMatchesStateUnderConcurrency(t *testing.T) {
	store, _, snaps := newTestStore()
	seedSnapshot(t, snaps, []schema.Contact{luke()})

	rec := &recorder{}
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.Subscribe(func(st State) {
		rec.observe(st)
		if st.SelectedID == "x" {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Select("x")
	}()
	<-entered

	// Load runs to completion while the selection notification is still held
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	close(release)
	<-done

	final := store.State()
	last := rec.last()
	assert.False(t, final.Loading)
	assert.Equal(t, final.Loading, last.Loading)
	assert.Equal(t, final.Contacts, last.Contacts)
	assert.Equal(t, "x", last.SelectedID)

	flags := rec.loadingFlags()
	assert.Equal(t, []bool{false, true, true, false}, flags, "notifications arrive in the order the states were taken")
}

func TestSubscribe_CallbackMayCallStore(t *testing.T) {
	store, svc, _ := newTestStore()
	svc.On("List", mock.Anything).Return([]schema.Contact{luke()}, nil)

	var seen []string
	store.Subscribe(func(st State) {
		seen = append(seen, st.SelectedID)
		if !st.Loading && len(st.Contacts) == 1 && st.SelectedID == "" {
			store.Select(st.Contacts[0].ID)
		}
	})
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, lukeID, store.State().SelectedID)
	assert.Equal(t, lukeID, seen[len(seen)-1])
}

func TestSelect(t *testing.T) {
	store, svc, _ := newTestStore()
	svc.On("List", mock.Anything).Return([]schema.Contact{luke(), leia()}, nil)
	svc.On("Delete", mock.Anything, lukeID).Return(nil)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	store.Select(lukeID)
	st := store.State()
	assert.Equal(t, lukeID, st.SelectedID)
	selected, ok := st.Find(st.SelectedID)
	require.True(t, ok)
	assert.Equal(t, "Luke Skywalker", selected.FullName())

	// Deleting the selected contact clears the selection
	require.NoError(t, store.Delete(context.Background(), lukeID))
	assert.Empty(t, store.State().SelectedID)

	_, ok = store.State().Find(lukeID)
	assert.False(t, ok)
}

func TestHistoryJournal(t *testing.T) {
	history := &iocache.MockHistoryStore{}
	history.On("RecordOperation", mock.Anything).Return(int64(1), nil)

	svc := &remote.MockContactService{}
	svc.On("List", mock.Anything).Return([]schema.Contact{luke()}, nil).Once()
	svc.On("Get", mock.Anything, "ghost").Return(nil, errors.New("boom"))

	store := NewStore(svc, iocache.NewMemorySnapshotStore(), WithHistory(history))
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	require.NoError(t, err)
	_, err = store.GetOne(context.Background(), "ghost")
	require.Error(t, err)

	require.Len(t, history.Calls, 3)
	first := history.Calls[0].Arguments.Get(0).(schema.OperationRecord)
	assert.Equal(t, schema.LoadOp, first.Operation)
	assert.Equal(t, schema.RemoteSource, first.Source)
	assert.Equal(t, 1, first.ResultCount)
	assert.False(t, first.Failed())

	second := history.Calls[1].Arguments.Get(0).(schema.OperationRecord)
	assert.Equal(t, schema.SnapshotSource, second.Source)

	third := history.Calls[2].Arguments.Get(0).(schema.OperationRecord)
	assert.Equal(t, schema.GetOp, third.Operation)
	assert.Equal(t, "ghost", third.ContactID)
	require.True(t, third.Failed())
	assert.Contains(t, *third.Error, "could not fetch contact")
}

func TestHistoryFailureDoesNotFailOperation(t *testing.T) {
	history := &iocache.MockHistoryStore{}
	history.On("RecordOperation", mock.Anything).Return(int64(0), errors.New("table missing"))

	store, svc, _ := newTestStore(WithHistory(history))
	svc.On("List", mock.Anything).Return([]schema.Contact{luke()}, nil)

	_, err := store.Load(context.Background())
	assert.NoError(t, err)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	store, svc, _ := newTestStore(WithMetrics(m))
	svc.On("List", mock.Anything).Return([]schema.Contact{luke()}, nil).Once()
	svc.On("Get", mock.Anything, lukeID).Return(luke(), nil)
	svc.On("Delete", mock.Anything, "ghost").Return(errors.New("boom"))

	_, err := store.Load(context.Background())
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	require.NoError(t, err)
	_, err = store.GetOne(context.Background(), lukeID)
	require.NoError(t, err)
	require.Error(t, store.Delete(context.Background(), "ghost"))

	assert.Equal(t, uint64(1), m.SnapshotReads("miss"))
	assert.Equal(t, uint64(1), m.SnapshotReads("hit"))
	assert.Equal(t, uint64(1), m.RemoteCalls(schema.LoadOp, "ok"))
	assert.Equal(t, uint64(1), m.RemoteCalls(schema.GetOp, "ok"))
	assert.Equal(t, uint64(1), m.RemoteCalls(schema.DeleteOp, "error"))

	var sb strings.Builder
	m.WritePrometheus(&sb)
	assert.Contains(t, sb.String(), `contacts_remote_calls_total{op="load",outcome="ok"} 1`)
	assert.Contains(t, sb.String(), `contacts_operation_duration_seconds_bucket`)
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.Zero(t, m.RemoteCalls(schema.LoadOp, "ok"))
	assert.Zero(t, m.SnapshotReads("hit"))
	m.WritePrometheus(nil)
}
