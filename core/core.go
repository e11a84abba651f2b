// Package core has the contact store: a cache-first view of the remote contact
// collection mirrored into a persisted snapshot.
package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/logger"
	"github.com/huangsam/contacts/schema"
	"golang.org/x/sync/singleflight"
)

// Store owns the in-memory contact list and the persisted snapshot, and
// mediates every read and write to the remote collection.
type Store struct {
	remote    contract.ContactService
	snapshots contract.SnapshotStore
	history   contract.HistoryStore
	key       string
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time

	loads singleflight.Group

	mu          sync.Mutex // Guards the fields below; never held across I/O
	state       State
	inflight    int
	populated   bool
	subscribers map[int]func(State)
	nextSubID   int
	pending     []State // Notifications not yet delivered, oldest first
	delivering  bool
}

// Option configures a Store.
type Option func(*Store)

// WithHistory journals every operation into h.
func WithHistory(h contract.HistoryStore) Option {
	return func(s *Store) { s.history = h }
}

// WithLogger sets the logger for failures and cache decisions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records remote calls and snapshot reads into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithSnapshotKey names the slot the contact list is persisted under.
func WithSnapshotKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the time source used for snapshot timestamps and the journal.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a Store over the remote service and the snapshot store.
// A nil snapshot store disables persistence.
func NewStore(remote contract.ContactService, snapshots contract.SnapshotStore, opts ...Option) *Store {
	s := &Store{
		remote:      remote,
		snapshots:   snapshots,
		key:         schema.DefaultSnapshotKey,
		logger:      logger.Discard(),
		now:         time.Now,
		state:       State{Contacts: []schema.Contact{}},
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.key == "" {
		s.key = schema.DefaultSnapshotKey
	}
	return s
}
