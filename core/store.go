package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/contacts/schema"
)

// Load makes the contact list available. A decodable snapshot is used as is
// with no remote call; otherwise the full collection is fetched and persisted.
func (s *Store) Load(ctx context.Context) ([]schema.Contact, error) {
	start := s.now()
	s.beginOp()
	defer s.endOp()

	if contacts, ok := s.readSnapshot(); ok {
		s.metrics.snapshotRead(true)
		s.replaceContacts(contacts, schema.SnapshotSource, true)
		s.finish(schema.LoadOp, "", start, schema.SnapshotSource, len(contacts), nil)
		return schema.CloneContacts(contacts), nil
	}
	s.metrics.snapshotRead(false)

	// Concurrent misses share one list fetch
	v, err, _ := s.loads.Do(s.key, func() (any, error) {
		return s.fetchAndPersist(ctx, schema.LoadOp)
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoad, err)
		s.logger.Error("load failed", "error", err)
		s.finish(schema.LoadOp, "", start, schema.RemoteSource, 0, err)
		return nil, err
	}

	contacts := v.([]schema.Contact)
	s.finish(schema.LoadOp, "", start, schema.RemoteSource, len(contacts), nil)
	return schema.CloneContacts(contacts), nil
}

// GetOne fetches a single contact straight from the remote. It never reads
// or writes the snapshot or the in-memory list.
func (s *Store) GetOne(ctx context.Context, id string) (schema.Contact, error) {
	start := s.now()
	s.beginOp()
	defer s.endOp()

	if id == "" {
		err := fmt.Errorf("%w: empty id", ErrNotFound)
		s.finish(schema.GetOp, id, start, schema.RemoteSource, 0, err)
		return schema.Contact{}, err
	}

	contact, err := s.remote.Get(ctx, id)
	s.metrics.remoteCall(schema.GetOp, err)
	if err != nil {
		err = wrapRemote(schema.GetOp, err)
		s.logger.Warn("get contact failed", "id", id, "error", err)
		s.finish(schema.GetOp, id, start, schema.RemoteSource, 0, err)
		return schema.Contact{}, err
	}

	s.finish(schema.GetOp, id, start, schema.RemoteSource, 1, nil)
	return contact, nil
}

// Create sends the draft to the remote, then refetches the whole collection.
// When only the refetch fails, the created contact is returned with the error.
func (s *Store) Create(ctx context.Context, draft schema.ContactDraft) (schema.Contact, error) {
	start := s.now()
	s.beginOp()
	defer s.endOp()

	if err := draft.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", ErrCreate, err)
		s.finish(schema.CreateOp, "", start, schema.NoSource, 0, err)
		return schema.Contact{}, err
	}

	created, err := s.remote.Create(ctx, draft)
	s.metrics.remoteCall(schema.CreateOp, err)
	if err != nil {
		err = wrapRemote(schema.CreateOp, err)
		s.logger.Error("create contact failed", "error", err)
		s.finish(schema.CreateOp, "", start, schema.RemoteSource, 0, err)
		return schema.Contact{}, err
	}

	count, err := s.resync(ctx, schema.CreateOp, created.ID)
	s.finish(schema.CreateOp, created.ID, start, schema.RemoteSource, count, err)
	return created, err
}

// Update replaces the contact on the remote, then refetches the whole collection.
// When only the refetch fails, the updated contact is returned with the error.
func (s *Store) Update(ctx context.Context, id string, draft schema.ContactDraft) (schema.Contact, error) {
	start := s.now()
	s.beginOp()
	defer s.endOp()

	if err := draft.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", ErrUpdate, err)
		s.finish(schema.UpdateOp, id, start, schema.NoSource, 0, err)
		return schema.Contact{}, err
	}

	updated, err := s.remote.Update(ctx, id, draft)
	s.metrics.remoteCall(schema.UpdateOp, err)
	if err != nil {
		err = wrapRemote(schema.UpdateOp, err)
		s.logger.Error("update contact failed", "id", id, "error", err)
		s.finish(schema.UpdateOp, id, start, schema.RemoteSource, 0, err)
		return schema.Contact{}, err
	}

	count, err := s.resync(ctx, schema.UpdateOp, id)
	s.finish(schema.UpdateOp, id, start, schema.RemoteSource, count, err)
	return updated, err
}

// Delete removes the contact on the remote, then drops it from the local list
// and snapshot without refetching.
func (s *Store) Delete(ctx context.Context, id string) error {
	start := s.now()
	s.beginOp()
	defer s.endOp()

	err := s.remote.Delete(ctx, id)
	s.metrics.remoteCall(schema.DeleteOp, err)
	if err != nil {
		err = wrapRemote(schema.DeleteOp, err)
		s.logger.Error("delete contact failed", "id", id, "error", err)
		s.finish(schema.DeleteOp, id, start, schema.RemoteSource, 0, err)
		return err
	}

	count, err := s.resync(ctx, schema.DeleteOp, id)
	s.finish(schema.DeleteOp, id, start, schema.NoSource, count, err)
	return err
}

// Invalidate empties the snapshot slot so the next Load refetches.
// The in-memory list is kept until then.
func (s *Store) Invalidate(_ context.Context) error {
	start := s.now()
	var err error
	if s.snapshots != nil {
		if delErr := s.snapshots.Delete(s.key); delErr != nil {
			err = fmt.Errorf("invalidate snapshot %s: %w", s.key, delErr)
			s.logger.Warn("invalidate failed", "key", s.key, "error", delErr)
		}
	}
	if err == nil {
		s.update(func(st *State) { st.CacheValid = false })
	}
	s.finish(schema.InvalidateOp, "", start, schema.NoSource, 0, err)
	return err
}

// Refresh invalidates the snapshot and loads the collection from the remote.
func (s *Store) Refresh(ctx context.Context) ([]schema.Contact, error) {
	if err := s.Invalidate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return s.Load(ctx)
}

// resync brings local state back in line after a successful mutation, using
// the strategy for op, and returns the resulting list size.
func (s *Store) resync(ctx context.Context, op schema.Operation, id string) (int, error) {
	switch schema.StrategyFor(op) {
	case schema.LocalFilter:
		return s.filterOut(id), nil
	default:
		contacts, err := s.fetchAndPersist(ctx, op)
		if err != nil {
			err = fmt.Errorf("%w: refetch after %s: %w", kindFor(op), op, err)
			s.logger.Error("refetch failed", "op", op, "id", id, "error", err)
			return 0, err
		}
		return len(contacts), nil
	}
}

// fetchAndPersist lists the remote collection, replaces the in-memory list
// and writes the snapshot. On failure state is untouched.
func (s *Store) fetchAndPersist(ctx context.Context, op schema.Operation) ([]schema.Contact, error) {
	contacts, err := s.remote.List(ctx)
	s.metrics.remoteCall(schema.LoadOp, err)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []schema.Contact{}
	}
	persisted := s.writeSnapshot(contacts)
	s.replaceContacts(contacts, schema.RemoteSource, persisted)
	s.logger.Debug("contacts fetched", "op", op, "count", len(contacts), "persisted", persisted)
	return contacts, nil
}

// filterOut removes id from the list and snapshot. The persisted snapshot
// is only rewritten when one exists: after an Invalidate, or before
// anything was loaded, an absent snapshot stays absent so the next Load
// still refetches.
func (s *Store) filterOut(id string) int {
	s.mu.Lock()
	base, populated := schema.CloneContacts(s.state.Contacts), s.populated
	s.mu.Unlock()

	snap, hasSnapshot := s.readSnapshot()
	switch {
	case !populated && !hasSnapshot:
		s.update(func(st *State) {
			if st.SelectedID == id {
				st.SelectedID = ""
			}
		})
		return 0
	case !populated:
		base = snap
	}

	filtered := make([]schema.Contact, 0, len(base))
	for _, c := range base {
		if c.ID != id {
			filtered = append(filtered, c)
		}
	}

	persisted := false
	if hasSnapshot {
		persisted = s.writeSnapshot(filtered)
	}
	s.update(func(st *State) {
		st.Contacts = filtered
		st.CacheValid = persisted
		if st.SelectedID == id {
			st.SelectedID = ""
		}
		if st.Source == schema.NoSource {
			st.Source = schema.SnapshotSource
		}
		s.populated = true
	})
	return len(filtered)
}

func (s *Store) replaceContacts(contacts []schema.Contact, source schema.Source, cacheValid bool) {
	cloned := schema.CloneContacts(contacts)
	s.update(func(st *State) {
		st.Contacts = cloned
		st.Source = source
		st.CacheValid = cacheValid
		s.populated = true
	})
}

// finish records metrics and the journal entry for one operation.
func (s *Store) finish(op schema.Operation, id string, start time.Time, source schema.Source, count int, err error) {
	s.metrics.observe(op, start)
	if s.history == nil {
		return
	}

	record := schema.OperationRecord{
		Operation:   op,
		ContactID:   id,
		StartTime:   start,
		DurationMs:  s.now().Sub(start).Milliseconds(),
		Source:      source,
		ResultCount: count,
	}
	if err != nil {
		msg := err.Error()
		record.Error = &msg
	}
	if _, recErr := s.history.RecordOperation(record); recErr != nil {
		s.logger.Debug("history record failed", "op", op, "error", recErr)
	}
}

// IsNotFound reports whether err means the remote has no such contact.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
