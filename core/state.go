package core

import "github.com/huangsam/contacts/schema"

// State is an immutable copy of what the Store holds, handed to subscribers.
type State struct {
	Contacts   []schema.Contact
	CacheValid bool
	Loading    bool
	SelectedID string
	Source     schema.Source
}

// Find returns the contact with the given id from this state.
func (st State) Find(id string) (schema.Contact, bool) {
	for _, c := range st.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return schema.Contact{}, false
}

func (st State) clone() State {
	st.Contacts = schema.CloneContacts(st.Contacts)
	return st
}

// Subscribe registers fn to receive every state change. The returned
// function removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Contacts returns a copy of the in-memory contact list.
func (s *Store) Contacts() []schema.Contact {
	return s.State().Contacts
}

// Select marks id as the contact shown in the detail view. An empty id clears it.
func (s *Store) Select(id string) {
	s.update(func(st *State) { st.SelectedID = id })
}

// update applies fn under the lock and queues the resulting state. The
// caller already delivering drains the queue in order, so the last
// notification matches State(). Callbacks run outside the lock.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.state.Loading = s.inflight > 0
	if len(s.subscribers) > 0 {
		s.pending = append(s.pending, s.state.clone())
	}
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		subs := make([]func(State), 0, len(s.subscribers))
		for _, sub := range s.subscribers {
			subs = append(subs, sub)
		}
		s.mu.Unlock()

		for _, st := range batch {
			for _, sub := range subs {
				sub(st.clone())
			}
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// beginOp turns the loading flag on.
func (s *Store) beginOp() {
	s.update(func(*State) { s.inflight++ })
}

// endOp turns the loading flag off once no operation is in flight.
func (s *Store) endOp() {
	s.update(func(*State) { s.inflight-- })
}
