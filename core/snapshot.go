package core

import (
	"encoding/json"
	"errors"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// currentSnapshotVersion defines the version of the snapshot encoding.
const currentSnapshotVersion = 1

// readSnapshot returns the persisted contact list. There is no TTL: a slot
// written at any time in the past is a hit as long as it decodes.
func (s *Store) readSnapshot() ([]schema.Contact, bool) {
	if s.snapshots == nil {
		return nil, false
	}

	data, version, _, err := s.snapshots.Get(s.key)
	if err != nil {
		if !errors.Is(err, contract.ErrSnapshotMissing) {
			s.logger.Warn("snapshot read failed", "key", s.key, "error", err)
		}
		return nil, false
	}

	if version != currentSnapshotVersion {
		s.logger.Info("snapshot version mismatch, ignoring", "key", s.key, "version", version)
		return nil, false
	}

	var contacts []schema.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		s.logger.Warn("malformed snapshot, ignoring", "key", s.key, "error", err)
		return nil, false
	}
	if contacts == nil {
		// A JSON null holds no list
		s.logger.Warn("malformed snapshot, ignoring", "key", s.key, "error", "null contact list")
		return nil, false
	}
	return contacts, true
}

// writeSnapshot replaces the persisted slot with contacts and reports whether it stuck.
func (s *Store) writeSnapshot(contacts []schema.Contact) bool {
	if s.snapshots == nil {
		return false
	}

	data, err := json.Marshal(schema.CloneContacts(contacts))
	if err != nil {
		s.logger.Warn("snapshot encode failed", "key", s.key, "error", err)
		return false
	}
	if err := s.snapshots.Set(s.key, data, currentSnapshotVersion, s.now().Unix()); err != nil {
		s.logger.Warn("snapshot write failed", "key", s.key, "error", err)
		return false
	}
	return true
}
