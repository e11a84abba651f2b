// Package contract provides interfaces and shared utilities for the internal architecture of contacts.
package contract

import (
	"context"
	"errors"

	"github.com/huangsam/contacts/schema"
)

// ErrNotFound is returned by a ContactService when the remote has no contact with the requested id.
var ErrNotFound = errors.New("remote: contact not found")

// ErrSnapshotMissing is returned by a SnapshotStore when the requested slot holds nothing.
var ErrSnapshotMissing = errors.New("snapshot: slot is empty")

// ContactService defines the remote contact collection.
// This allows the contact store to be tested without a real HTTP server.
type ContactService interface {
	// List returns the full collection in server order.
	List(ctx context.Context) ([]schema.Contact, error)

	// Get returns one contact by id, or ErrNotFound.
	Get(ctx context.Context, id string) (schema.Contact, error)

	// Create sends a draft and returns the contact with its assigned id.
	Create(ctx context.Context, draft schema.ContactDraft) (schema.Contact, error)

	// Update replaces the contact with the given id, or returns ErrNotFound.
	Update(ctx context.Context, id string, draft schema.ContactDraft) (schema.Contact, error)

	// Delete removes the contact with the given id.
	Delete(ctx context.Context, id string) error
}

// CacheManager defines the interface for managing the persistence stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSnapshotStore() SnapshotStore
	GetHistoryStore() HistoryStore
}

// SnapshotStore defines the key/value capability holding persisted snapshots.
// This allows mocking the store for testing.
type SnapshotStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for journaling contact store operations.
type HistoryStore interface {
	// RecordOperation appends one journal entry and returns its id
	RecordOperation(record schema.OperationRecord) (int64, error)

	// GetAllOperations returns every journal entry ordered by id
	GetAllOperations() ([]schema.OperationRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
