package iocache

import (
	"sync"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

type memoryEntry struct {
	value     []byte
	version   int
	timestamp int64
}

// MemorySnapshotStore keeps snapshots in process memory. Nothing survives a restart.
type MemorySnapshotStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

var _ contract.SnapshotStore = &MemorySnapshotStore{} // Compile-time check

// NewMemorySnapshotStore returns an empty in-process snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{entries: make(map[string]memoryEntry)}
}

// Get retrieves a snapshot by slot key. An empty slot yields contract.ErrSnapshotMissing.
func (ms *MemorySnapshotStore) Get(key string) ([]byte, int, int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	entry, ok := ms.entries[key]
	if !ok {
		return nil, 0, 0, contract.ErrSnapshotMissing
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, entry.version, entry.timestamp, nil
}

// Set replaces the snapshot held in a slot.
func (ms *MemorySnapshotStore) Set(key string, value []byte, version int, timestamp int64) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[key] = memoryEntry{value: stored, version: version, timestamp: timestamp}
	return nil
}

// Delete empties a slot.
func (ms *MemorySnapshotStore) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
	return nil
}

// GetStatus returns status information about the in-memory slots.
func (ms *MemorySnapshotStore) GetStatus() (schema.CacheStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	status := schema.CacheStatus{
		Backend:      string(schema.MemoryBackend),
		Connected:    true,
		TotalEntries: len(ms.entries),
	}
	for _, entry := range ms.entries {
		entryTime := time.Unix(entry.timestamp, 0)
		if status.LastEntryTime.IsZero() || entryTime.After(status.LastEntryTime) {
			status.LastEntryTime = entryTime
		}
		if status.OldestEntryTime.IsZero() || entryTime.Before(status.OldestEntryTime) {
			status.OldestEntryTime = entryTime
		}
		status.TableSizeBytes += int64(len(entry.value))
	}
	return status, nil
}

// Close is a no-op.
func (ms *MemorySnapshotStore) Close() error {
	return nil
}
