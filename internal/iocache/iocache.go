// Package iocache persists contact snapshots and the operation journal.
package iocache

import (
	"sync"

	"github.com/huangsam/contacts/internal/contract"
)

// StoreManager manages the snapshot and history store instances.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshot     contract.SnapshotStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetSnapshotStore returns the snapshot store.
func (mgr *StoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshot
}

// GetHistoryStore returns the history store, which may be nil when history is disabled.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
