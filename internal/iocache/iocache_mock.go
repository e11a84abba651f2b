package iocache

import (
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetSnapshotStore implements the CacheManager interface.
func (m *MockCacheManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// GetHistoryStore implements the CacheManager interface.
func (m *MockCacheManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// Get implements the SnapshotStore interface.
func (m *MockSnapshotStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the SnapshotStore interface.
func (m *MockSnapshotStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Delete implements the SnapshotStore interface.
func (m *MockSnapshotStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// RecordOperation implements the HistoryStore interface.
func (m *MockHistoryStore) RecordOperation(record schema.OperationRecord) (int64, error) {
	args := m.Called(record)
	return args.Get(0).(int64), args.Error(1)
}

// GetAllOperations implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllOperations() ([]schema.OperationRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.OperationRecord)
	return records, args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
