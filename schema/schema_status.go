package schema

import "time"

// CacheStatus represents the status of the snapshot store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalOperations int              `json:"total_operations"`
	FailedCount     int              `json:"failed_count"`
	LastOperationID int64            `json:"last_operation_id"`
	LastOperation   time.Time        `json:"last_operation"`
	OldestOperation time.Time        `json:"oldest_operation"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}
