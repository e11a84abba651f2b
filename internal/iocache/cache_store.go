package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// SnapshotStoreImpl keeps contact snapshots in a SQL table keyed by slot name.
type SnapshotStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore initializes and returns a SnapshotStore for the given backend.
// Redis and memory backends are served by their own implementations.
func NewSnapshotStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	switch backend {
	case schema.RedisBackend:
		return NewRedisSnapshotStore(connStr)
	case schema.MemoryBackend:
		return NewMemorySnapshotStore(), nil
	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &SnapshotStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, redis, memory or none", backend)
	}

	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	db, err := openSQL(backend, connStr, GetDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SnapshotStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(255) PRIMARY KEY,
				cache_value LONGBLOB NOT NULL,
				cache_version INT NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves a snapshot by slot key. An empty slot yields contract.ErrSnapshotMissing.
func (ss *SnapshotStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, 0, 0, contract.ErrSnapshotMissing
	}

	var value []byte
	var version int
	var ts int64

	query := fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s WHERE cache_key = %s`,
		quoteTableName(ss.tableName, ss.backend), placeholder(ss.backend, 1))
	if err := ss.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, 0, contract.ErrSnapshotMissing
		}
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces the snapshot held in a slot.
func (ss *SnapshotStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}
	_, err := ss.db.Exec(ss.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// Delete empties a slot. Deleting an empty slot is not an error.
func (ss *SnapshotStoreImpl) Delete(key string) error {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE cache_key = %s`,
		quoteTableName(ss.tableName, ss.backend), placeholder(ss.backend, 1))
	_, err := ss.db.Exec(query, key)
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ss *SnapshotStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ss.tableName, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Close closes the underlying DB connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}

	if ss.backend == schema.NoneBackend || ss.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ss.tableName, ss.backend)

	row := ss.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row = ss.db.QueryRow(fmt.Sprintf("SELECT MAX(cache_timestamp), MIN(cache_timestamp) FROM %s", quotedTableName))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	status.TableSizeBytes = ss.estimateTableSize(status.TotalEntries)
	return status, nil
}

// estimateTableSize asks the backend for the table footprint, falling back to
// a rough per-row estimate when the catalog query is unavailable.
func (ss *SnapshotStoreImpl) estimateTableSize(totalEntries int) int64 {
	fallback := int64(totalEntries) * 1000
	var size int64

	switch ss.backend {
	case schema.SQLiteBackend:
		row := ss.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		row := ss.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, ss.tableName)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		row := ss.db.QueryRow("SELECT pg_total_relation_size($1)", ss.tableName)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	default:
		return fallback
	}
}
