package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// snapshotTable is the name of the table holding contact snapshots.
const snapshotTable = "contacts_snapshots"

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// InitStores initializes the global manager with separate snapshot and history stores.
// cacheBackend and cacheConnStr can be empty to disable snapshot initialization.
// historyBackend and historyConnStr can be empty to disable the operation journal.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var snapshotStore contract.SnapshotStore
		if cacheBackend != "" {
			snapshotStore, err = NewSnapshotStore(snapshotTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize snapshot store: %w", err)
				return
			}
		}

		var historyStore contract.HistoryStore
		if historyBackend != "" {
			historyStore, err = NewHistoryStore(historyBackend, historyConnStr)
			if err != nil {
				if snapshotStore != nil {
					_ = snapshotStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize history store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.snapshot = snapshotStore
		Manager.history = historyStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.snapshot != nil {
			_ = Manager.snapshot.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearCache removes every persisted snapshot for the specified backend.
// For SQLite, it deletes the database file named by connStr, or dbFilePath when connStr is empty.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For Redis, it deletes every snapshot slot.
// For memory and none, there is nothing on disk to clear.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(sqliteFilePath(connStr, dbFilePath))

	case schema.MySQLBackend:
		return clearSQLTable(backend, connStr, snapshotTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable(backend, connStr, snapshotTable)

	case schema.RedisBackend:
		store, err := NewRedisSnapshotStore(connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.Clear()

	case schema.MemoryBackend, schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory clears the operation journal for the specified backend.
// For SQLite, it deletes the database file named by connStr, or dbFilePath when connStr is empty.
// For SQL backends (MySQL/PostgreSQL), it drops the journal table.
// For NoneBackend, it does nothing.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(sqliteFilePath(connStr, dbFilePath))

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if err := clearSQLTable(backend, connStr, operationsTable); err != nil {
			return err
		}
		// Reset the migration bookkeeping so the next migrate starts over
		return clearSQLTable(backend, connStr, "schema_migrations")

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	// Remove the file; ignore if it doesn't exist
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
