package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// operationsTable holds one row per journaled contact store operation.
const operationsTable = "contacts_operations"

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}

	db, err := openSQL(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createOperationsTable(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createOperationsTable applies the first embedded migration, which is idempotent.
func createOperationsTable(db *sql.DB, backend schema.DatabaseBackend) error {
	query, err := migrationsFS.ReadFile(fmt.Sprintf("migrations/%s/000001_create_operations.up.sql", backend))
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(query)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", operationsTable, err)
	}
	return nil
}

// RecordOperation appends one journal entry and returns its id.
func (hs *HistoryStoreImpl) RecordOperation(record schema.OperationRecord) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(operationsTable, hs.backend)
	args := []any{
		string(record.Operation),
		record.ContactID,
		formatTime(record.StartTime, hs.backend),
		record.DurationMs,
		string(record.Source),
		record.ResultCount,
		nullableString(record.Error),
	}

	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (operation, contact_id, start_time, duration_ms, source, result_count, error_message)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING operation_id`, quotedTableName)
		var id int64
		if err := hs.db.QueryRow(query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to record operation: %w", err)
		}
		return id, nil

	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (operation, contact_id, start_time, duration_ms, source, result_count, error_message)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
		result, err := hs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to record operation: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get operation id: %w", err)
		}
		return id, nil
	}
}

// GetAllOperations returns every journal entry ordered by id.
func (hs *HistoryStoreImpl) GetAllOperations() ([]schema.OperationRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT operation_id, operation, contact_id, start_time, duration_ms, source, result_count, error_message
		FROM %s ORDER BY operation_id`, quoteTableName(operationsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.OperationRecord
	for rows.Next() {
		var record schema.OperationRecord
		var operation, source string
		var errMsg sql.NullString

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			if err := rows.Scan(&record.OperationID, &operation, &record.ContactID, &startTimeStr,
				&record.DurationMs, &source, &record.ResultCount, &errMsg); err != nil {
				return nil, fmt.Errorf("failed to scan operation: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.OperationID, &operation, &record.ContactID, &record.StartTime,
				&record.DurationMs, &source, &record.ResultCount, &errMsg); err != nil {
				return nil, fmt.Errorf("failed to scan operation: %w", err)
			}
		}

		record.Operation = schema.Operation(operation)
		record.Source = schema.Source(source)
		if errMsg.Valid {
			msg := errMsg.String
			record.Error = &msg
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(operationsTable, hs.backend)

	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalOperations); err != nil {
		return status, fmt.Errorf("failed to get total operations: %w", err)
	}
	status.TableSizes[operationsTable] = int64(status.TotalOperations)

	if status.TotalOperations == 0 {
		return status, nil
	}

	row = hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE error_message IS NOT NULL", quotedTableName))
	if err := row.Scan(&status.FailedCount); err != nil {
		return status, fmt.Errorf("failed to get failed count: %w", err)
	}

	row = hs.db.QueryRow(fmt.Sprintf("SELECT MAX(operation_id) FROM %s", quotedTableName))
	if err := row.Scan(&status.LastOperationID); err != nil {
		return status, fmt.Errorf("failed to get last operation id: %w", err)
	}

	switch hs.backend {
	case schema.SQLiteBackend:
		var lastStr, oldestStr string
		row = hs.db.QueryRow(fmt.Sprintf("SELECT MAX(start_time), MIN(start_time) FROM %s", quotedTableName))
		if err := row.Scan(&lastStr, &oldestStr); err != nil {
			return status, fmt.Errorf("failed to get operation times: %w", err)
		}
		status.LastOperation, _ = time.Parse(time.RFC3339Nano, lastStr)
		status.OldestOperation, _ = time.Parse(time.RFC3339Nano, oldestStr)
	default:
		row = hs.db.QueryRow(fmt.Sprintf("SELECT MAX(start_time), MIN(start_time) FROM %s", quotedTableName))
		if err := row.Scan(&status.LastOperation, &status.OldestOperation); err != nil {
			return status, fmt.Errorf("failed to get operation times: %w", err)
		}
	}

	return status, nil
}

// Close closes the underlying DB connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
