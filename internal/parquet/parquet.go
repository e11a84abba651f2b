// Package parquet provides data structures and functions for exporting contacts
// and the operation journal to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/contacts/schema"
	"github.com/parquet-go/parquet-go"
)

// Contact is one row of a contact list export.
type Contact struct {
	// ID is the identifier assigned by the remote service
	ID string `parquet:"id,snappy"`

	FirstName string `parquet:"first_name,snappy"`
	LastName  string `parquet:"last_name,snappy"`
	Age       int32  `parquet:"age,snappy"`

	// Photo is the photo URL (nullable when the remote sent none)
	Photo *string `parquet:"photo,optional,snappy"`
}

// Operation represents a single journaled contact store operation.
// This struct maps to the contacts_operations database table.
type Operation struct {
	// OperationID is the unique identifier of the journal entry
	OperationID int64 `parquet:"operation_id,snappy"`

	// Operation is one of load, get, create, update, delete or invalidate
	Operation string `parquet:"operation,snappy"`

	// ContactID is the contact targeted by the operation (empty for list operations)
	ContactID string `parquet:"contact_id,snappy"`

	// StartTime is when the operation began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	DurationMs  int64  `parquet:"duration_ms,snappy"`
	Source      string `parquet:"source,snappy"`
	ResultCount int32  `parquet:"result_count,snappy"`

	// ErrorMessage holds the failure text (nullable for successful operations)
	ErrorMessage *string `parquet:"error_message,optional,snappy"`
}

// WriteContactsParquet writes a slice of Contact rows to a Parquet file.
func WriteContactsParquet(data []Contact, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteOperationsParquet writes a slice of Operation rows to a Parquet file.
func WriteOperationsParquet(data []Operation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet creates outputPath and writes rows with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertContacts converts schema contacts to Parquet rows.
func ConvertContacts(contacts []schema.Contact) []Contact {
	result := make([]Contact, len(contacts))
	for i, c := range contacts {
		result[i] = Contact{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Age:       int32(c.Age),
		}
		if c.Photo != "" {
			photo := c.Photo
			result[i].Photo = &photo
		}
	}
	return result
}

// ConvertOperationRecords converts journal records to Parquet rows.
func ConvertOperationRecords(records []schema.OperationRecord) []Operation {
	result := make([]Operation, len(records))
	for i, r := range records {
		result[i] = Operation{
			OperationID:  r.OperationID,
			Operation:    string(r.Operation),
			ContactID:    r.ContactID,
			StartTime:    r.StartTime,
			DurationMs:   r.DurationMs,
			Source:       string(r.Source),
			ResultCount:  int32(r.ResultCount),
			ErrorMessage: r.Error,
		}
	}
	return result
}
