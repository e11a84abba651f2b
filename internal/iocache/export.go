package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/parquet"
)

// ExecuteHistoryExport writes the whole operation journal to a Parquet file.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string, out io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history is disabled. Set --history-backend to export operations")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalOperations == 0 {
		return errors.New("no operation history found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total operations: %d\n", status.TotalOperations)

	records, err := store.GetAllOperations()
	if err != nil {
		return fmt.Errorf("failed to retrieve operations: %w", err)
	}

	rows := parquet.ConvertOperationRecords(records)
	if err := parquet.WriteOperationsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write operations: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d operations to: %s\n", len(rows), outputFile)
	return nil
}
