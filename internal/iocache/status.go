package iocache

import (
	"fmt"
	"io"
	"sort"

	"github.com/huangsam/contacts/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus prints snapshot store status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintHistoryStatus prints history store status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Operations: %d\n", status.TotalOperations)
	if status.TotalOperations > 0 {
		_, _ = fmt.Fprintf(w, "Failed Operations: %d\n", status.FailedCount)
		_, _ = fmt.Fprintf(w, "Last Operation ID: %d\n", status.LastOperationID)
		_, _ = fmt.Fprintf(w, "Last Operation: %s\n", status.LastOperation.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Operation: %s\n", status.OldestOperation.Format(statusTimeLayout))
	}
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
