// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/parquet"
	"github.com/huangsam/contacts/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteContacts prints the contact list using the configured output format.
func (ow *OutWriter) WriteContacts(contacts []schema.Contact, source schema.Source, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, contacts)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContactsCSV(w, contacts)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteContactsParquet(parquet.ConvertContacts(contacts), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		notifySaved("Wrote parquet", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContactsTable(w, contacts, source, cfg, duration)
		}, "Wrote table")
	}
}

// WriteContact prints one contact using the configured output format.
// Parquet falls back to a single-row file.
func (ow *OutWriter) WriteContact(contact schema.Contact, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, contact)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContactsCSV(w, []schema.Contact{contact})
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteContactsParquet(parquet.ConvertContacts([]schema.Contact{contact}), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		notifySaved("Wrote parquet", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContactDetail(w, contact, cfg)
		}, "Wrote table")
	}
}

// WriteSuccess prints a confirmation line for a finished mutation.
func (ow *OutWriter) WriteSuccess(w io.Writer, msg string, cfg *contract.Config) error {
	return writeMessage(w, contract.SuccessColor, msg, cfg.UseColors)
}
