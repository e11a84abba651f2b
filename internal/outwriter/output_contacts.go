package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeContactsTable generates and writes the human-readable contact table.
func writeContactsTable(w io.Writer, contacts []schema.Contact, source schema.Source, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "First Name", "Last Name", "Age", "Photo"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignLeft}
	})

	photoWidth := GetMaxPhotoWidth(cfg)
	var data [][]string
	for _, c := range contacts {
		data = append(data, []string{
			c.ID,
			c.FirstName,
			c.LastName,
			strconv.Itoa(c.Age),
			contract.TruncateText(c.Photo, photoWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d contacts from %s\n", len(contacts), sourceLabel(source, cfg.UseColors)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Loaded in %v. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.CacheBackend)
	return err
}

// writeContactDetail renders one contact as a two-column field/value table.
func writeContactDetail(w io.Writer, c schema.Contact, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})

	rows := [][]string{
		{"ID", c.ID},
		{"Name", c.FullName()},
		{"Age", strconv.Itoa(c.Age)},
		{"Photo", contract.TruncateText(c.Photo, GetMaxPhotoWidth(cfg)+40)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// writeContactsCSV writes the contacts in CSV format.
func writeContactsCSV(w io.Writer, contacts []schema.Contact) error {
	header := []string{"id", "first_name", "last_name", "age", "photo"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range contacts {
			rec := []string{c.ID, c.FirstName, c.LastName, strconv.Itoa(c.Age), c.Photo}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// sourceLabel names where the list came from, colored like the CLI messages.
func sourceLabel(source schema.Source, useColors bool) string {
	label := string(source)
	if label == "" {
		label = "memory"
	}
	if !useColors {
		return label
	}
	switch source {
	case schema.SnapshotSource:
		return contract.SnapshotColor.Sprint(label)
	case schema.RemoteSource:
		return contract.RemoteColor.Sprint(label)
	default:
		return label
	}
}
