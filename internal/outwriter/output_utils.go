package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/huangsam/contacts/internal/contract"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		notifySaved(successMsg, outputFile)
	}
	return nil
}

func notifySaved(successMsg, outputFile string) {
	_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	return writeRows(csvWriter)
}

// writeMessage prints msg on its own line, colored when colors are enabled.
func writeMessage(w io.Writer, c *color.Color, msg string, useColors bool) error {
	if useColors {
		_, err := c.Fprintln(w, msg)
		return err
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}
