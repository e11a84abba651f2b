package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	SuccessColor  = color.New(color.FgGreen, color.Bold) // SuccessColor marks completed mutations.
	SnapshotColor = color.New(color.FgCyan)              // SnapshotColor marks data served from the local snapshot.
	RemoteColor   = color.New(color.FgYellow)            // RemoteColor marks data fetched from the remote service.
	ErrorColor    = color.New(color.FgRed, color.Bold)   // ErrorColor marks failures.
)

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".contacts_cache.db"
	}
	return filepath.Join(homeDir, ".contacts_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".contacts_history.db"
	}
	return filepath.Join(homeDir, ".contacts_history.db")
}

// TruncateText shortens s to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one rune of content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
