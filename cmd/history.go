package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/iocache"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig reads and validates the journal backend settings.
func historyBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("history-db-connect")

	if _, ok := schema.ValidHistoryBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for journal operations.
func historySetup() error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	// No snapshot store for history commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads configuration for migrations. It does NOT open the
// store or create tables, so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on operation journal management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the operation journal and its exports",
	Long: `Manage the optional journal of contact store operations.

When a history backend is set, every load, get, create, update, delete and
invalidate is recorded with its duration, where the data came from, how many
contacts resulted and any error.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show journal statistics
  export  - Export the journal to Parquet
  clear   - Remove every journal entry
  migrate - Run schema migrations`,
}

// historyClearCmd clears the journal.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every journal entry",
	Long: `Delete the operation journal from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the journal and migration tables`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearHistory(cfg.HistoryBackend, iocache.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows journal status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display journal statistics and connection details",
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports the journal to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal to Parquet for analytics",
	Long: `Write every journal entry to a Parquet file.

Examples:
  contacts history export --output-file operations.parquet`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetHistoryStore(), cfg.OutputFile, os.Stderr); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the journal.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the operation journal.

Examples:
  # Migrate to the latest version
  contacts history migrate --history-backend sqlite

  # Roll back to the initial state
  contacts history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
