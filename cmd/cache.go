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

// cacheSetup loads minimal configuration needed for snapshot operations.
// This is used by commands that need snapshot access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No history tracking for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on snapshot management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by the contact commands. This avoids building the
// remote client for simple snapshot operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local contact snapshot",
	Long: `Manage the snapshot that lets contacts list without network calls.

The snapshot never expires on its own. It is replaced on every refetch and
filtered on every delete.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, memory, or none

Subcommands:
  status - Show snapshot statistics and connection info
  clear  - Remove every persisted snapshot

Examples:
  # Check snapshot status
  contacts cache status

  # Force the next list to refetch
  contacts cache clear`,
}

// cacheClearCmd clears the snapshot store.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every persisted snapshot",
	Long: `Delete every persisted snapshot from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the snapshot table
For Redis: Deletes every snapshot key

Examples:
  # Clear the Redis snapshot (set connection string via env variable)
  CONTACTS_CACHE_BACKEND=redis CONTACTS_CACHE_DB_CONNECT="redis://localhost:6379/0" contacts cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the handle before removing the file underneath it
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, iocache.GetDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows snapshot store status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show the backend, entry count, timestamps and size of the snapshot store.

Examples:
  contacts cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		snapshots := iocache.Manager.GetSnapshotStore()
		if snapshots == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("no snapshot store for backend %s", cfg.CacheBackend))
		}
		status, err := snapshots.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
