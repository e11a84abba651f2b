// Package cmd defines the command-line interface for contacts.
package cmd

import (
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("base-url", schema.DefaultBaseURL, "Base URL of the remote contact service")
	rootCmd.PersistentFlags().String("timeout", "", "Deadline for each command, e.g. 30s (empty = wait forever)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or redis or memory or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for the snapshot backend (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("cache-key", schema.DefaultSnapshotKey, "Slot name the contact list is persisted under")
	rootCmd.PersistentFlags().String("history-backend", "", "Operation journal backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Connection string for the operation journal (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "Append logs to this file instead of stderr")
	rootCmd.PersistentFlags().Bool("metrics", false, "Write Prometheus metrics to stderr on exit")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of listCmd to Viper
	listCmd.Flags().Bool("refresh", false, "Drop the snapshot and reload from the remote service")
	if err := viper.BindPFlags(listCmd.Flags()); err != nil {
		contract.LogFatal("Error binding list flags", err)
	}

	// Contact fields are read from the command flags directly since create and
	// update must tell an omitted flag from an empty one
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().String("first-name", "", "First name")
		c.Flags().String("last-name", "", "Last name")
		c.Flags().Int("age", 0, "Age in years")
		c.Flags().String("photo", "", "Photo URL (required on create)")
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
