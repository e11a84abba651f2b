package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/contacts/core"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/iocache"
	"github.com/huangsam/contacts/internal/logger"
	"github.com/huangsam/contacts/internal/remote"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// store is the contact store built by sharedSetup.
var store *core.Store

// storeMetrics is non-nil when --metrics is set.
var storeMetrics *core.Metrics

// log is the structured logger built by sharedSetup.
var log = logger.Discard()

// startProfiling starts CPU and memory profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	// Memory profiling will be captured at the end
	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Browse and edit a remote contact list with a local snapshot cache.",
	Long: `Contacts keeps a local snapshot of a remote contact collection.

Listing is served from the snapshot when one exists, so repeated runs make no
network calls. Creating and updating a contact refetches the whole list; deleting
one filters it out locally.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig sets config file lookup and ENV variables.
func initConfig() {
	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("CONTACTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("base-url", schema.DefaultBaseURL)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("cache-key", schema.DefaultSnapshotKey)
	viper.SetDefault("history-backend", "")
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
}

// setConfigFile points viper at --config or the default .contacts.yaml lookup.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".contacts") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// sharedSetup unmarshals config, runs validation and builds the contact store.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	profilePrefix := viper.GetString("profile")
	if err := contract.ProcessProfilingConfig(profile, profilePrefix); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if profile.Enabled {
		if err := startProfiling(); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	log = logger.New(&logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Format: cfg.LogFormat})

	// 4. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	// 5. Wire the store over the remote client
	store = newStore(iocache.Manager, log)
	return nil
}

// newStore builds the contact store from the validated config.
func newStore(mgr contract.CacheManager, l *slog.Logger) *core.Store {
	client := remote.New(cfg.BaseURL,
		remote.WithLogger(l),
		remote.WithUserAgent(remote.DefaultUserAgent+"/"+version),
	)

	opts := []core.Option{
		core.WithLogger(l),
		core.WithSnapshotKey(cfg.CacheKey),
	}
	if history := mgr.GetHistoryStore(); history != nil {
		opts = append(opts, core.WithHistory(history))
	}
	if cfg.Metrics {
		storeMetrics = core.NewMetrics()
		opts = append(opts, core.WithMetrics(storeMetrics))
	}
	return core.NewStore(client, mgr.GetSnapshotStore(), opts...)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigFile()

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// opContext applies the configured per-command timeout, if any.
func opContext() (context.Context, context.CancelFunc) {
	if cfg.Timeout > 0 {
		return context.WithTimeout(rootCtx, cfg.Timeout)
	}
	return context.WithCancel(rootCtx)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}

// DumpMetrics writes the collected metrics to stderr when --metrics is set.
func DumpMetrics() {
	if storeMetrics == nil {
		return
	}
	storeMetrics.WritePrometheus(os.Stderr)
}
