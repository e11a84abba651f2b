package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/contacts/schema"
)

// Default values for configuration.
const (
	DefaultTimeout  = 0 // no deadline, like the reference client
	MaxTimeout      = 10 * time.Minute
	DefaultLogLevel = "warn"
	DefaultWidth    = 0
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for contacts.
// This struct remains the "final, validated" config.
type Config struct {
	BaseURL string
	Timeout time.Duration // Zero means operations may wait forever

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheKey       string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel  string
	LogFormat string
	LogFile   string

	Metrics bool // Dump Prometheus metrics to stderr on exit
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	BaseURL          string `mapstructure:"base-url"`
	Timeout          string `mapstructure:"timeout"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	CacheKey         string `mapstructure:"cache-key"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	LogFormat        string `mapstructure:"log-format"`
	LogFile          string `mapstructure:"log-file"`
	Metrics          bool   `mapstructure:"metrics"`
}

// ProcessAndValidate validates the raw input and populates cfg from it.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processBaseURL(cfg, input); err != nil {
		return err
	}
	if err := processTimeout(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the networked backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all fields that need no lookups.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.LogFile = input.LogFile
	cfg.Metrics = input.Metrics

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json or parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Width < 0 {
		return fmt.Errorf("width must be zero (auto-detect) or positive")
	}
	cfg.Width = input.Width

	cfg.UseColors = true
	if input.Color != "" {
		useColors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color value '%s': %w", input.Color, err)
		}
		cfg.UseColors = useColors
	}

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn or error", input.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be text or json", input.LogFormat)
	}

	cfg.CacheKey = strings.TrimSpace(input.CacheKey)
	if cfg.CacheKey == "" {
		cfg.CacheKey = schema.DefaultSnapshotKey
	}

	return nil
}

// processBaseURL resolves the remote base URL and strips any trailing slash.
func processBaseURL(cfg *Config, input *ConfigRawInput) error {
	raw := strings.TrimSpace(input.BaseURL)
	if raw == "" {
		raw = schema.DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base url '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must use http or https, got '%s'", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base url must include a host, got '%s'", raw)
	}
	cfg.BaseURL = strings.TrimRight(u.String(), "/")
	return nil
}

// processTimeout parses the optional per-command timeout.
func processTimeout(cfg *Config, input *ConfigRawInput) error {
	if strings.TrimSpace(input.Timeout) == "" || input.Timeout == "0" {
		cfg.Timeout = DefaultTimeout
		return nil
	}
	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
	}
	if timeout < 0 || timeout > MaxTimeout {
		return fmt.Errorf("timeout must be between 0 and %s", MaxTimeout)
	}
	cfg.Timeout = timeout
	return nil
}

// validateBackendConfigs validates snapshot and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Snapshot Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, memory or none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql or none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profile.Prefix = strings.TrimSpace(profilePrefix)
	profile.Enabled = profile.Prefix != ""
	return nil
}
