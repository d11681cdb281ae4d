package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Local storage
	Store     string
	StorePath string

	// Remote document store
	RemoteEnabled bool
	RemoteDSN     string
	RemoteTimeout time.Duration
	RemoteRetries int
	CacheTTL      time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// explicitLevel is set when --log-level was given on the command line.
	explicitLevel bool
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (COURSEMAP_*, LOG_*)
// 3. .env files
// 4. Config file (~/.coursemap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig("")
}

// loadConfig reads configuration, using file instead of the search path when set.
func loadConfig(file string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("coursemap")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if file == "" {
		file = v.GetString("config")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+file, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".coursemap")
		// A missing config file is not an error.
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Store:     strings.ToLower(v.GetString("store")),
		StorePath: v.GetString("store_path"),

		RemoteEnabled: v.GetBool("remote_enabled"),
		RemoteDSN:     v.GetString("remote_dsn"),
		RemoteTimeout: v.GetDuration("remote_timeout"),
		RemoteRetries: v.GetInt("remote_retries"),
		CacheTTL:      v.GetDuration("cache_ttl"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", v.GetString("log_level")),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreMemory)
	v.SetDefault("store_path", "coursemap.db")
	v.SetDefault("remote_enabled", false)
	v.SetDefault("remote_timeout", constants.RemoteTimeout)
	v.SetDefault("remote_retries", constants.MaxRetries)
	v.SetDefault("cache_ttl", constants.CacheTTL)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks values that would otherwise fail later with a less
// helpful message.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return errors.NewConfigError("store", "unknown store "+c.Store+", use memory or sqlite", nil)
	}
	if c.Store == StoreSQLite && c.StorePath == "" {
		return errors.NewConfigError("store", "store_path is required for the sqlite store", nil)
	}
	if c.RemoteEnabled && c.RemoteDSN == "" {
		return errors.NewConfigError("remote", "remote_dsn is required when remote_enabled is set", nil)
	}
	if c.RemoteRetries < 1 {
		return errors.NewConfigError("remote", "remote_retries must be at least 1", nil)
	}
	if c.CacheTTL < 0 {
		return errors.NewConfigError("cache", "cache_ttl cannot be negative", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
		c.explicitLevel = true
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first because godotenv never overrides a variable
// that is already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
