// Package app provides the application context and dependency management
// for the coursemap CLI. It centralizes configuration, logging and the
// lifecycle of the data client.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/internal/docstore/postgres"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/agentstation/coursemap/pkg/kv/sqlite"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the coursemap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client coursemap.Client
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment that can
// be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format, or one detected from
// the terminal when none was requested.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Client returns the data client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (coursemap.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := a.newClient(context.Background())
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// newClient opens the configured stores and builds a client over them.
func (a *App) newClient(ctx context.Context) (coursemap.Client, error) {
	opts := []coursemap.Option{
		coursemap.WithLogger(a.logger),
		coursemap.WithCacheTTL(a.config.CacheTTL),
		coursemap.WithRemoteRetry(a.config.RemoteRetries, constants.RetryBackoff, a.config.RemoteTimeout),
	}

	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	switch a.config.Store {
	case StoreSQLite:
		db, err := sqlite.Open(ctx, a.config.StorePath)
		if err != nil {
			return nil, err
		}
		closers = append(closers, db.Close)
		opts = append(opts, coursemap.WithKV(db))
		a.logger.Debug().Str("path", a.config.StorePath).Msg("using sqlite store")
	default:
		opts = append(opts, coursemap.WithKV(kv.NewMemory()))
	}

	if a.config.RemoteEnabled {
		remote, err := postgres.Open(ctx, a.config.RemoteDSN)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, remote.Close)
		opts = append(opts, coursemap.WithRemote(remote))
		a.logger.Debug().Msg("remote document store enabled")
	}

	c, err := coursemap.New(opts...)
	if err != nil {
		cleanup()
		return nil, errors.NewConfigError("client", "creating client", err)
	}
	return c, nil
}

// Shutdown closes the client and the stores it owns.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	c := a.client
	a.client = nil
	a.mu.Unlock()

	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close client during shutdown")
		return err
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c coursemap.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
