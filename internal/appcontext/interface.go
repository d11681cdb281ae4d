// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap"
)

// Interface defines what commands need from the application. The App in
// cmd/coursemap/app implements it; tests use Mock.
type Interface interface {
	// Client returns the data layer, creating it lazily if needed.
	Client() (coursemap.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
