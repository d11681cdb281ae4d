package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap"
)

var _ Interface = (*Mock)(nil)

// Mock provides a mock implementation of Interface for testing.
// A nil function field yields a zero value.
type Mock struct {
	ClientFunc       func() (coursemap.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Client returns the client from ClientFunc.
func (m *Mock) Client() (coursemap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// Logger returns the logger from LoggerFunc or a disabled logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	l := zerolog.Nop()
	return &l
}

// OutputFormat returns the format from OutputFormatFunc or json.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns the version from VersionFunc or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns "test".
func (m *Mock) Commit() string { return "test" }

// Date returns "test".
func (m *Mock) Date() string { return "test" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
