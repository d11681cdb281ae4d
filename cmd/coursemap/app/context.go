package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/agentstation/coursemap/pkg/constants"
)

// ContextWithSignals creates a context that is cancelled when the application
// receives an interrupt or termination signal. This enables graceful shutdown.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Context creates a signal-aware context bounded by the default command
// timeout.
func Context() (context.Context, context.CancelFunc) {
	ctx, stop := ContextWithSignals(context.Background())
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
