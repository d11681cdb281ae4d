// Package main provides the entry point for the coursemap CLI tool.
package main

import (
	"context"
	"os"
	"time"

	"github.com/agentstation/coursemap/cmd/coursemap/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.Context()

	err = application.Execute(ctx, os.Args[1:])
	cancel()

	// The signal context may already be cancelled, so shutdown gets its own.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown error")
	}

	app.ExitOnError(err)
}
