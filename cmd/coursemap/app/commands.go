package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/cmd/coursemap/cmd/account"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/chat"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/courses"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/data"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/enroll"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/lists"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/rate"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/teachers"
	"github.com/agentstation/coursemap/internal/cmd/completion"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Catalog commands
	rootCmd.AddCommand(courses.NewCommand(a))
	rootCmd.AddCommand(teachers.NewCommand(a))

	// Student commands
	rootCmd.AddCommand(lists.NewWishlistCommand(a))
	rootCmd.AddCommand(lists.NewCartCommand(a))
	rootCmd.AddCommand(lists.NewFavoritesCommand(a))
	rootCmd.AddCommand(enroll.NewCommand(a))
	rootCmd.AddCommand(rate.NewCommand(a))
	rootCmd.AddCommand(account.NewCommand(a))
	rootCmd.AddCommand(chat.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(data.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
	rootCmd.AddCommand(completion.NewCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("coursemap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
