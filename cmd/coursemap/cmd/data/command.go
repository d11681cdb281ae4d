// Package data provides the admin data management commands.
package data

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/output"
)

// NewCommand creates the data command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "data",
		GroupID: "management",
		Short:   "Seed, reset and count local data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSeedCommand(app), newResetCommand(app), newCountsCommand(app))
	return cmd
}

func newSeedCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Overwrite courses and teachers with the built-in fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if err := client.Reseed(cmd.Context()); err != nil {
				return err
			}
			return printCounts(cmd, app)
		},
	}
}

func newResetCommand(app appcontext.Interface) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the session, collections, accounts and profile data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				cmd.PrintErrln("This removes all local data. Re-run with --force to continue.")
				return nil
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			return client.Reset(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation notice")
	return cmd
}

func newCountsCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show how many records each collection holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCounts(cmd, app)
		},
	}
}

func printCounts(cmd *cobra.Command, app appcontext.Interface) error {
	client, err := app.Client()
	if err != nil {
		return err
	}
	counts := client.Counts(cmd.Context())
	format := output.Format(app.OutputFormat())
	var data any = counts
	if format == output.FormatTable || format == output.FormatWide {
		data = output.Data{
			Headers: []string{"Collection", "Records"},
			Rows: [][]string{
				{"courses", strconv.Itoa(counts.Courses)},
				{"teachers", strconv.Itoa(counts.Teachers)},
				{"users", strconv.Itoa(counts.Users)},
			},
		}
	}
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}
