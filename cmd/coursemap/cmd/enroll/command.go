// Package enroll provides the enrollment commands.
package enroll

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/cmd/coursemap/cmd/lists"
	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/output"
)

// NewCommand creates the enroll command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "enroll",
		GroupID: "student",
		Short:   "Join and leave courses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "join <user-id> <course-id>",
		Short:   "Enroll a user in a course",
		Args:    cobra.ExactArgs(2),
		Example: `  coursemap enroll join u-42 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			client.Interactions().Join(cmd.Context(), args[0], args[1])
			app.Logger().Info().
				Str("user", args[0]).
				Str("course", args[1]).
				Int("enrolled", client.Interactions().EnrolledCount(args[1])).
				Msg("enrolled")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "leave <user-id> <course-id>",
		Aliases: []string{"unjoin"},
		Short:   "Remove a user from a course",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			client.Interactions().Unjoin(cmd.Context(), args[0], args[1])
			return nil
		},
	})

	var idsOnly bool
	listCmd := &cobra.Command{
		Use:   "list [user-id]",
		Short: "List a user's courses, or every enrolled user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			format := output.Format(app.OutputFormat())
			if len(args) == 0 {
				return output.IDs(cmd.OutOrStdout(), "User", client.Interactions().Users(), format)
			}
			ids := client.Interactions().ByUser(args[0])
			if idsOnly {
				return output.IDs(cmd.OutOrStdout(), "Course", ids, format)
			}
			courses, err := lists.Resolve(cmd, client, ids)
			if err != nil {
				return err
			}
			return output.Courses(cmd.OutOrStdout(), courses, format)
		},
	}
	listCmd.Flags().BoolVar(&idsOnly, "ids", false, "Print course ids only")
	cmd.AddCommand(listCmd)

	return cmd
}
