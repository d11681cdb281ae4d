// Package rate provides the rate command.
package rate

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/errors"
)

// NewCommand creates the rate command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:     "rate <course-id> <user-id> [rating] [comment...]",
		GroupID: "student",
		Short:   "Rate a course from 1 to 5",
		Long: `Rate records a user's rating of a course, replacing any earlier rating by
the same user. Ratings are clamped to the range 1 to 5.`,
		Example: `  coursemap rate 1 u-42 5 "Great pacing"
  coursemap rate 1 u-42 --remove`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, userID := args[0], args[1]
			client, err := app.Client()
			if err != nil {
				return err
			}
			store := client.Interactions()
			if remove {
				store.RemoveRating(cmd.Context(), courseID, userID)
				return nil
			}
			if len(args) < 3 {
				return errors.NewValidationError("rating", nil, "rating is required")
			}
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return errors.NewValidationError("rating", args[2], "rating must be a number")
			}
			rating := store.UpsertRating(cmd.Context(), courseID, userID, value, strings.Join(args[3:], " "))
			app.Logger().Debug().
				Str("course", courseID).
				Float64("average", store.AverageRating(courseID)).
				Int("count", store.RatingCount(courseID)).
				Msg("course rated")
			return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), rating)
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the user's rating instead")
	return cmd
}
