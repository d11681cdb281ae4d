// Package courses provides the courses command.
package courses

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/cmdutil"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
)

// NewCommand creates the courses command and its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "courses",
		Aliases: []string{"course"},
		GroupID: "core",
		Short:   "List and manage courses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newListCommand(app),
		newGetCommand(app),
		newCreateCommand(app),
		newUpdateCommand(app),
		newDeleteCommand(app),
	)
	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	var (
		filters *cmdutil.FilterFlags
		scroll  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses",
		Args:  cobra.NoArgs,
		Example: `  coursemap courses list
  coursemap courses list --search react --sort popular
  coursemap courses list --category Design --max-price 50 -o json
  coursemap courses list --scroll --page 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := filters.Spec(cmd)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			format := output.Format(app.OutputFormat())
			if scroll {
				courses, more, err := client.ScrollCourses(cmd.Context(), spec, filters.Page, filters.PerPage)
				if err != nil {
					return err
				}
				app.Logger().Debug().Int("shown", len(courses)).Bool("more", more).Msg("courses scrolled")
				return output.Courses(cmd.OutOrStdout(), courses, format)
			}
			page, err := client.ListCourses(cmd.Context(), spec, filters.Page, filters.PerPage)
			if err != nil {
				return err
			}
			app.Logger().Debug().
				Int("total", page.Total).
				Int("page", page.Page).
				Int("pages", page.PageCount).
				Msg("courses listed")
			return output.Courses(cmd.OutOrStdout(), page.Items, format)
		},
	}
	filters = cmdutil.AddFilterFlags(cmd)
	cmd.Flags().BoolVar(&scroll, "scroll", false, "Show every course up to --page instead of that page alone")
	return cmd
}

func newGetCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			course, err := client.Courses().GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			courses := client.Interactions().ApplyToCourses([]catalogs.Course{course})
			return output.Courses(cmd.OutOrStdout(), courses, output.Format(app.OutputFormat()))
		},
	}
}

func newCreateCommand(app appcontext.Interface) *cobra.Command {
	var (
		course catalogs.Course
		price  float64
		level  string
	)
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a course",
		Args:    cobra.NoArgs,
		Example: `  coursemap courses create --title "Intro to Go" --price 29.99 --teacher 1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("price") {
				course.Price = catalogs.Float(price)
			}
			if level != "" {
				parsed, ok := catalogs.ParseLevel(level)
				if !ok {
					return errors.NewValidationError("level", level, "must be Beginner, Intermediate or Advanced")
				}
				course.Level = parsed
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			created, err := client.Courses().Create(cmd.Context(), course)
			if err != nil {
				return err
			}
			app.Logger().Info().Str("id", created.ID).Msg("course created")
			return output.Courses(cmd.OutOrStdout(), []catalogs.Course{created}, output.Format(app.OutputFormat()))
		},
	}
	cmd.Flags().StringVar(&course.ID, "id", "", "Course id (generated when empty)")
	cmd.Flags().StringVar(&course.Title, "title", "", "Course title")
	cmd.Flags().StringVar(&course.Description, "description", "", "Course description")
	cmd.Flags().Float64Var(&price, "price", 0, "Price")
	cmd.Flags().StringVar(&course.Category, "category", "", "Category")
	cmd.Flags().StringVar(&level, "level", "", "Level: Beginner, Intermediate, Advanced (derived from price when empty)")
	cmd.Flags().StringVar(&course.TeacherID, "teacher", "", "Teacher id")
	cmd.Flags().StringVar(&course.Image, "image", "", "Image URL")
	cmd.Flags().StringVar(&course.Duration, "duration", "", "Duration, e.g. 6h")
	cmd.Flags().StringSliceVar(&course.Topics, "topics", nil, "Topics")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newUpdateCommand(app appcontext.Interface) *cobra.Command {
	var set []string
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update course fields",
		Args:    cobra.ExactArgs(1),
		Example: `  coursemap courses update 1 --set price=59.99 --set title="React Native 2"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := cmdutil.ParsePatch[catalogs.Course](set)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			updated, err := client.Courses().Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return output.Courses(cmd.OutOrStdout(), []catalogs.Course{updated}, output.Format(app.OutputFormat()))
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "Field to set as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if err := client.Courses().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Logger().Info().Str("id", args[0]).Msg("course deleted")
			return nil
		},
	}
}
