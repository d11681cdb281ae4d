// Package teachers provides the teachers command.
package teachers

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/cmdutil"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
)

// NewCommand creates the teachers command and its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "teachers",
		Aliases: []string{"teacher"},
		GroupID: "core",
		Short:   "List and manage teachers",
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
		newLinkCommand(app),
	)
	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	var (
		search  string
		subject string
		sort    string
		page    int
		perPage int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teachers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, ok := catalogs.ParseSortOrder(sort)
			if !ok {
				return errors.NewValidationError("sort", sort, "unknown sort order")
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			teachers, err := client.Teachers().GetAll(cmd.Context(), catalogs.FilterSpec{
				Search:   search,
				Category: subject,
				SortBy:   order,
			})
			if err != nil {
				return err
			}
			result := catalogs.Paginate(teachers, page, perPage)
			return output.Teachers(cmd.OutOrStdout(), result.Items, output.Format(app.OutputFormat()))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name, subject, title or specialties")
	cmd.Flags().StringVar(&subject, "subject", "", "Filter by subject")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort order: rating, popular, newest")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "Teachers per page")
	return cmd
}

func newGetCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one teacher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			teacher, err := client.Teachers().GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output.Teachers(cmd.OutOrStdout(), []catalogs.Teacher{teacher}, output.Format(app.OutputFormat()))
		},
	}
}

func newCreateCommand(app appcontext.Interface) *cobra.Command {
	var teacher catalogs.Teacher
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a teacher",
		Args:    cobra.NoArgs,
		Example: `  coursemap teachers create --name "Ada Lovelace" --subject Mathematics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			created, err := client.Teachers().Create(cmd.Context(), teacher)
			if err != nil {
				return err
			}
			app.Logger().Info().Str("id", created.ID).Msg("teacher created")
			return output.Teachers(cmd.OutOrStdout(), []catalogs.Teacher{created}, output.Format(app.OutputFormat()))
		},
	}
	cmd.Flags().StringVar(&teacher.ID, "id", "", "Teacher id (generated when empty)")
	cmd.Flags().StringVar(&teacher.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&teacher.Title, "title", "", "Professional title")
	cmd.Flags().StringVar(&teacher.Subject, "subject", "", "Subject taught")
	cmd.Flags().StringVar(&teacher.Bio, "bio", "", "Short biography")
	cmd.Flags().StringVar(&teacher.Image, "image", "", "Image URL")
	cmd.Flags().StringSliceVar(&teacher.Specialties, "specialties", nil, "Specialties")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUpdateCommand(app appcontext.Interface) *cobra.Command {
	var set []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update teacher fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := cmdutil.ParsePatch[catalogs.Teacher](set)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			updated, err := client.Teachers().Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return output.Teachers(cmd.OutOrStdout(), []catalogs.Teacher{updated}, output.Format(app.OutputFormat()))
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "Field to set as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a teacher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if err := client.Teachers().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Logger().Info().Str("id", args[0]).Msg("teacher deleted")
			return nil
		},
	}
}

// newLinkCommand attaches a login account to a teacher profile.
func newLinkCommand(app appcontext.Interface) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "link <id>",
		Short: "Create or update the login account for a teacher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			teacher, err := client.Teachers().GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			user, err := client.Accounts().LinkTeacherAccount(cmd.Context(), teacher.ID, teacher.Name, email, password)
			if err != nil {
				return err
			}
			return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Login password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
