// Package lists provides the wishlist, cart and favorites commands.
package lists

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/interactions"
)

// selector picks one course id list from the interactions store.
type selector func(*interactions.Store) interactions.List

// NewWishlistCommand creates the wishlist command.
func NewWishlistCommand(app appcontext.Interface) *cobra.Command {
	return newCommand(app, "wishlist", "Manage the wishlist", (*interactions.Store).Wishlist)
}

// NewCartCommand creates the cart command.
func NewCartCommand(app appcontext.Interface) *cobra.Command {
	return newCommand(app, "cart", "Manage the shopping cart", (*interactions.Store).Cart)
}

// NewFavoritesCommand creates the favorites command.
func NewFavoritesCommand(app appcontext.Interface) *cobra.Command {
	return newCommand(app, "favorites", "Manage favorite courses", (*interactions.Store).Favorites)
}

func newCommand(app appcontext.Interface, name, short string, pick selector) *cobra.Command {
	cmd := &cobra.Command{
		Use:     name,
		GroupID: "student",
		Short:   short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <course-id>...",
		Short: "Add courses to the " + name,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			list := pick(client.Interactions())
			for _, id := range args {
				list.Add(cmd.Context(), id)
			}
			return output.IDs(cmd.OutOrStdout(), "Course", list.Items(), output.Format(app.OutputFormat()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <course-id>...",
		Short: "Remove courses from the " + name,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			list := pick(client.Interactions())
			for _, id := range args {
				list.Remove(cmd.Context(), id)
			}
			return output.IDs(cmd.OutOrStdout(), "Course", list.Items(), output.Format(app.OutputFormat()))
		},
	})

	var idsOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the courses in the " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			ids := pick(client.Interactions()).Items()
			format := output.Format(app.OutputFormat())
			if idsOnly {
				return output.IDs(cmd.OutOrStdout(), "Course", ids, format)
			}
			courses, err := Resolve(cmd, client, ids)
			if err != nil {
				return err
			}
			return output.Courses(cmd.OutOrStdout(), courses, format)
		},
	}
	listCmd.Flags().BoolVar(&idsOnly, "ids", false, "Print course ids only")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			pick(client.Interactions()).Clear(cmd.Context())
			return nil
		},
	})

	return cmd
}

// Resolve returns the courses named by ids in list order with the local
// interaction overlay applied. Ids without a course are skipped.
func Resolve(cmd *cobra.Command, client coursemap.Client, ids []string) ([]catalogs.Course, error) {
	all, err := client.Courses().GetAll(cmd.Context(), catalogs.FilterSpec{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalogs.Course, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	courses := make([]catalogs.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			courses = append(courses, c)
		}
	}
	return client.Interactions().ApplyToCourses(courses), nil
}
