package lists

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/pkg/catalogs"
)

func newApp(t *testing.T) (*appcontext.Mock, coursemap.Client) {
	t.Helper()
	logger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&logger))
	require.NoError(t, err)
	return &appcontext.Mock{
		ClientFunc: func() (coursemap.Client, error) { return client, nil },
	}, client
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestListCommands(t *testing.T) {
	tests := []struct {
		name    string
		command func(appcontext.Interface) *cobra.Command
		items   func(coursemap.Client) []string
	}{
		{"wishlist", NewWishlistCommand, func(c coursemap.Client) []string { return c.Interactions().Wishlist().Items() }},
		{"cart", NewCartCommand, func(c coursemap.Client) []string { return c.Interactions().Cart().Items() }},
		{"favorites", NewFavoritesCommand, func(c coursemap.Client) []string { return c.Interactions().Favorites().Items() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, client := newApp(t)

			run(t, tt.command(app), "add", "2", "1", "2")
			assert.Equal(t, []string{"2", "1"}, tt.items(client))

			out := run(t, tt.command(app), "list")
			var courses []catalogs.Course
			require.NoError(t, json.Unmarshal([]byte(out), &courses))
			require.Len(t, courses, 2)
			assert.Equal(t, "2", courses[0].ID)
			assert.Equal(t, "1", courses[1].ID)

			run(t, tt.command(app), "remove", "2")
			out = run(t, tt.command(app), "list", "--ids")
			var ids []string
			require.NoError(t, json.Unmarshal([]byte(out), &ids))
			assert.Equal(t, []string{"1"}, ids)

			run(t, tt.command(app), "clear")
			assert.Empty(t, tt.items(client))
		})
	}
}

func TestResolveSkipsUnknownCourses(t *testing.T) {
	_, client := newApp(t)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	courses, err := Resolve(cmd, client, []string{"missing", "1"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "1", courses[0].ID)
}
