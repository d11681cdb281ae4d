package courses

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
)

func newApp(t *testing.T) (*appcontext.Mock, coursemap.Client) {
	t.Helper()
	logger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return &appcontext.Mock{
		ClientFunc: func() (coursemap.Client, error) { return client, nil },
	}, client
}

func run(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeCourses(t *testing.T, out string) []catalogs.Course {
	t.Helper()
	var courses []catalogs.Course
	require.NoError(t, json.Unmarshal([]byte(out), &courses))
	return courses
}

func TestListCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", []string{"list"}, []string{"1", "2"}},
		{"search", []string{"list", "--search", "design"}, []string{"2"}},
		{"category", []string{"list", "-c", "Development"}, []string{"1"}},
		{"price low first", []string{"list", "--sort", "price-low"}, []string{"2", "1"}},
		{"max price", []string{"list", "--max-price", "40"}, []string{"2"}},
		{"paged", []string{"list", "--per-page", "1", "--page", "2"}, []string{"2"}},
		{"scroll first page", []string{"list", "--scroll", "--per-page", "1"}, []string{"1"}},
		{"scroll grows", []string{"list", "--scroll", "--per-page", "1", "--page", "2"}, []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newApp(t)
			out, err := run(t, app, tt.args...)
			require.NoError(t, err)

			var ids []string
			for _, c := range decodeCourses(t, out) {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListCommandRejectsUnknownSort(t *testing.T) {
	app, _ := newApp(t)
	_, err := run(t, app, "list", "--sort", "cheapest")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestCreateUpdateDelete(t *testing.T) {
	app, client := newApp(t)
	ctx := context.Background()

	out, err := run(t, app, "create", "--title", "Intro to Go", "--price", "0", "--teacher", "1")
	require.NoError(t, err)
	created := decodeCourses(t, out)
	require.Len(t, created, 1)
	id := created[0].ID
	require.NotEmpty(t, id)
	assert.Equal(t, catalogs.LevelBeginner, created[0].DerivedLevel())

	out, err = run(t, app, "update", id, "--set", "price=120", "--set", "title=Go in Depth")
	require.NoError(t, err)
	updated := decodeCourses(t, out)
	require.Len(t, updated, 1)
	assert.Equal(t, "Go in Depth", updated[0].Title)
	assert.InDelta(t, 120, updated[0].PriceOrZero(), 0.001)

	_, err = run(t, app, "delete", id)
	require.NoError(t, err)

	_, err = client.Courses().GetByID(ctx, id)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGetCommandNotFound(t *testing.T) {
	app, _ := newApp(t)
	_, err := run(t, app, "get", "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
