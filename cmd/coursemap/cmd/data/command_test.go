package data

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
)

func TestDataCommands(t *testing.T) {
	logger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&logger))
	require.NoError(t, err)
	format := "json"
	app := &appcontext.Mock{
		ClientFunc:       func() (coursemap.Client, error) { return client, nil },
		OutputFormatFunc: func() string { return format },
	}
	ctx := context.Background()

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := NewCommand(app)
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.ExecuteContext(ctx))
		return out.String()
	}

	_, err = client.Courses().Create(ctx, catalogs.Course{Title: "Extra"})
	require.NoError(t, err)

	var counts coursemap.Counts
	require.NoError(t, json.Unmarshal([]byte(run("counts")), &counts))
	assert.Equal(t, 3, counts.Courses)

	require.NoError(t, json.Unmarshal([]byte(run("seed")), &counts))
	assert.Equal(t, coursemap.Counts{Courses: 2, Teachers: 2}, counts)

	out := run("reset")
	assert.Contains(t, out, "--force")
	_, err = client.Courses().Create(ctx, catalogs.Course{Title: "Kept"})
	require.NoError(t, err)
	assert.Equal(t, 3, client.Counts(ctx).Courses)

	run("reset", "--force")
	assert.Equal(t, 2, client.Counts(ctx).Courses)

	format = "table"
	out = run("counts")
	assert.Contains(t, out, "teachers")
}
