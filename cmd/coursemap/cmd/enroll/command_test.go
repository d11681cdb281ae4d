package enroll

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

func TestEnrollCommands(t *testing.T) {
	logger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&logger))
	require.NoError(t, err)
	app := &appcontext.Mock{
		ClientFunc: func() (coursemap.Client, error) { return client, nil },
	}
	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := NewCommand(app)
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return out.String()
	}

	run("join", "u-1", "2")
	run("join", "u-1", "1")
	run("join", "u-2", "1")
	run("join", "u-1", "1")
	assert.Equal(t, 2, client.Interactions().EnrolledCount("1"))

	var users []string
	require.NoError(t, json.Unmarshal([]byte(run("list")), &users))
	assert.Equal(t, []string{"u-1", "u-2"}, users)

	var courses []catalogs.Course
	require.NoError(t, json.Unmarshal([]byte(run("list", "u-1")), &courses))
	require.Len(t, courses, 2)
	assert.Equal(t, "2", courses[0].ID)
	assert.Equal(t, "1", courses[1].ID)

	run("unjoin", "u-1", "2")
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(run("list", "u-1", "--ids")), &ids))
	assert.Equal(t, []string{"1"}, ids)
}
