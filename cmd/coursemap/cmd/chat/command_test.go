package chat

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
	"github.com/agentstation/coursemap/pkg/chat"
)

func TestChatCommands(t *testing.T) {
	logger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&logger))
	require.NoError(t, err)
	format := "json"
	app := &appcontext.Mock{
		ClientFunc:       func() (coursemap.Client, error) { return client, nil },
		OutputFormatFunc: func() string { return format },
	}
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewCommand(app)
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	out, err := run("send", "1", "When", "does", "it", "start?", "--student", "u-42", "--name", "Ana")
	require.NoError(t, err)
	var sent chat.Message
	require.NoError(t, json.Unmarshal([]byte(out), &sent))
	assert.Equal(t, "When does it start?", sent.Text)
	assert.Equal(t, "1", sent.TeacherID)
	assert.NotEmpty(t, sent.ID)

	_, err = run("send", "1", "hello")
	require.NoError(t, err)

	out, err = run("thread", "1", "u-42")
	require.NoError(t, err)
	var thread []chat.Message
	require.NoError(t, json.Unmarshal([]byte(out), &thread))
	require.Len(t, thread, 1)
	assert.Equal(t, "Ana", thread[0].SenderName)

	out, err = run("inbox", "1")
	require.NoError(t, err)
	var inbox []chat.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &inbox))
	require.Len(t, inbox, 2)
	students := []string{inbox[0].StudentID, inbox[1].StudentID}
	assert.ElementsMatch(t, []string{"u-42", chat.GuestStudent}, students)

	format = "table"
	out, err = run("thread", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}
