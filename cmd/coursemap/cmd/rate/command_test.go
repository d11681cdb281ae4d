package rate

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
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/interactions"
)

func TestRateCommand(t *testing.T) {
	logger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&logger))
	require.NoError(t, err)
	app := &appcontext.Mock{
		ClientFunc: func() (coursemap.Client, error) { return client, nil },
	}

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewCommand(app)
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	_, err = run("1", "u-1", "3")
	require.NoError(t, err)
	_, err = run("1", "u-2", "9", "Loved", "it")
	require.NoError(t, err)

	assert.Equal(t, 2, client.Interactions().RatingCount("1"))
	assert.InDelta(t, 4.0, client.Interactions().AverageRating("1"), 0.001)

	ratings := client.Interactions().CourseRatings("1")
	require.Len(t, ratings, 2)
	assert.Equal(t, "Loved it", ratings[1].Comment)

	_, err = run("1", "u-1", "--remove")
	require.NoError(t, err)
	assert.Equal(t, 1, client.Interactions().RatingCount("1"))

	_, err = run("1", "u-1", "great")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	_, err = run("1", "u-1")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestRateCommandOutput(t *testing.T) {
	logger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&logger))
	require.NoError(t, err)
	app := &appcontext.Mock{
		ClientFunc: func() (coursemap.Client, error) { return client, nil },
	}

	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"2", "u-1", "0"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var rating interactions.Rating
	require.NoError(t, json.Unmarshal(out.Bytes(), &rating))
	assert.Equal(t, "u-1", rating.UserID)
	assert.InDelta(t, 1.0, rating.Rating, 0.001)
}
