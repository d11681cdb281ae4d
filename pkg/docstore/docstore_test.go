package docstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agentstation/coursemap/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	m := docstore.NewMemory()

	id, err := m.Add(ctx, "courses", "", json.RawMessage(`{"title":"Go","teacherId":"1","level":"Beginner"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = m.Add(ctx, "courses", "fixed", json.RawMessage(`{"title":"Rust","teacherId":"2","price":80}`))
	require.NoError(t, err)

	docs, err := m.Query(ctx, "courses", docstore.Filter{Field: "teacherId", Value: "1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)

	docs, err = m.Query(ctx, "courses", docstore.Filter{Field: "price", Value: "80"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fixed", docs[0].ID)

	require.NoError(t, m.Update(ctx, "courses", "fixed", map[string]any{"price": 90}))
	doc, err := m.Get(ctx, "courses", "fixed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Rust","teacherId":"2","price":90}`, string(doc.Body))

	require.NoError(t, m.Delete(ctx, "courses", id))
	docs, err = m.Query(ctx, "courses")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, []string{"courses"}, m.Collections())
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	m := docstore.NewMemory()

	_, err := m.Get(ctx, "teachers", "x")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.ErrorIs(t, m.Update(ctx, "teachers", "x", map[string]any{"a": 1}), docstore.ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "teachers", "x"), docstore.ErrNotFound)
}

func TestMemoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := docstore.NewMemory().Query(ctx, "courses")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatches(t *testing.T) {
	doc := map[string]any{"teacherId": "1", "price": 49.99, "published": true}

	assert.True(t, docstore.Matches(doc, nil))
	assert.True(t, docstore.Matches(doc, []docstore.Filter{{Field: "teacherId", Value: "1"}}))
	assert.True(t, docstore.Matches(doc, []docstore.Filter{{Field: "published", Value: "true"}}))
	assert.False(t, docstore.Matches(doc, []docstore.Filter{{Field: "teacherId", Value: "2"}}))
	assert.False(t, docstore.Matches(doc, []docstore.Filter{{Field: "level", Value: "Beginner"}}))
}
