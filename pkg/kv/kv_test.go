package kv_test

import (
	"context"
	"testing"

	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "chat_1_a", "[]"))
	require.NoError(t, m.Set(ctx, "chat_1_b", "[]"))
	require.NoError(t, m.Set(ctx, "chat_2_a", "[]"))
	require.NoError(t, m.Set(ctx, "@courses_db", ""))

	v, ok, err := m.Get(ctx, "@courses_db")
	require.NoError(t, err)
	assert.True(t, ok, "empty values are still present")
	assert.Empty(t, v)

	keys, err := m.Keys(ctx, "chat_1_")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_1_a", "chat_1_b"}, keys)

	require.NoError(t, m.Delete(ctx, "chat_1_a", "nope"))
	assert.Equal(t, 3, m.Len())
}
