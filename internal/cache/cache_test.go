package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_BasicOperations(t *testing.T) {
	c := New[[]string](5*time.Minute, 10*time.Minute)

	t.Run("set and get", func(t *testing.T) {
		c.Set("k1", []string{"a", "b"})
		v, ok := c.Get("k1")
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, v)
	})

	t.Run("missing key", func(t *testing.T) {
		v, ok := c.Get("nope")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("delete and clear", func(t *testing.T) {
		c.Set("k2", nil)
		c.Delete("k2")
		_, ok := c.Get("k2")
		assert.False(t, ok)

		c.Clear()
		assert.Equal(t, 0, c.ItemCount())
	})
}

func TestCache_Expiration(t *testing.T) {
	c := New[int](50*time.Millisecond, time.Second)
	c.Set("k", 1)

	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(100 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	c := New[int](0, 0)
	c.Set("k", 1)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.ItemCount())
	c.Clear()
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int](time.Minute, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set("shared", n)
			_, _ = c.Get("shared")
		}(i)
	}
	wg.Wait()

	_, ok := c.Get("shared")
	assert.True(t, ok)
}
