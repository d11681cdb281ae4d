package catalogs_test

import (
	"testing"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/stretchr/testify/assert"
)

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		p := catalogs.Paginate([]int{}, 5, 10)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 1, p.PageCount)
		assert.Equal(t, 0, p.Total)
		assert.Empty(t, p.Items)
	})

	t.Run("clamps high page", func(t *testing.T) {
		p := catalogs.Paginate(numbers(25), 10, 10)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 3, p.PageCount)
		assert.Equal(t, []int{21, 22, 23, 24, 25}, p.Items)
	})

	t.Run("clamps low page", func(t *testing.T) {
		p := catalogs.Paginate(numbers(25), -2, 10)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, numbers(10), p.Items)
	})

	t.Run("default page size", func(t *testing.T) {
		p := catalogs.Paginate(numbers(12), 2, 0)
		assert.Equal(t, 10, p.PerPage)
		assert.Equal(t, []int{11, 12}, p.Items)
	})

	t.Run("result does not alias input", func(t *testing.T) {
		list := numbers(3)
		p := catalogs.Paginate(list, 1, 10)
		p.Items[0] = 100
		assert.Equal(t, 1, list[0])
	})
}

func TestWindow(t *testing.T) {
	items, more := catalogs.Window(numbers(25), 2, 10)
	assert.Len(t, items, 20)
	assert.True(t, more)

	items, more = catalogs.Window(numbers(25), 3, 10)
	assert.Len(t, items, 25)
	assert.False(t, more)

	items, more = catalogs.Window([]int{}, 1, 10)
	assert.Empty(t, items)
	assert.False(t, more)
}
