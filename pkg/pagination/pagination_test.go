package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	t.Run("zero page size returns everything", func(t *testing.T) {
		page := Paginate(items, Params{Page: 1})
		assert.Equal(t, items, page.Items)
		assert.Equal(t, Meta{Page: 1, TotalItems: 5}, page.Meta)
	})

	t.Run("middle page", func(t *testing.T) {
		page := Paginate(items, Params{Page: 2, PageSize: 2})
		assert.Equal(t, []int{3, 4}, page.Items)
		assert.Equal(t, Meta{Page: 2, PageSize: 2, TotalItems: 5, TotalPages: 3}, page.Meta)
	})

	t.Run("last partial page", func(t *testing.T) {
		page := Paginate(items, Params{Page: 3, PageSize: 2})
		assert.Equal(t, []int{5}, page.Items)
	})

	t.Run("past the end", func(t *testing.T) {
		page := Paginate(items, Params{Page: 9, PageSize: 2})
		assert.Empty(t, page.Items)
		assert.Equal(t, 3, page.Meta.TotalPages)
	})
}
