package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
)

func TestFixtureCatalog_Loads(t *testing.T) {
	c, err := NewFixtureCatalog()
	require.NoError(t, err)

	items, total, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Len(t, items, 8)

	druse, err := c.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(4890), druse.Price)
	assert.Equal(t, "velka-ametystova-druza-brazilie", druse.Slug)
	assert.Equal(t, DefaultCurrency, druse.Currency)
	assert.True(t, druse.InStock)

	ring, err := c.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, ring.InStock)
}

func TestMemoryCatalog_GetUnknown(t *testing.T) {
	c, err := NewFixtureCatalog()
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryCatalog_GetReturnsCopy(t *testing.T) {
	c, err := NewMemoryCatalog([]Item{{ID: "a", Name: "Quartz", Price: 10}})
	require.NoError(t, err)

	it, err := c.Get(context.Background(), "a")
	require.NoError(t, err)
	it.Price = 0

	again, err := c.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Price)
}

func TestMemoryCatalog_RejectsBadItems(t *testing.T) {
	_, err := NewMemoryCatalog([]Item{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	_, err = NewMemoryCatalog([]Item{{Name: "no id"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = NewMemoryCatalog([]Item{{ID: "neg", Price: -1}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMemoryCatalog_ListFilters(t *testing.T) {
	c, err := NewFixtureCatalog()
	require.NoError(t, err)
	ctx := context.Background()

	jewelry, total, err := c.List(ctx, Filter{Category: "jewelry"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"5", "6", "7"}, ids(jewelry))

	inStock, total, err := c.List(ctx, Filter{Category: "jewelry", InStockOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"5", "6"}, ids(inStock))
}

func TestMemoryCatalog_ListPaging(t *testing.T) {
	c, err := NewFixtureCatalog()
	require.NoError(t, err)
	ctx := context.Background()

	page, total, err := c.List(ctx, Filter{Offset: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Equal(t, []string{"3", "4", "5"}, ids(page))

	past, total, err := c.List(ctx, Filter{Offset: 20, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Empty(t, past)
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
