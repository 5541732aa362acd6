package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/slot"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/logger"
)

func sequentialIDs() Option {
	n := 0
	return WithLineIDs(func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	})
}

func openCart(t *testing.T, sl slot.Slot, buf *bytes.Buffer) *Store {
	t.Helper()
	return Open(context.Background(), sl, "crystal-cart", fixture(t), logger.NewWithWriter("test", "debug", buf), sequentialIDs())
}

func TestStore_StartsEmpty(t *testing.T) {
	var buf bytes.Buffer
	s := openCart(t, slot.NewMemorySlot(), &buf)

	assert.Empty(t, s.Items())
	assert.Equal(t, StepCart, s.Step())
	assert.False(t, s.IsOpen())
	assert.Equal(t, 0, s.TotalItems())
	assert.Equal(t, int64(0), s.TotalPrice())
}

func TestStore_AddItemDefaultsAndIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := openCart(t, slot.NewMemorySlot(), &buf)

	s.AddItem(ctx, amethyst)
	s.AddItem(ctx, roseHeart, 2)
	s.AddItem(ctx, roseHeart, -3)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "line-1", items[0].LineID)
	assert.Equal(t, "line-2", items[1].LineID)
	assert.Equal(t, 3, items[1].Quantity)
	assert.True(t, s.Contains("2"))
	assert.False(t, s.Contains("3"))
}

func TestStore_PersistsAndRehydrates(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()

	s := openCart(t, sl, &buf)
	s.AddItem(ctx, amethyst)
	s.AddItem(ctx, roseHeart, 2)
	s.UpdateOptions(ctx, "line-2", OptionsPatch{GiftBag: boolPtr(true)})
	s.SetStep(ctx, StepShipping)
	s.ToggleOpen(ctx)

	reopened := openCart(t, sl, &buf)
	assert.Equal(t, int64(7270+59), reopened.TotalPrice())
	assert.Equal(t, StepShipping, reopened.Step())
	assert.False(t, reopened.IsOpen())
	assert.Equal(t, "crystal-cart", reopened.Key())
}

// flakyCatalog fails every lookup while down is set.
type flakyCatalog struct {
	catalog.Catalog
	down bool
}

func (c *flakyCatalog) Get(ctx context.Context, id string) (*catalog.Item, error) {
	if c.down {
		return nil, errors.New("catalog unavailable")
	}
	return c.Catalog.Get(ctx, id)
}

func TestStore_CatalogOutageDuringRehydrationKeepsCart(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	cat := &flakyCatalog{Catalog: fixture(t)}
	log := logger.NewWithWriter("test", "debug", &buf)

	first := Open(ctx, sl, "crystal-cart", cat, log, sequentialIDs())
	first.AddItem(ctx, amethyst, 3)

	cat.down = true
	during := Open(ctx, sl, "crystal-cart", cat, log, WithLineIDs(func() string { return "line-after-outage" }))
	assert.False(t, during.Resolved())
	assert.Contains(t, buf.String(), "slot content unresolved, keeping stored copy")

	cat.down = false
	during.AddItem(ctx, roseHeart)
	assert.True(t, during.Resolved())
	assert.Equal(t, 4, during.TotalItems())

	reopened := openCart(t, sl, &buf)
	assert.Equal(t, 4, reopened.TotalItems())
	require.Len(t, reopened.Items(), 2)
	assert.Equal(t, 3, reopened.Items()[0].Quantity)
	assert.Equal(t, "line-after-outage", reopened.Items()[1].LineID)
}

func TestStore_RefreshAfterOutage(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	cat := &flakyCatalog{Catalog: fixture(t)}
	log := logger.NewWithWriter("test", "debug", &buf)

	Open(ctx, sl, "crystal-cart", cat, log, sequentialIDs()).AddItem(ctx, roseHeart, 2)

	cat.down = true
	during := Open(ctx, sl, "crystal-cart", cat, log, sequentialIDs())
	require.False(t, during.Resolved())
	assert.Empty(t, during.Items())

	cat.down = false
	during.Refresh(ctx)
	assert.False(t, during.Resolved(), "retry is throttled")

	raw, err := sl.Load(ctx, "crystal-cart")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"catalogItemId":"2"`)
}

func TestStore_WriteFailureIsNotSurfaced(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	s := openCart(t, sl, &buf)

	sl.FailWrites(errors.New("quota exceeded"))
	st := s.AddItem(ctx, amethyst)

	assert.Equal(t, 1, st.TotalItems())
	assert.Equal(t, 1, s.TotalItems())
	assert.Contains(t, buf.String(), "persist collection failed")
}

func TestStore_UpdateQuantityAndRemove(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := openCart(t, slot.NewMemorySlot(), &buf)

	s.AddItem(ctx, amethyst)
	s.UpdateQuantity(ctx, "line-1", 4)
	assert.Equal(t, 4, s.TotalItems())

	s.UpdateQuantity(ctx, "line-1", 0)
	assert.Empty(t, s.Items())

	s.AddItem(ctx, roseHeart)
	s.RemoveItem(ctx, "line-2")
	s.RemoveItem(ctx, "line-2")
	assert.Empty(t, s.Items())
}

func TestStore_ClearCart(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := openCart(t, slot.NewMemorySlot(), &buf)

	s.AddItem(ctx, amethyst)
	s.ClearCart(ctx)

	assert.Empty(t, s.Items())
	assert.Equal(t, int64(0), s.TotalPrice())
}

func TestStore_Subscribe(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := openCart(t, slot.NewMemorySlot(), &buf)

	var totals []int64
	unsubscribe := s.Subscribe(func(st State) { totals = append(totals, st.TotalPrice()) })
	s.AddItem(ctx, amethyst)
	s.AddItem(ctx, roseHeart, 2)
	unsubscribe()
	s.ClearCart(ctx)

	assert.Equal(t, []int64{4890, 7270}, totals)
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := openCart(t, slot.NewMemorySlot(), &buf)
	s.AddItem(ctx, amethyst)

	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.TotalItems())
}
