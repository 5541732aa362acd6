package slot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySlot_RoundTrip(t *testing.T) {
	s := NewMemorySlot()
	ctx := context.Background()

	_, err := s.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrEmpty)

	doc := []byte(`{"step":"cart"}`)
	require.NoError(t, s.Store(ctx, "k", doc))
	doc[0] = 'X'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"step":"cart"}`, string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestMemorySlot_FailWrites(t *testing.T) {
	s := NewMemorySlot()
	ctx := context.Background()
	require.NoError(t, s.Store(ctx, "k", []byte("old")))

	quota := errors.New("quota exceeded")
	s.FailWrites(quota)
	assert.ErrorIs(t, s.Store(ctx, "k", []byte("new")), quota)
	assert.ErrorIs(t, s.Delete(ctx, "k"), quota)

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	s.FailWrites(nil)
	assert.NoError(t, s.Store(ctx, "k", []byte("new")))
}
