package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/slot"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/logger"
)

// tags is a minimal collection used to exercise the store generically.
type tags []string

type tagsCodec struct{}

func (tagsCodec) Empty() tags { return tags{} }

func (tagsCodec) Encode(s tags) ([]byte, error) { return json.Marshal(s) }

func (tagsCodec) Decode(_ context.Context, data []byte) (tags, error) {
	var s tags
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func appendTag(v string) func(tags) tags {
	return func(s tags) tags {
		out := make(tags, len(s), len(s)+1)
		copy(out, s)
		return append(out, v)
	}
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return logger.NewWithWriter("storefront-test", "debug", buf)
}

// outageCodec decodes like tagsCodec but reports ErrUnresolved while down.
type outageCodec struct {
	tagsCodec
	down *bool
}

func (c outageCodec) Decode(ctx context.Context, data []byte) (tags, error) {
	if *c.down {
		return nil, fmt.Errorf("lookup tags: %w", ErrUnresolved)
	}
	return c.tagsCodec.Decode(ctx, data)
}

type failingLoadSlot struct{ *slot.MemorySlot }

func (failingLoadSlot) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend unreachable")
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen_EmptySlot(t *testing.T) {
	var buf bytes.Buffer
	before := testutil.ToFloat64(slotLoads.WithLabelValues("tags-empty", "empty"))

	s := Open[tags](context.Background(), "tags-empty", slot.NewMemorySlot(), "k", tagsCodec{}, newLogger(&buf))

	assert.Equal(t, tags{}, s.Snapshot())
	assert.Equal(t, before+1, testutil.ToFloat64(slotLoads.WithLabelValues("tags-empty", "empty")))
	assert.NotContains(t, buf.String(), "WARN")
}

func TestOpen_RehydratesStoredState(t *testing.T) {
	var buf bytes.Buffer
	sl := slot.NewMemorySlot()
	require.NoError(t, sl.Store(context.Background(), "k", []byte(`["a","b"]`)))

	s := Open[tags](context.Background(), "tags", sl, "k", tagsCodec{}, newLogger(&buf))

	assert.Equal(t, tags{"a", "b"}, s.Snapshot())
	assert.Equal(t, "k", s.Key())
}

func TestOpen_MalformedFallsBackToEmpty(t *testing.T) {
	var buf bytes.Buffer
	sl := slot.NewMemorySlot()
	require.NoError(t, sl.Store(context.Background(), "k", []byte(`{not json`)))

	s := Open[tags](context.Background(), "tags", sl, "k", tagsCodec{}, newLogger(&buf))

	assert.Equal(t, tags{}, s.Snapshot())
	assert.Contains(t, buf.String(), "slot content malformed, starting empty")
	assert.Contains(t, buf.String(), `"slot_key":"k"`)
}

func TestOpen_UnreadableFallsBackToEmpty(t *testing.T) {
	var buf bytes.Buffer

	s := Open[tags](context.Background(), "tags", failingLoadSlot{slot.NewMemorySlot()}, "k", tagsCodec{}, newLogger(&buf))

	assert.Equal(t, tags{}, s.Snapshot())
	assert.Contains(t, buf.String(), "slot unreadable, starting empty")
}

// ---------------------------------------------------------------------------
// Unresolved documents
// ---------------------------------------------------------------------------

func openDuringOutage(t *testing.T, sl *slot.MemorySlot, buf *bytes.Buffer) (*Store[tags], *bool) {
	t.Helper()
	require.NoError(t, sl.Store(context.Background(), "k", []byte(`["a","b"]`)))
	down := true
	s := Open[tags](context.Background(), "tags-outage", sl, "k", outageCodec{down: &down}, newLogger(buf))
	return s, &down
}

func TestOpen_UnresolvedKeepsStoredDocument(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	s, _ := openDuringOutage(t, sl, &buf)

	assert.False(t, s.Resolved())
	assert.Equal(t, tags{}, s.Snapshot())
	assert.Contains(t, buf.String(), "slot content unresolved, keeping stored copy")

	got := s.Apply(ctx, appendTag("c"))
	assert.Equal(t, tags{"c"}, got)
	assert.Contains(t, buf.String(), "write deferred until slot content resolves")

	raw, err := sl.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(raw))
}

func TestApply_ReplaysDeferredMutationsOnceResolved(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	s, down := openDuringOutage(t, sl, &buf)

	s.Apply(ctx, appendTag("c"))
	*down = false
	got := s.Apply(ctx, appendTag("d"))

	assert.Equal(t, tags{"a", "b", "c", "d"}, got)
	assert.True(t, s.Resolved())
	assert.Contains(t, buf.String(), `"replayed":1`)

	raw, err := sl.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c","d"]`, string(raw))
}

func TestRefresh_RetriesAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	s, down := openDuringOutage(t, sl, &buf)

	clock := time.Now()
	s.now = func() time.Time { return clock }
	s.lastTry = clock

	var seen []tags
	s.Subscribe(func(st tags) { seen = append(seen, st) })

	*down = false
	s.Refresh(ctx)
	assert.False(t, s.Resolved(), "retried before the interval elapsed")

	clock = clock.Add(RetryInterval)
	s.Refresh(ctx)
	assert.True(t, s.Resolved())
	assert.Equal(t, tags{"a", "b"}, s.Snapshot())
	assert.Equal(t, []tags{{"a", "b"}}, seen)

	s.Refresh(ctx)
	assert.Len(t, seen, 1)
}

func TestRefresh_StillDownKeepsWaiting(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	s, _ := openDuringOutage(t, sl, &buf)

	clock := time.Now().Add(RetryInterval)
	s.now = func() time.Time { return clock }
	s.Refresh(ctx)

	assert.False(t, s.Resolved())
	assert.Contains(t, buf.String(), "slot content still unresolved")
	assert.Equal(t, clock, s.lastTry)
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

func TestApply_PersistsFullState(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	s := Open[tags](ctx, "tags", sl, "k", tagsCodec{}, newLogger(&buf))

	s.Apply(ctx, appendTag("a"))
	got := s.Apply(ctx, appendTag("b"))
	assert.Equal(t, tags{"a", "b"}, got)

	raw, err := sl.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(raw))

	reopened := Open[tags](ctx, "tags", sl, "k", tagsCodec{}, newLogger(&buf))
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}

func TestApply_WriteFailureKeepsMemoryState(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	sl := slot.NewMemorySlot()
	s := Open[tags](ctx, "tags-fail", sl, "k", tagsCodec{}, newLogger(&buf))
	s.Apply(ctx, appendTag("a"))

	before := testutil.ToFloat64(slotWrites.WithLabelValues("tags-fail", "error"))
	sl.FailWrites(errors.New("quota exceeded"))
	got := s.Apply(ctx, appendTag("b"))

	assert.Equal(t, tags{"a", "b"}, got)
	assert.Equal(t, tags{"a", "b"}, s.Snapshot())
	assert.Contains(t, buf.String(), "persist collection failed")
	assert.Contains(t, buf.String(), "quota exceeded")
	assert.Equal(t, before+1, testutil.ToFloat64(slotWrites.WithLabelValues("tags-fail", "error")))

	raw, err := sl.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(raw))
}

func TestApply_ConcurrentMutationsAreSerialized(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := Open[tags](ctx, "tags", slot.NewMemorySlot(), "k", tagsCodec{}, newLogger(&buf))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Apply(ctx, appendTag("x"))
		}()
	}
	wg.Wait()

	assert.Len(t, s.Snapshot(), 50)
}

// ---------------------------------------------------------------------------
// Subscribe
// ---------------------------------------------------------------------------

func TestSubscribe_ReceivesEveryState(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := Open[tags](ctx, "tags", slot.NewMemorySlot(), "k", tagsCodec{}, newLogger(&buf))

	var seen []int
	unsubscribe := s.Subscribe(func(st tags) { seen = append(seen, len(st)) })

	s.Apply(ctx, appendTag("a"))
	s.Apply(ctx, appendTag("b"))
	unsubscribe()
	unsubscribe()
	s.Apply(ctx, appendTag("c"))

	assert.Equal(t, []int{1, 2}, seen)
}

func TestSubscribe_CanReadSnapshot(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	s := Open[tags](ctx, "tags", slot.NewMemorySlot(), "k", tagsCodec{}, newLogger(&buf))

	var inside tags
	s.Subscribe(func(tags) { inside = s.Snapshot() })
	s.Apply(ctx, appendTag("a"))

	assert.Equal(t, tags{"a"}, inside)
}
