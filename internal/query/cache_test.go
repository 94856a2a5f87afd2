package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - miss fetches and caches", func(t *testing.T) {
		c := New[[]string]("test", 16, time.Minute, time.Hour)
		var calls atomic.Int32

		fetch := func(ctx context.Context) ([]string, error) {
			calls.Add(1)
			return []string{"p1", "p2"}, nil
		}

		res := c.Get(ctx, "k", fetch)

		require.True(t, res.HasData)
		assert.Equal(t, []string{"p1", "p2"}, res.Data)
		assert.NoError(t, res.Err)

		// Second read within the freshness window is served from cache.
		res = c.Get(ctx, "k", fetch)
		assert.Equal(t, []string{"p1", "p2"}, res.Data)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, uint64(1), c.Stats().Hits.Load())
	})

	t.Run("Success - stale entry served while revalidating", func(t *testing.T) {
		c := New[[]string]("test", 16, 10*time.Millisecond, time.Hour)
		var calls atomic.Int32

		fetch := func(ctx context.Context) ([]string, error) {
			if calls.Add(1) == 1 {
				return []string{"old"}, nil
			}
			return []string{"new"}, nil
		}

		c.Get(ctx, "k", fetch)
		time.Sleep(20 * time.Millisecond)

		// Stale read returns the old value immediately, refetch in background.
		res := c.Get(ctx, "k", fetch)
		assert.Equal(t, []string{"old"}, res.Data)
		assert.True(t, res.Fetching)

		require.Eventually(t, func() bool {
			return calls.Load() == 2
		}, time.Second, 5*time.Millisecond)

		require.Eventually(t, func() bool {
			return assert.ObjectsAreEqual([]string{"new"}, c.Peek("k").Data)
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("Error - failed fetch on empty slot", func(t *testing.T) {
		c := New[[]string]("test", 16, time.Minute, time.Hour)
		fetchErr := errors.New("boom")

		res := c.Get(ctx, "k", func(ctx context.Context) ([]string, error) {
			return nil, fetchErr
		})

		assert.False(t, res.HasData)
		assert.Equal(t, fetchErr, res.Err)
	})

	t.Run("Error - failed refetch keeps last good data", func(t *testing.T) {
		c := New[[]string]("test", 16, 10*time.Millisecond, time.Hour)
		var calls atomic.Int32
		fetchErr := errors.New("http 500")

		fetch := func(ctx context.Context) ([]string, error) {
			if calls.Add(1) == 1 {
				return []string{"p1", "p2"}, nil
			}
			return nil, fetchErr
		}

		c.Get(ctx, "k", fetch)
		time.Sleep(20 * time.Millisecond)
		c.Get(ctx, "k", fetch)

		// Data and error end up visible at the same time.
		require.Eventually(t, func() bool {
			res := c.Peek("k")
			return res.Err != nil && res.HasData
		}, time.Second, 5*time.Millisecond)

		res := c.Peek("k")
		assert.Equal(t, []string{"p1", "p2"}, res.Data)
		assert.Equal(t, fetchErr, res.Err)
	})
}

func TestCache_Update(t *testing.T) {
	c := New[[]string]("test", 16, time.Minute, time.Hour)

	t.Run("Success - functional update of empty slot", func(t *testing.T) {
		got := c.Update("k", func(cur []string, ok bool) []string {
			assert.False(t, ok)
			return append(cur, "a")
		})
		assert.Equal(t, []string{"a"}, got)
	})

	t.Run("Success - update sees current value", func(t *testing.T) {
		got := c.Update("k", func(cur []string, ok bool) []string {
			assert.True(t, ok)
			next := append([]string(nil), cur...)
			return append(next, "b")
		})
		assert.Equal(t, []string{"a", "b"}, got)
		assert.Equal(t, []string{"a", "b"}, c.Peek("k").Data)
	})
}

func TestCache_Set(t *testing.T) {
	c := New[[]string]("test", 16, time.Minute, time.Hour)

	c.Update("k", func(cur []string, ok bool) []string { return []string{"before", "tmp"} })
	c.Set("k", []string{"before"})

	assert.Equal(t, []string{"before"}, c.Peek("k").Data)
}

func TestCache_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - forced refetch bypasses freshness", func(t *testing.T) {
		c := New[int]("test", 16, time.Hour, time.Hour)
		var calls atomic.Int32

		fetch := func(ctx context.Context) (int, error) {
			return int(calls.Add(1)), nil
		}

		c.Get(ctx, "k", fetch)
		res := c.Refresh(ctx, "k", fetch)

		assert.Equal(t, 2, res.Data)
	})

	t.Run("Error - failed refresh keeps old data", func(t *testing.T) {
		c := New[int]("test", 16, time.Hour, time.Hour)

		c.Get(ctx, "k", func(ctx context.Context) (int, error) { return 7, nil })
		res := c.Refresh(ctx, "k", func(ctx context.Context) (int, error) {
			return 0, errors.New("offline again")
		})

		assert.True(t, res.HasData)
		assert.Equal(t, 7, res.Data)
		assert.Error(t, res.Err)
	})
}

func TestCache_Invalidate(t *testing.T) {
	c := New[int]("test", 16, time.Minute, time.Hour)

	c.Set("k", 1)
	c.Invalidate("k")

	assert.False(t, c.Peek("k").HasData)
}

func TestResult_Loading(t *testing.T) {
	assert.True(t, Result[int]{Fetching: true}.Loading())
	assert.False(t, Result[int]{HasData: true, Fetching: true}.Loading())
	assert.False(t, Result[int]{}.Loading())
}
