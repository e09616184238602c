package fetchcache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(body string, ts int64) *Record {
	return &Record{Code: 200, Status: "OK", Body: []byte(body), Timestamp: ts}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("get and set round trip", func(t *testing.T) {
		m := NewMemory(MemoryConfig{})
		require.NoError(t, m.Set(ctx, "http://a", record("a-body", 1)))

		rec, err := m.Get(ctx, "http://a")
		require.NoError(t, err)
		assert.Equal(t, []byte("a-body"), rec.Body)
	})

	t.Run("miss returns ErrNotFound", func(t *testing.T) {
		m := NewMemory(MemoryConfig{})
		_, err := m.Get(ctx, "http://nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set is an upsert", func(t *testing.T) {
		m := NewMemory(MemoryConfig{})
		require.NoError(t, m.Set(ctx, "http://a", record("old", 1)))
		require.NoError(t, m.Set(ctx, "http://a", record("new", 2)))

		rec, err := m.Get(ctx, "http://a")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), rec.Body)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("records are isolated copies", func(t *testing.T) {
		m := NewMemory(MemoryConfig{})
		require.NoError(t, m.Set(ctx, "http://a", record("body", 1)))

		rec, err := m.Get(ctx, "http://a")
		require.NoError(t, err)
		rec.Body[0] = 'X'

		again, err := m.Get(ctx, "http://a")
		require.NoError(t, err)
		assert.Equal(t, []byte("body"), again.Body)
	})
}

func TestMemoryTrim(t *testing.T) {
	ctx := context.Background()

	t.Run("drops the oldest insertions", func(t *testing.T) {
		m := NewMemory(MemoryConfig{Size: 3})
		for i, url := range []string{"http://a", "http://b", "http://c", "http://d"} {
			require.NoError(t, m.Set(ctx, url, record(url, int64(i))))
		}
		require.NoError(t, m.Trim(ctx))

		_, err := m.Get(ctx, "http://a")
		assert.ErrorIs(t, err, ErrNotFound)
		for _, url := range []string{"http://b", "http://c", "http://d"} {
			_, err := m.Get(ctx, url)
			assert.NoError(t, err, url)
		}
	})

	t.Run("reinsertion re-dates", func(t *testing.T) {
		m := NewMemory(MemoryConfig{Size: 2})
		require.NoError(t, m.Set(ctx, "http://a", record("a", 1)))
		require.NoError(t, m.Set(ctx, "http://b", record("b", 2)))
		require.NoError(t, m.Set(ctx, "http://a", record("a2", 3)))
		require.NoError(t, m.Set(ctx, "http://c", record("c", 4)))
		require.NoError(t, m.Trim(ctx))

		_, err := m.Get(ctx, "http://b")
		assert.ErrorIs(t, err, ErrNotFound)
		for _, url := range []string{"http://a", "http://c"} {
			_, err := m.Get(ctx, url)
			assert.NoError(t, err, url)
		}
	})

	t.Run("under capacity untouched", func(t *testing.T) {
		m := NewMemory(MemoryConfig{Size: 10})
		require.NoError(t, m.Set(ctx, "http://a", record("a", 1)))
		require.NoError(t, m.Trim(ctx))
		assert.Equal(t, 1, m.Len())
	})
}

func TestMemoryConcurrency(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(MemoryConfig{Size: 16})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				url := fmt.Sprintf("http://host/%d", j%32)
				_ = m.Set(ctx, url, record("body", int64(i*100+j)))
				_, _ = m.Get(ctx, url)
				_ = m.Trim(ctx)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, m.Trim(ctx))
	assert.LessOrEqual(t, m.Len(), 16)
}
