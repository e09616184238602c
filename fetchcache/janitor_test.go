package fetchcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJanitor(t *testing.T) {
	t.Run("trims periodically", func(t *testing.T) {
		ctx := context.Background()
		store := NewMemory(MemoryConfig{Size: 1})
		for i := 0; i < 5; i++ {
			require.NoError(t, store.Set(ctx, fmt.Sprintf("http://host/%d", i), record("body", int64(i))))
		}

		j := NewJanitor(JanitorConfig{Store: store, Interval: 10 * time.Millisecond})
		j.Start()
		defer j.Stop()

		require.Eventually(t, func() bool {
			return store.Len() == 1
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		j := NewJanitor(JanitorConfig{Store: NewMemory(MemoryConfig{}), Interval: time.Hour})
		j.Start()
		j.Stop()
		j.Stop()
	})

	t.Run("stop before start", func(t *testing.T) {
		j := NewJanitor(JanitorConfig{Store: NewMemory(MemoryConfig{})})
		j.Stop()
	})
}
