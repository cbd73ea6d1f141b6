package xsync

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemo(t *testing.T) {
	var (
		m     Memo[string, int]
		calls atomic.Int64
		wg    sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		key := "a"
		if i%2 == 0 {
			key = "bb"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := m.Do(key, func() int {
				calls.Add(1)
				return len(key)
			})
			assert.Equal(t, len(key), v)
		}()
	}
	wg.Wait()

	require.Equal(t, int64(2), calls.Load())
	require.Equal(t, 2, m.Len())

	v, cached := m.Do("a", func() int {
		panic("must not be called")
	})
	require.True(t, cached)
	require.Equal(t, 1, v)

	v, cached = m.Do("ccc", func() int { return 3 })
	require.False(t, cached)
	require.Equal(t, 3, v)
}
