package sender

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherKeepsPerKeyOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 3, QueueSize: 2})

	var mu sync.Mutex
	got := map[int64][]int{}
	for i := 0; i < 50; i++ {
		for _, key := range []int64{-100, 7, 42} {
			i, key := i, key
			require.NoError(t, d.Enqueue(context.Background(), key, "test", func() error {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
				return nil
			}))
		}
	}
	d.Close()

	for _, key := range []int64{-100, 7, 42} {
		require.Len(t, got[key], 50)
		for i, v := range got[key] {
			require.Equal(t, i, v)
		}
	}
}

func TestDispatcherCountsFailuresWithoutRetry(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	calls := 0
	require.NoError(t, d.Enqueue(context.Background(), 1, "fail", func() error {
		calls++
		return errors.New("Post https://api.telegram.org/bot123:ABC-def/sendMessage: timeout")
	}))
	d.Close()
	require.Equal(t, 1, calls)
	require.EqualValues(t, 1, d.ErrorCount())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	d.Close()
	err := d.Enqueue(context.Background(), 1, "late", func() error { return nil })
	require.ErrorIs(t, err, ErrQueueClosed)
	require.Error(t, d.Enqueue(context.Background(), 1, "nil", nil))
}

func TestRedactMasksToken(t *testing.T) {
	err := errors.New("Post https://api.telegram.org/bot123456:AA-bb_cc/getMe failed")
	require.Equal(t, "Post https://api.telegram.org/bot<redacted>/getMe failed", Redact(err))
	require.Empty(t, Redact(nil))
}
