package jobqueue

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueLifecycle(t *testing.T) {
	q := NewQueueWithIDs(1, 1)
	require.NoError(t, q.Add("a"))
	require.ErrorIs(t, q.Add("a"), ErrJobAlreadyQueued)
	require.NoError(t, q.Add("b"))
	require.ErrorIs(t, q.Add("c"), ErrQueueFull)
	require.ErrorIs(t, q.Start("x"), ErrJobNotFound)

	require.NoError(t, q.Start("a"))
	require.ErrorIs(t, q.Start("a"), ErrJobAlreadyStarted)
	running, waiting := q.GetSize()
	require.Equal(t, 1, running)
	require.Equal(t, 1, waiting)
	require.ErrorIs(t, q.Remove("a"), ErrJobRunning)
	require.ErrorIs(t, q.End("b", nil), ErrJobNotRunning)
	require.NoError(t, q.End("a", nil))

	require.NoError(t, q.Start("b"))
	require.NoError(t, q.End("b", errors.New("boom")))
	status, jerr, ok := q.GetJobStatus("b")
	require.True(t, ok)
	require.Equal(t, JobFailed, status)
	require.EqualError(t, jerr, "boom")
	require.Equal(t, []string{"b"}, q.FailedIDs())
	require.Equal(t, map[string]JobStatus{"a": JobFinished, "b": JobFailed}, q.GetJobs())

	require.NoError(t, q.Remove("a"))
	_, _, ok = q.GetJobStatus("a")
	require.False(t, ok)

	q.SetNoAccept(errors.New("closed"))
	require.EqualError(t, q.Add("d"), "closed")
}

func TestQueueConcurrencyLimit(t *testing.T) {
	q := NewQueueWithIDs(2, 10)
	var current, peak atomic.Int32
	wg := new(sync.WaitGroup)
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		require.NoError(t, q.Add(id))
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			require.NoError(t, q.Start(id))
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			require.NoError(t, q.End(id, nil))
		}(id)
	}
	wg.Wait()
	require.LessOrEqual(t, peak.Load(), int32(2))
	require.Empty(t, q.FailedIDs())
}
