package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"edushelf-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type job struct {
	N int `json:"n"`
}

func newQueue(t *testing.T) (*Queue, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	q := New("test-topic", logger.NewNopLogger())
	t.Cleanup(func() {
		cancel()
		_ = q.Close()
	})
	return q, ctx
}

func TestQueueRunsJobsOneAtATimeInOrder(t *testing.T) {
	q, ctx := newQueue(t)

	var (
		active, maxActive atomic.Int32
		wg                sync.WaitGroup
		mu                sync.Mutex
		seen              []int
	)
	q.Register("count", func(ctx context.Context, payload json.RawMessage) error {
		defer wg.Done()
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)

		var j job
		assert.NoError(t, json.Unmarshal(payload, &j))
		mu.Lock()
		seen = append(seen, j.N)
		mu.Unlock()
		return nil
	})
	require.NoError(t, q.Start(ctx))

	want := make([]int, 20)
	for i := range want {
		want[i] = i
		wg.Add(1)
		require.NoError(t, q.Enqueue(ctx, "count", job{N: i}))
	}
	waitOrFail(t, &wg)

	assert.EqualValues(t, 1, maxActive.Load())
	assert.Equal(t, want, seen)
}

func TestQueueKeepsOrderAcrossRuns(t *testing.T) {
	for run := 0; run < 10; run++ {
		q, ctx := newQueue(t)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen []int
		)
		q.Register("count", func(ctx context.Context, payload json.RawMessage) error {
			defer wg.Done()
			var j job
			assert.NoError(t, json.Unmarshal(payload, &j))
			mu.Lock()
			seen = append(seen, j.N)
			mu.Unlock()
			return nil
		})
		require.NoError(t, q.Start(ctx))

		want := make([]int, 15)
		for i := range want {
			want[i] = i
			wg.Add(1)
			require.NoError(t, q.Enqueue(ctx, "count", job{N: i}))
		}
		waitOrFail(t, &wg)
		require.Equal(t, want, seen, "run %d", run)
	}
}

func TestQueueRunsJobsEnqueuedBeforeStart(t *testing.T) {
	q, ctx := newQueue(t)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen []int
	)
	q.Register("count", func(ctx context.Context, payload json.RawMessage) error {
		defer wg.Done()
		var j job
		assert.NoError(t, json.Unmarshal(payload, &j))
		mu.Lock()
		seen = append(seen, j.N)
		mu.Unlock()
		return nil
	})

	for i := 0; i < 3; i++ {
		wg.Add(1)
		require.NoError(t, q.Enqueue(ctx, "count", job{N: i}))
	}
	assert.Equal(t, 3, q.Len())

	require.NoError(t, q.Start(ctx))
	waitOrFail(t, &wg)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestQueueRejectsJobsAfterClose(t *testing.T) {
	q, ctx := newQueue(t)
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Enqueue(ctx, "count", job{}), ErrClosed)
}

func TestQueueSurvivesFailingAndPanickingJobs(t *testing.T) {
	q, ctx := newQueue(t)

	var wg sync.WaitGroup
	q.Register("fail", func(ctx context.Context, payload json.RawMessage) error {
		defer wg.Done()
		return errors.New("provider down")
	})
	q.Register("panic", func(ctx context.Context, payload json.RawMessage) error {
		defer wg.Done()
		panic("boom")
	})
	var ok atomic.Bool
	q.Register("ok", func(ctx context.Context, payload json.RawMessage) error {
		defer wg.Done()
		ok.Store(true)
		return nil
	})
	require.NoError(t, q.Start(ctx))

	wg.Add(3)
	require.NoError(t, q.Enqueue(ctx, "fail", job{}))
	require.NoError(t, q.Enqueue(ctx, "panic", job{}))
	require.NoError(t, q.Enqueue(ctx, "ok", job{}))
	require.NoError(t, q.Enqueue(ctx, "unknown", job{}))
	waitOrFail(t, &wg)

	assert.True(t, ok.Load())
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs did not complete")
	}
}
