package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"calendar-sync/core/batch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessInBatches_PreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	results := batch.ProcessInBatches(context.Background(), items, batch.Options{Size: 3},
		func(ctx context.Context, n int) (string, error) {
			// Later items finish first within a chunk
			time.Sleep(time.Duration(10-n) * time.Millisecond)
			return fmt.Sprintf("item-%d", n), nil
		})

	require.Len(t, results, len(items))
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("item-%d", items[i]), r.Value)
	}
}

func TestProcessInBatches_RecordsEveryOutcome(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var calls atomic.Int32

	results := batch.ProcessInBatches(context.Background(), items, batch.Options{Size: 2},
		func(ctx context.Context, n int) (int, error) {
			calls.Add(1)
			if n%2 == 0 {
				return 0, fmt.Errorf("item %d failed", n)
			}
			return n * 10, nil
		})

	assert.Equal(t, int32(5), calls.Load(), "a failure must not stop siblings or later chunks")
	assert.Equal(t, 2, batch.Failed(results))

	assert.True(t, results[0].OK())
	assert.Equal(t, 10, results[0].Value)
	assert.EqualError(t, results[1].Err, "item 2 failed")
	assert.True(t, results[2].OK())
	assert.EqualError(t, results[3].Err, "item 4 failed")
	assert.Equal(t, 50, results[4].Value)
}

func TestProcessInBatches_BoundsConcurrency(t *testing.T) {
	items := make([]int, 20)
	var inFlight, peak atomic.Int32

	batch.ProcessInBatches(context.Background(), items, batch.Options{Size: 4},
		func(ctx context.Context, _ int) (struct{}, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}, nil
		})

	assert.LessOrEqual(t, peak.Load(), int32(4))
	assert.Equal(t, int32(0), inFlight.Load())
}

func TestProcessInBatches_PacesBetweenChunks(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	delay := 20 * time.Millisecond

	start := time.Now()
	batch.ProcessInBatches(context.Background(), items, batch.Options{Size: 2, Delay: delay},
		func(ctx context.Context, n int) (int, error) { return n, nil })

	// Three chunks means two pauses
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestProcessInBatches_ZeroSizeRunsSingleChunk(t *testing.T) {
	items := []int{1, 2, 3}
	var inFlight, peak atomic.Int32

	results := batch.ProcessInBatches(context.Background(), items, batch.Options{Size: 0, Delay: time.Hour},
		func(ctx context.Context, n int) (int, error) {
			cur := inFlight.Add(1)
			if cur > peak.Load() {
				peak.Store(cur)
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return n, nil
		})

	assert.Len(t, results, 3)
	assert.Equal(t, 0, batch.Failed(results))
}

func TestProcessInBatches_CancelledBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := []int{1, 2, 3, 4}

	results := batch.ProcessInBatches(ctx, items, batch.Options{Size: 2, Delay: time.Second},
		func(ctx context.Context, n int) (int, error) {
			cancel()
			return n, nil
		})

	assert.True(t, results[0].OK())
	assert.True(t, results[1].OK())
	assert.True(t, errors.Is(results[2].Err, context.Canceled))
	assert.True(t, errors.Is(results[3].Err, context.Canceled))
}

func TestProcessInBatches_Empty(t *testing.T) {
	results := batch.ProcessInBatches(context.Background(), []int(nil), batch.Options{Size: 5},
		func(ctx context.Context, n int) (int, error) {
			t.Fatal("fn must not be called")
			return 0, nil
		})
	assert.Empty(t, results)
}
