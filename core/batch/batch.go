package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options controls chunking and pacing.
type Options struct {
	// Size is the number of operations run concurrently. Zero or less runs every
	// item in a single chunk.
	Size int

	// Delay is the pause between two chunks. It is not applied after the last one.
	Delay time.Duration
}

// Result is the outcome of one item.
type Result[R any] struct {
	Value R
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result[R]) OK() bool {
	return r.Err == nil
}

// ProcessInBatches runs fn for every item, opts.Size at a time, and returns one
// Result per item in input order. Every operation of a chunk is awaited whatever
// its outcome. If ctx is cancelled while waiting between chunks, the items that
// never started get ctx.Err() as their error.
func ProcessInBatches[T, R any](ctx context.Context, items []T, opts Options, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	size := opts.Size
	if size <= 0 {
		size = len(items)
	}

	for start := 0; start < len(items); start += size {
		if start > 0 && opts.Delay > 0 {
			if err := sleep(ctx, opts.Delay); err != nil {
				for i := start; i < len(items); i++ {
					results[i].Err = err
				}
				return results
			}
		}

		end := min(start+size, len(items))

		// Goroutines never return an error so Wait never short-circuits; each one
		// writes only its own slot.
		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				v, err := fn(ctx, items[i])
				results[i] = Result[R]{Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}

// Failed returns the number of results carrying an error.
func Failed[R any](results []Result[R]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
