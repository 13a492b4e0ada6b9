package linescan

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Splittable is the split/advance protocol a scan exposes to its drivers.
// S is the type of the split-off parts, R the type of the records.
type Splittable[S any, R any] interface {
	// TrySplit hands part of the remaining work to a new S.
	TrySplit(ctx context.Context) (S, bool, error)

	// TryAdvance returns the next record, or false once this part is exhausted.
	TryAdvance(ctx context.Context) (R, bool, error)
}

// ForEach splits root into at most parallelism parts and drains every part
// on its own goroutine, calling fn for each record. fn is called
// concurrently from different goroutines. The first error from a part or
// from fn cancels the others and is returned.
//
// ForEach does not close root; callers that stop early should close it to
// release parked streams.
func ForEach[S Splittable[S, R], R any](ctx context.Context, root S, parallelism int, fn func(R) error) error {
	if parallelism < 1 {
		parallelism = 1
	}

	parts := []S{root}
	for len(parts) < parallelism {
		part, ok, err := root.TrySplit(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		parts = append(parts, part)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		g.Go(func() error {
			for {
				rec, ok, err := part.TryAdvance(gctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := fn(rec); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}

// Collect drains root with ForEach and returns every record.
// Records of one file keep their relative order; order across files is unspecified.
func Collect[T any](ctx context.Context, root *Worker[T], parallelism int) ([]Record[T], error) {
	var (
		mu  sync.Mutex
		out []Record[T]
	)
	err := ForEach(ctx, root, parallelism, func(rec Record[T]) error {
		mu.Lock()
		out = append(out, rec)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Drain advances a single worker until it is exhausted, without splitting.
// The records read before a failure are returned with the error.
func Drain[T any](ctx context.Context, w *Worker[T]) ([]Record[T], error) {
	var out []Record[T]
	for {
		rec, ok, err := w.TryAdvance(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, rec)
	}
}
