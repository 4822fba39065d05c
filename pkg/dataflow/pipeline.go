// Package dataflow runs a function over a stream of values with a bounded
// number of workers.
package dataflow

import (
	"context"
	"sort"
	"sync"
)

// Stream is a read-only channel of values.
type Stream[T any] <-chan T

// From creates a stream from a slice of values.
func From[T any](ctx context.Context, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// Result is the outcome of one Map call. Index is the position of Input in
// the source order.
type Result[In, Out any] struct {
	Index int
	Input In
	Value Out
	Err   error
}

type indexed[T any] struct {
	index int
	value T
}

// Map applies fn to every value of input. Every value yields exactly one
// Result, failed or not. Results arrive in completion order; use Collect to
// restore source order.
func Map[In, Out any](ctx context.Context, input Stream[In], fn func(context.Context, In) (Out, error), opts ...Option) Stream[Result[In, Out]] {
	cfg := newConfig(opts)

	numbered := make(chan indexed[In])
	go func() {
		defer close(numbered)
		i := 0
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-input:
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
					return
				case numbered <- indexed[In]{index: i, value: v}:
				}
				i++
			}
		}
	}()

	out := make(chan Result[In, Out], cfg.bufferSize)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for msg := range numbered {
			val, err := fn(ctx, msg.value)
			select {
			case <-ctx.Done():
				return
			case out <- Result[In, Out]{Index: msg.index, Input: msg.value, Value: val, Err: err}:
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Collect drains results and returns them sorted by source position.
func Collect[In, Out any](results Stream[Result[In, Out]]) []Result[In, Out] {
	var all []Result[In, Out]
	for r := range results {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })
	return all
}
