// Package loop runs recurring tasks.
package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after a task run.
//
// The zero value means "continue without interval".
type Next struct {
	err      error
	quit     bool
	interval time.Duration
}

func (n Next) String() string {
	switch {
	case n.err != nil:
		return fmt.Sprintf("[break] with error: %v", n.err)
	case n.quit:
		return "[break] without error"
	default:
		return fmt.Sprintf("[continue] interval: %s", n.interval)
	}
}

// Continue runs the task again after interval.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break stops the loop. err may be nil.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task receives the value returned by its previous run (or init, at the first run).
type Task[T any] func(context.Context, T) (T, Next)

// Option modifies how each run of a task is invoked.
type Option func(*run) *run

type run struct {
	ctx     context.Context
	cleanup []func()
}

// WithTimeout sets a timeout on the context passed to each task run.
func WithTimeout(d time.Duration) Option {
	return func(r *run) *run {
		ctx, cancel := context.WithTimeout(r.ctx, d)
		return &run{ctx: ctx, cleanup: append(r.cleanup, cancel)}
	}
}

// Start calls task repeatedly until it returns Break or ctx is done.
//
// It returns the last value the task returned (or init when ctx is done before
// the first run) and the error passed to Break, or ctx.Err() .
func Start[T any](ctx context.Context, init T, task Task[T], options ...Option) (T, error) {
	if err := ctx.Err(); err != nil {
		return init, err
	}

	value := init
	for {
		v, next := once(ctx, value, task, options)
		if next.err != nil {
			return v, next.err
		}
		value = v
		if next.quit {
			return value, nil
		}

		timer := time.NewTimer(next.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

func once[T any](ctx context.Context, value T, task Task[T], options []Option) (T, Next) {
	r := &run{ctx: ctx}
	for _, opt := range options {
		r = opt(r)
	}
	defer func() {
		for i := len(r.cleanup) - 1; 0 <= i; i-- {
			r.cleanup[i]()
		}
	}()
	return task(r.ctx, value)
}
