package rx

import (
	"context"
	"sync/atomic"
)

// Single is a cold computation that yields exactly one value or an error.
type Single[T any] struct {
	subscribe func(context.Context, func(T, error))
}

// FromFunc builds a Single that calls fn on subscription. A nil fn yields
// ErrNilProducer.
func FromFunc[T any](fn func(ctx context.Context) (T, error)) *Single[T] {
	if fn == nil {
		return ThrowSingle[T](ErrNilProducer)
	}
	return &Single[T]{subscribe: func(ctx context.Context, emit func(T, error)) {
		emit(fn(ctx))
	}}
}

// JustSingle yields v.
func JustSingle[T any](v T) *Single[T] {
	return FromFunc(func(context.Context) (T, error) { return v, nil })
}

// ThrowSingle yields err.
func ThrowSingle[T any](err error) *Single[T] {
	return FromFunc(func(context.Context) (T, error) {
		var zero T
		return zero, err
	})
}

// Subscribe starts the computation. Nil callbacks are ignored.
func (s *Single[T]) Subscribe(ctx context.Context, onSuccess func(T), onError func(error)) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.run(ctx, func(v T, err error) {
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(v)
		}
	})
}

// run delivers at most one outcome to emit.
func (s *Single[T]) run(ctx context.Context, emit func(T, error)) {
	var done atomic.Bool
	once := func(v T, err error) {
		if done.CompareAndSwap(false, true) {
			emit(v, err)
		}
	}
	if s == nil || s.subscribe == nil {
		var zero T
		once(zero, ErrNilProducer)
		return
	}
	s.subscribe(ctx, once)
}

// SubscribeOn returns a new Single whose computation runs on scheduler. A nil
// scheduler returns the receiver.
func (s *Single[T]) SubscribeOn(scheduler Scheduler) *Single[T] {
	if scheduler == nil {
		return s
	}
	parent := s
	return &Single[T]{subscribe: func(ctx context.Context, emit func(T, error)) {
		fail := func(err error) {
			var zero T
			emit(zero, err)
		}
		err := scheduler.Schedule(ctx, func(runCtx context.Context) {
			defer guard(scheduler.Name(), fail)
			parent.run(runCtx, emit)
		})
		if err != nil {
			fail(err)
		}
	}}
}

// Get subscribes and blocks for the result or until ctx is done.
func (s *Single[T]) Get(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	type outcome struct {
		value T
		err   error
	}
	result := make(chan outcome, 1)
	s.run(ctx, func(v T, err error) {
		result <- outcome{value: v, err: err}
	})

	select {
	case out := <-result:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Kind reports KindSingle.
func (s *Single[T]) Kind() Kind { return KindSingle }

func (s *Single[T]) applyScheduler(scheduler Scheduler) Source {
	return s.SubscribeOn(scheduler)
}
