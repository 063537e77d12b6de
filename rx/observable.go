package rx

import (
	"context"
	"sync"
	"sync/atomic"
)

// Observer receives the signals of an Observable. Nil callbacks are ignored.
type Observer[T any] struct {
	OnNext      func(T)
	OnError     func(error)
	OnCompleted func()
}

// Next delivers an item.
func (o Observer[T]) Next(v T) {
	if o.OnNext != nil {
		o.OnNext(v)
	}
}

// Err delivers the terminal error.
func (o Observer[T]) Err(err error) {
	if o.OnError != nil {
		o.OnError(err)
	}
}

// Complete delivers the terminal completion.
func (o Observer[T]) Complete() {
	if o.OnCompleted != nil {
		o.OnCompleted()
	}
}

// terminateOnce forwards at most one terminal signal and drops items after it.
func (o Observer[T]) terminateOnce() Observer[T] {
	var stopped atomic.Bool
	return Observer[T]{
		OnNext: func(v T) {
			if !stopped.Load() {
				o.Next(v)
			}
		},
		OnError: func(err error) {
			if stopped.CompareAndSwap(false, true) {
				o.Err(err)
			}
		},
		OnCompleted: func() {
			if stopped.CompareAndSwap(false, true) {
				o.Complete()
			}
		},
	}
}

// Observable is a cold stream of zero or more items followed by either an
// error or a completion. Nothing runs until Subscribe is called.
type Observable[T any] struct {
	subscribe func(context.Context, Observer[T])
}

// Create builds an Observable from a producer. The producer must end with
// exactly one of Err or Complete.
func Create[T any](producer func(ctx context.Context, o Observer[T])) *Observable[T] {
	if producer == nil {
		producer = func(_ context.Context, o Observer[T]) { o.Complete() }
	}
	return &Observable[T]{subscribe: producer}
}

// Just emits items in order and completes. A cancelled context stops the
// emission with the context error.
func Just[T any](items ...T) *Observable[T] {
	values := append([]T(nil), items...)
	return Create(func(ctx context.Context, o Observer[T]) {
		for _, v := range values {
			if err := ctx.Err(); err != nil {
				o.Err(err)
				return
			}
			o.Next(v)
		}
		o.Complete()
	})
}

// Throw emits err without any items.
func Throw[T any](err error) *Observable[T] {
	return Create(func(_ context.Context, o Observer[T]) {
		o.Err(err)
	})
}

// Subscribe starts the stream. Without SubscribeOn the producer runs on the
// calling goroutine. The observer sees at most one terminal signal; a zero
// Observable terminates with ErrNilProducer.
func (o *Observable[T]) Subscribe(ctx context.Context, observer Observer[T]) {
	if ctx == nil {
		ctx = context.Background()
	}
	o.run(ctx, observer.terminateOnce())
}

func (o *Observable[T]) run(ctx context.Context, observer Observer[T]) {
	if o == nil || o.subscribe == nil {
		observer.Err(ErrNilProducer)
		return
	}
	o.subscribe(ctx, observer)
}

// SubscribeOn returns a new Observable whose producer runs on scheduler. The
// receiver is left untouched. A nil scheduler returns the receiver.
func (o *Observable[T]) SubscribeOn(scheduler Scheduler) *Observable[T] {
	if scheduler == nil {
		return o
	}
	parent := o
	return &Observable[T]{subscribe: func(ctx context.Context, observer Observer[T]) {
		err := scheduler.Schedule(ctx, func(runCtx context.Context) {
			defer guard(scheduler.Name(), observer.Err)
			parent.run(runCtx, observer)
		})
		if err != nil {
			observer.Err(err)
		}
	}}
}

// ToSlice subscribes and blocks until the stream terminates or ctx is done.
func (o *Observable[T]) ToSlice(ctx context.Context) ([]T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		mu    sync.Mutex
		items []T
		err   error
		once  sync.Once
		done  = make(chan struct{})
	)
	finish := func(e error) {
		once.Do(func() {
			mu.Lock()
			err = e
			mu.Unlock()
			close(done)
		})
	}

	o.Subscribe(ctx, Observer[T]{
		OnNext: func(v T) {
			mu.Lock()
			items = append(items, v)
			mu.Unlock()
		},
		OnError:     finish,
		OnCompleted: func() { finish(nil) },
	})

	select {
	case <-done:
		mu.Lock()
		defer mu.Unlock()
		return items, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Kind reports KindObservable.
func (o *Observable[T]) Kind() Kind { return KindObservable }

func (o *Observable[T]) applyScheduler(scheduler Scheduler) Source {
	return o.SubscribeOn(scheduler)
}
