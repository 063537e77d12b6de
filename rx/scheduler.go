package rx

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSchedulerStopped indicates work was submitted to a scheduler after Stop.
	ErrSchedulerStopped = errors.New("rx: scheduler stopped")
	// ErrNilTask indicates a nil task was submitted to a scheduler.
	ErrNilTask = errors.New("rx: task must not be nil")
	// ErrNilProducer is delivered by a container that has nothing to run.
	ErrNilProducer = errors.New("rx: container has no producer")
)

// Scheduler decides which execution context runs a unit of work.
//
// Tasks receive a context derived from the one passed to Schedule that carries
// the scheduler name, see SchedulerName.
type Scheduler interface {
	Name() string
	Schedule(ctx context.Context, task func(context.Context)) error
}

// PanicError wraps a panic recovered from work running on a scheduler.
type PanicError struct {
	Scheduler string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rx: panic on scheduler %s: %v", e.Scheduler, e.Value)
}

type schedulerNameKey struct{}

type trampolineKey struct{}

// SchedulerName reports the name of the scheduler running the current task, or
// "" when ctx was not produced by a scheduler.
func SchedulerName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(schedulerNameKey{}).(string)
	return name
}

// bind tags ctx with the scheduler name and detaches it from any trampoline
// queue owned by another execution context.
func bind(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, schedulerNameKey{}, name)
	return context.WithValue(ctx, trampolineKey{}, (*trampolineQueue)(nil))
}

// immediateScheduler runs every task inline on the calling goroutine.
type immediateScheduler struct{}

func (immediateScheduler) Name() string { return NameImmediate }

func (immediateScheduler) Schedule(ctx context.Context, task func(context.Context)) error {
	if task == nil {
		return ErrNilTask
	}
	task(bind(ctx, NameImmediate))
	return nil
}

// newThreadScheduler runs every task on its own goroutine.
type newThreadScheduler struct{}

func (newThreadScheduler) Name() string { return NameNewThread }

func (newThreadScheduler) Schedule(ctx context.Context, task func(context.Context)) error {
	if task == nil {
		return ErrNilTask
	}
	runCtx := bind(ctx, NameNewThread)
	go task(runCtx)
	return nil
}

// trampolineScheduler runs a task on the calling goroutine once the task
// currently running on the same trampoline has returned.
type trampolineScheduler struct{}

func (trampolineScheduler) Name() string { return NameTrampoline }

func (trampolineScheduler) Schedule(ctx context.Context, task func(context.Context)) error {
	if task == nil {
		return ErrNilTask
	}
	if ctx != nil {
		if queue, _ := ctx.Value(trampolineKey{}).(*trampolineQueue); queue != nil && queue.push(task) {
			return nil
		}
	}

	queue := &trampolineQueue{}
	runCtx := context.WithValue(bind(ctx, NameTrampoline), trampolineKey{}, queue)
	task(runCtx)
	for {
		next, ok := queue.pop()
		if !ok {
			return nil
		}
		next(runCtx)
	}
}

type trampolineQueue struct {
	mu    sync.Mutex
	tasks []func(context.Context)
	done  bool
}

// push enqueues task unless the queue has already been drained.
func (q *trampolineQueue) push(task func(context.Context)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done {
		return false
	}
	q.tasks = append(q.tasks, task)
	return true
}

func (q *trampolineQueue) pop() (func(context.Context), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		q.done = true
		return nil, false
	}
	next := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return next, true
}

// guard converts a panic in scheduled work into a PanicError signal.
func guard(scheduler string, onError func(error)) {
	if recovered := recover(); recovered != nil {
		onError(&PanicError{
			Scheduler: scheduler,
			Value:     recovered,
		})
	}
}
