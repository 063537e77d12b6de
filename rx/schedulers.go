package rx

import "sync"

// Names reported by the built-in schedulers.
const (
	NameImmediate   = "immediate"
	NameTrampoline  = "trampoline"
	NameNewThread   = "new-thread"
	NameComputation = "computation"
	NameIO          = "io"
)

var (
	computationOnce sync.Once
	computation     *PoolScheduler

	ioOnce sync.Once
	ioPool *CachedScheduler
)

// Immediate returns the scheduler that runs work inline.
func Immediate() Scheduler {
	return immediateScheduler{}
}

// Trampoline returns the scheduler that queues work on the calling goroutine.
func Trampoline() Scheduler {
	return trampolineScheduler{}
}

// NewThread returns the scheduler that starts a goroutine per task.
func NewThread() Scheduler {
	return newThreadScheduler{}
}

// Computation returns the shared bounded pool sized to GOMAXPROCS.
func Computation() Scheduler {
	computationOnce.Do(func() {
		computation = NewPoolScheduler(NameComputation, 0)
	})
	return computation
}

// IO returns the shared unbounded cached pool for blocking work.
func IO() Scheduler {
	ioOnce.Do(func() {
		ioPool = NewCachedScheduler(NameIO, DefaultKeepAlive)
	})
	return ioPool
}
