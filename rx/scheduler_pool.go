package rx

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultKeepAlive is how long an idle CachedScheduler worker waits for new
// work before exiting.
const DefaultKeepAlive = 60 * time.Second

// NewPoolScheduler returns a Scheduler that executes submitted tasks on a
// fixed-size worker pool. If size is zero or negative, GOMAXPROCS workers are
// used. The queue is unbounded so tasks may schedule more work on the same pool.
func NewPoolScheduler(name string, size int) *PoolScheduler {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
		if size <= 0 {
			size = 1
		}
	}

	pool := &PoolScheduler{
		name: name,
		size: size,
	}
	pool.cond = sync.NewCond(&pool.mu)
	pool.wg.Add(size)
	for i := 0; i < size; i++ {
		go pool.worker()
	}
	return pool
}

// PoolScheduler is a bounded worker pool.
type PoolScheduler struct {
	name string
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool

	wg   sync.WaitGroup
	once sync.Once
}

func (p *PoolScheduler) Name() string { return p.name }

// Size returns the number of workers.
func (p *PoolScheduler) Size() int { return p.size }

func (p *PoolScheduler) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		fn()
	}
}

func (p *PoolScheduler) Schedule(ctx context.Context, task func(context.Context)) error {
	if task == nil {
		return ErrNilTask
	}
	runCtx := bind(ctx, p.name)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return fmt.Errorf("%w: %s", ErrSchedulerStopped, p.name)
	}
	p.queue = append(p.queue, func() { task(runCtx) })
	p.cond.Signal()
	return nil
}

// Stop rejects new work, waits for queued tasks to drain and for workers to
// exit. It must not be called from a task running on the same pool.
func (p *PoolScheduler) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.cond.Broadcast()
		p.mu.Unlock()
		p.wg.Wait()
	})
}

// NewCachedScheduler returns an unbounded Scheduler that reuses idle workers
// and spawns new ones when none is idle. Idle workers exit after keepAlive;
// zero or negative selects DefaultKeepAlive.
func NewCachedScheduler(name string, keepAlive time.Duration) *CachedScheduler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &CachedScheduler{
		name:      name,
		keepAlive: keepAlive,
		handoff:   make(chan func()),
		quit:      make(chan struct{}),
	}
}

// CachedScheduler is an elastic pool for blocking work.
type CachedScheduler struct {
	name      string
	keepAlive time.Duration

	mu      sync.Mutex
	stopped bool
	handoff chan func()
	quit    chan struct{}

	live atomic.Int64
	wg   sync.WaitGroup
}

func (c *CachedScheduler) Name() string { return c.name }

// Workers returns the number of live workers, busy or idle.
func (c *CachedScheduler) Workers() int { return int(c.live.Load()) }

func (c *CachedScheduler) Schedule(ctx context.Context, task func(context.Context)) error {
	if task == nil {
		return ErrNilTask
	}
	runCtx := bind(ctx, c.name)
	job := func() { task(runCtx) }

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return fmt.Errorf("%w: %s", ErrSchedulerStopped, c.name)
	}
	select {
	case c.handoff <- job:
		return nil
	default:
	}
	c.live.Add(1)
	c.wg.Add(1)
	go c.worker(job)
	return nil
}

func (c *CachedScheduler) worker(first func()) {
	defer c.wg.Done()
	defer c.live.Add(-1)

	first()
	idle := time.NewTimer(c.keepAlive)
	defer idle.Stop()
	for {
		select {
		case job := <-c.handoff:
			job()
			idle.Reset(c.keepAlive)
		case <-idle.C:
			return
		case <-c.quit:
			return
		}
	}
}

// Stop rejects new work and waits for running tasks to finish.
func (c *CachedScheduler) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	close(c.quit)
	c.mu.Unlock()
	c.wg.Wait()
}
