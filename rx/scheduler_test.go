package rx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuiltinSchedulersAreDistinctAndNamed(t *testing.T) {
	cases := []struct {
		scheduler Scheduler
		name      string
	}{
		{Immediate(), NameImmediate},
		{Trampoline(), NameTrampoline},
		{NewThread(), NameNewThread},
		{Computation(), NameComputation},
		{IO(), NameIO},
	}

	seen := make(map[Scheduler]string, len(cases))
	for _, tc := range cases {
		if got := tc.scheduler.Name(); got != tc.name {
			t.Fatalf("expected scheduler name %q, got %q", tc.name, got)
		}
		if prev, dup := seen[tc.scheduler]; dup {
			t.Fatalf("scheduler %s shares its instance with %s", tc.name, prev)
		}
		seen[tc.scheduler] = tc.name
	}

	if Computation() != Computation() || IO() != IO() {
		t.Fatalf("expected shared pools to be singletons")
	}
}

func TestImmediateRunsInline(t *testing.T) {
	var ran bool
	var name string
	err := Immediate().Schedule(context.Background(), func(ctx context.Context) {
		ran = true
		name = SchedulerName(ctx)
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !ran {
		t.Fatalf("expected task to run before Schedule returned")
	}
	if name != NameImmediate {
		t.Fatalf("expected scheduler name %q, got %q", NameImmediate, name)
	}
}

func TestTrampolineQueuesNestedWork(t *testing.T) {
	var order []string
	err := Trampoline().Schedule(context.Background(), func(ctx context.Context) {
		order = append(order, "outer")
		_ = Trampoline().Schedule(ctx, func(ctx context.Context) {
			order = append(order, "first")
			_ = Trampoline().Schedule(ctx, func(context.Context) {
				order = append(order, "third")
			})
		})
		_ = Trampoline().Schedule(ctx, func(context.Context) {
			order = append(order, "second")
		})
		order = append(order, "outer-end")
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	want := []string{"outer", "outer-end", "first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestTrampolineAfterDrainRunsFresh(t *testing.T) {
	var captured context.Context
	_ = Trampoline().Schedule(context.Background(), func(ctx context.Context) {
		captured = ctx
	})

	var ran bool
	if err := Trampoline().Schedule(captured, func(context.Context) { ran = true }); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !ran {
		t.Fatalf("expected task on a drained trampoline context to run immediately")
	}
}

func TestTrampolineInsidePoolIsNotLost(t *testing.T) {
	pool := NewPoolScheduler("pool", 1)
	defer pool.Stop()

	done := make(chan string, 1)
	_ = Trampoline().Schedule(context.Background(), func(ctx context.Context) {
		_ = pool.Schedule(ctx, func(ctx context.Context) {
			_ = Trampoline().Schedule(ctx, func(ctx context.Context) {
				done <- SchedulerName(ctx)
			})
		})
	})

	select {
	case name := <-done:
		if name != NameTrampoline {
			t.Fatalf("expected trampoline, got %q", name)
		}
	case <-time.After(time.Second):
		t.Fatalf("nested trampoline task never ran")
	}
}

func TestNewThreadRunsAsynchronously(t *testing.T) {
	release := make(chan struct{})
	done := make(chan string, 1)
	err := NewThread().Schedule(context.Background(), func(ctx context.Context) {
		<-release
		done <- SchedulerName(ctx)
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	close(release)

	select {
	case name := <-done:
		if name != NameNewThread {
			t.Fatalf("expected %q, got %q", NameNewThread, name)
		}
	case <-time.After(time.Second):
		t.Fatalf("task did not run")
	}
}

func TestPoolSchedulerBoundsConcurrency(t *testing.T) {
	pool := NewPoolScheduler("bounded", 2)
	defer pool.Stop()

	var (
		active atomic.Int64
		peak   atomic.Int64
		wg     sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		err := pool.Schedule(context.Background(), func(context.Context) {
			defer wg.Done()
			current := active.Add(1)
			for {
				max := peak.Load()
				if current <= max || peak.CompareAndSwap(max, current) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
		})
		if err != nil {
			t.Fatalf("schedule %d: %v", i, err)
		}
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Fatalf("expected at most 2 concurrent tasks, observed %d", got)
	}
	if pool.Size() != 2 {
		t.Fatalf("expected size 2, got %d", pool.Size())
	}
}

func TestPoolSchedulerDefaultsToGOMAXPROCS(t *testing.T) {
	pool := NewPoolScheduler("default", 0)
	defer pool.Stop()
	if pool.Size() < 1 {
		t.Fatalf("expected at least one worker, got %d", pool.Size())
	}
}

func TestPoolSchedulerStopDrainsAndRejects(t *testing.T) {
	pool := NewPoolScheduler("stopping", 1)

	var ran atomic.Int64
	for i := 0; i < 5; i++ {
		if err := pool.Schedule(context.Background(), func(context.Context) { ran.Add(1) }); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	pool.Stop()
	pool.Stop()

	if got := ran.Load(); got != 5 {
		t.Fatalf("expected queued tasks to drain, ran %d", got)
	}
	if err := pool.Schedule(context.Background(), func(context.Context) {}); !errors.Is(err, ErrSchedulerStopped) {
		t.Fatalf("expected ErrSchedulerStopped, got %v", err)
	}
}

func TestCachedSchedulerWorkersExpire(t *testing.T) {
	cached := NewCachedScheduler("cached", 10*time.Millisecond)
	defer cached.Stop()

	done := make(chan string, 1)
	if err := cached.Schedule(context.Background(), func(ctx context.Context) {
		done <- SchedulerName(ctx)
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if name := <-done; name != "cached" {
		t.Fatalf("expected scheduler name cached, got %q", name)
	}

	deadline := time.Now().Add(2 * time.Second)
	for cached.Workers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected idle worker to expire, still %d live", cached.Workers())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCachedSchedulerStopRejects(t *testing.T) {
	cached := NewCachedScheduler("cached", time.Minute)

	var wg sync.WaitGroup
	wg.Add(1)
	_ = cached.Schedule(context.Background(), func(context.Context) { wg.Done() })
	wg.Wait()

	cached.Stop()
	if cached.Workers() != 0 {
		t.Fatalf("expected no workers after stop, got %d", cached.Workers())
	}
	if err := cached.Schedule(context.Background(), func(context.Context) {}); !errors.Is(err, ErrSchedulerStopped) {
		t.Fatalf("expected ErrSchedulerStopped, got %v", err)
	}
}

func TestScheduleRejectsNilTask(t *testing.T) {
	pool := NewPoolScheduler("nil", 1)
	defer pool.Stop()

	for _, s := range []Scheduler{Immediate(), Trampoline(), NewThread(), pool, IO()} {
		if err := s.Schedule(context.Background(), nil); !errors.Is(err, ErrNilTask) {
			t.Fatalf("%s: expected ErrNilTask, got %v", s.Name(), err)
		}
	}
}

func TestSchedulerNameOutsideScheduler(t *testing.T) {
	if name := SchedulerName(context.Background()); name != "" {
		t.Fatalf("expected empty name, got %q", name)
	}
}
