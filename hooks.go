package subscribeon

import (
	"context"
	"time"
)

// Outcome captures how an intercepted call was handled.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeWrapped   Outcome = "wrapped"
	OutcomeNilResult Outcome = "nil_result"
	OutcomeFailed    Outcome = "failed"
)

// CallEvent is passed to hook callbacks to describe an intercepted call.
type CallEvent struct {
	ID        string
	Method    string
	Strategy  Strategy
	Scheduler string
	Outcome   Outcome
	// Reason explains a skipped call.
	Reason    string
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// HookFunc is invoked for lifecycle notifications.
type HookFunc func(context.Context, CallEvent)

// Hooks aggregates optional lifecycle callbacks.
type Hooks struct {
	OnSkip    HookFunc
	OnSuccess HookFunc
	OnFailure HookFunc
	OnFinish  HookFunc
}

// Merge combines two hook sets, running the receiver first.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnSkip:    chainHooks(h.OnSkip, other.OnSkip),
		OnSuccess: chainHooks(h.OnSuccess, other.OnSuccess),
		OnFailure: chainHooks(h.OnFailure, other.OnFailure),
		OnFinish:  chainHooks(h.OnFinish, other.OnFinish),
	}
}

func chainHooks(first, second HookFunc) HookFunc {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	default:
		return func(ctx context.Context, event CallEvent) {
			first(ctx, event)
			second(ctx, event)
		}
	}
}
