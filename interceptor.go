package subscribeon

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bpradana/subscribeon/rx"
)

// now is overridden in tests to provide deterministic timings.
var now = time.Now

var (
	// ErrNilCall indicates Intercept was given no original call to run.
	ErrNilCall = errors.New("subscribeon: call must not be nil")
	// ErrResultType indicates a decorated call produced a value its declared
	// return type cannot hold.
	ErrResultType = errors.New("subscribeon: result does not match declared return type")
)

const (
	reasonNotAnnotated   = "subscribe-on annotation not present"
	reasonUnsupportedRet = "subscribe-on annotated method return type has to be either Observable or Single"
)

// Proceed invokes the original call.
type Proceed func(ctx context.Context) (any, error)

// Option configures an Interceptor.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	hooks    Hooks
	registry *Registry
	selector func(Strategy) rx.Scheduler
}

func defaultOptions() options {
	return options{
		logger:   log.Logger.With().Str("component", "subscribeon").Logger(),
		registry: NewRegistry(),
		selector: SchedulerFor,
	}
}

// WithLogger sets the logger used for validation warnings and call traces.
func WithLogger(logger zerolog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithHooks registers hooks applied to every intercepted call.
func WithHooks(h Hooks) Option {
	return func(opts *options) {
		opts.hooks = opts.hooks.Merge(h)
	}
}

// WithRegistry supplies the annotations consulted for methods that carry no
// explicit annotation.
func WithRegistry(registry *Registry) Option {
	return func(opts *options) {
		if registry != nil {
			opts.registry = registry
		}
	}
}

// WithSchedulerSelector replaces SchedulerFor, e.g. to route strategies to
// isolated pools.
func WithSchedulerSelector(selector func(Strategy) rx.Scheduler) Option {
	return func(opts *options) {
		if selector != nil {
			opts.selector = selector
		}
	}
}

// Interceptor applies the annotated scheduler to containers returned by the
// calls it wraps.
type Interceptor struct {
	logger   zerolog.Logger
	hooks    Hooks
	registry *Registry
	selector func(Strategy) rx.Scheduler
}

// New constructs an Interceptor.
func New(opts ...Option) *Interceptor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Interceptor{
		logger:   o.logger,
		hooks:    o.hooks,
		registry: o.registry,
		selector: o.selector,
	}
}

// Registry returns the annotations consulted by the interceptor.
func (in *Interceptor) Registry() *Registry {
	return in.registry
}

// Intercept runs proceed and, when m is annotated and declares a supported
// container return type, subscribes the returned container on the selected
// scheduler. Errors from proceed are returned unchanged. A failed validation
// only logs a warning and returns the unmodified result.
func (in *Interceptor) Intercept(ctx context.Context, m Method, proceed Proceed) (any, error) {
	if proceed == nil {
		return nil, ErrNilCall
	}
	if ctx == nil {
		ctx = context.Background()
	}

	meta := in.registry.Extract(m)
	event := CallEvent{
		ID:        uuid.NewString(),
		Method:    m.Name,
		StartedAt: now(),
	}
	if meta.Present {
		event.Strategy = meta.Annotation.Value
	}

	if reason, ok := validate(meta); !ok {
		in.logger.Warn().
			Str("method", m.Name).
			Str("call_id", event.ID).
			Msg(reason)
		event.Outcome = OutcomeSkipped
		event.Reason = reason
		in.invokeHook(ctx, in.hooks.OnSkip, event)

		result, err := proceed(ctx)
		event.Err = err
		in.finish(ctx, event)
		return result, err
	}

	result, err := proceed(ctx)
	if err != nil {
		event.Outcome = OutcomeFailed
		event.Err = err
		in.invokeHook(ctx, in.hooks.OnFailure, event)
		in.finish(ctx, event)
		return result, err
	}
	if isNil(result) {
		event.Outcome = OutcomeNilResult
		in.invokeHook(ctx, in.hooks.OnSuccess, event)
		in.finish(ctx, event)
		return result, nil
	}

	wrapped, err := ToSubscribable(result)
	if err != nil {
		in.logger.Warn().
			Str("method", m.Name).
			Str("call_id", event.ID).
			Err(err).
			Msg("returned value is not a reactive container")
		event.Outcome = OutcomeSkipped
		event.Reason = err.Error()
		in.invokeHook(ctx, in.hooks.OnSkip, event)
		in.finish(ctx, event)
		return result, nil
	}

	scheduler := in.selector(meta.Annotation.Value)
	out := wrapped.SubscribeOn(scheduler).Unwrap()

	event.Outcome = OutcomeWrapped
	event.Scheduler = scheduler.Name()
	in.logger.Debug().
		Str("method", m.Name).
		Str("call_id", event.ID).
		Stringer("strategy", meta.Annotation.Value).
		Str("scheduler", event.Scheduler).
		Stringer("kind", wrapped.Kind()).
		Msg("subscribed on scheduler")
	in.invokeHook(ctx, in.hooks.OnSuccess, event)
	in.finish(ctx, event)
	return out, nil
}

func validate(meta Metadata) (string, bool) {
	if !meta.Present {
		return reasonNotAnnotated, false
	}
	if !IsSupportedType(meta.Method.ReturnType) {
		return reasonUnsupportedRet, false
	}
	return "", true
}

func (in *Interceptor) finish(ctx context.Context, event CallEvent) {
	event.Duration = now().Sub(event.StartedAt)
	in.invokeHook(ctx, in.hooks.OnFinish, event)
}

func (in *Interceptor) invokeHook(ctx context.Context, hook HookFunc, event CallEvent) {
	if hook != nil {
		hook(ctx, event)
	}
}

// MethodOption configures the Method built by Decorate.
type MethodOption func(*Method)

// Annotated attaches a SubscribeOn annotation with the given strategy.
func Annotated(strategy Strategy) MethodOption {
	return func(m *Method) {
		m.Annotation = &SubscribeOn{Value: strategy}
	}
}

// Decorate wraps fn so every call goes through in.Intercept. The declared
// return type R is what gets validated; without Annotated the annotation is
// looked up by name in the interceptor registry.
func Decorate[R any](in *Interceptor, name string, fn func(context.Context) (R, error), opts ...MethodOption) func(context.Context) (R, error) {
	m := Method{
		Name:       name,
		ReturnType: reflect.TypeFor[R](),
	}
	for _, opt := range opts {
		opt(&m)
	}

	return func(ctx context.Context) (R, error) {
		var zero R
		if fn == nil {
			return zero, ErrNilCall
		}
		result, err := in.Intercept(ctx, m, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
		if result == nil {
			return zero, err
		}
		typed, ok := result.(R)
		if !ok {
			return zero, fmt.Errorf("%w: %s returned %T", ErrResultType, name, result)
		}
		return typed, err
	}
}
