package subscribeon

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bpradana/subscribeon/rx"
)

// ErrUnsupportedContainer indicates a value that is not an rx container.
var ErrUnsupportedContainer = errors.New("subscribeon: unsupported reactive container")

// Subscribable wraps exactly one reactive container. It is immutable:
// SubscribeOn returns a new wrapper of the same kind.
type Subscribable struct {
	kind   rx.Kind
	source rx.Source
}

// ToSubscribable wraps v, which must be an *rx.Observable or *rx.Single.
func ToSubscribable(v any) (Subscribable, error) {
	source, ok := v.(rx.Source)
	if !ok || isNil(v) {
		return Subscribable{}, fmt.Errorf("%w: %T", ErrUnsupportedContainer, v)
	}
	switch kind := source.Kind(); kind {
	case rx.KindObservable, rx.KindSingle:
		return Subscribable{kind: kind, source: source}, nil
	default:
		return Subscribable{}, fmt.Errorf("%w: kind %s", ErrUnsupportedContainer, kind)
	}
}

// IsSupportedType reports whether a declared return type is a supported container.
func IsSupportedType(t reflect.Type) bool {
	return rx.IsSourceType(t)
}

// Kind reports the wrapped container variant.
func (s Subscribable) Kind() rx.Kind {
	return s.kind
}

// SubscribeOn binds the wrapped container to scheduler using the container's
// own SubscribeOn.
func (s Subscribable) SubscribeOn(scheduler rx.Scheduler) Subscribable {
	switch s.kind {
	case rx.KindObservable, rx.KindSingle:
		return Subscribable{
			kind:   s.kind,
			source: rx.ApplyScheduler(s.source, scheduler),
		}
	default:
		return s
	}
}

// Unwrap returns the concrete container.
func (s Subscribable) Unwrap() any {
	if s.source == nil {
		return nil
	}
	return s.source
}

// isNil reports nil interfaces and typed nil pointers, maps, slices, funcs,
// channels and interfaces.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
