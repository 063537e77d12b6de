package rx

import "reflect"

// Kind identifies a reactive container variant.
type Kind int

const (
	KindObservable Kind = iota + 1
	KindSingle
)

func (k Kind) String() string {
	switch k {
	case KindObservable:
		return "observable"
	case KindSingle:
		return "single"
	default:
		return "unknown"
	}
}

// Source is implemented by *Observable[T] and *Single[T] only.
type Source interface {
	Kind() Kind
	applyScheduler(Scheduler) Source
}

var sourceType = reflect.TypeFor[Source]()

// ApplyScheduler rebinds src with its own SubscribeOn. The result has the same
// concrete type as src.
func ApplyScheduler(src Source, scheduler Scheduler) Source {
	if src == nil {
		return nil
	}
	return src.applyScheduler(scheduler)
}

// IsSourceType reports whether values of t are reactive containers.
func IsSourceType(t reflect.Type) bool {
	return t != nil && t.Implements(sourceType)
}
