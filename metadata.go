package subscribeon

import (
	"reflect"
	"sync"
)

// SubscribeOn marks a method whose returned container should subscribe on
// the scheduler selected by Value.
type SubscribeOn struct {
	Value Strategy
}

// Method describes an intercepted call.
type Method struct {
	Name       string
	ReturnType reflect.Type
	// Annotation, when set, takes precedence over the interceptor registry.
	Annotation *SubscribeOn
}

// Metadata is the outcome of inspecting a Method for its annotation.
type Metadata struct {
	Method     Method
	Annotation SubscribeOn
	Present    bool
}

// Registry holds annotations keyed by method name. It is safe for concurrent
// use; the zero value is empty and ready.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]SubscribeOn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]SubscribeOn)}
}

// Annotate records the strategy for the named method, replacing any previous one.
func (r *Registry) Annotate(name string, strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.methods == nil {
		r.methods = make(map[string]SubscribeOn)
	}
	r.methods[name] = SubscribeOn{Value: strategy}
}

// Remove drops the annotation for name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.methods, name)
}

// Lookup returns the annotation registered for name.
func (r *Registry) Lookup(name string) (SubscribeOn, bool) {
	if r == nil {
		return SubscribeOn{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ann, ok := r.methods[name]
	return ann, ok
}

// Len returns the number of annotated methods.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.methods)
}

// Names returns the annotated method names in no particular order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	return names
}

// Extract inspects m, falling back to the registry when m carries no explicit
// annotation.
func (r *Registry) Extract(m Method) Metadata {
	meta := Metadata{Method: m}
	if m.Annotation != nil {
		meta.Annotation = *m.Annotation
		meta.Present = true
		return meta
	}
	meta.Annotation, meta.Present = r.Lookup(m.Name)
	return meta
}
