// Package filter implements the post-processing stages of binding
// expressions.
//
// A filter receives the previous stage's output as its subject plus the
// literal or evaluated arguments written after it:
//
//	{{ user.name | default:'anonymous' | upper }}
//	{{ items | limit:3 | join:', ' }}
//
// Filters are looked up by name in a Registry. Builtins returns the standard
// set; applications add their own with Register.
package filter

import (
	"fmt"
	"sort"
	"sync"
)

// Filter transforms a subject value.
type Filter interface {
	To(subject any, args ...any) (any, error)
}

// Func adapts a function to the Filter interface.
type Func func(subject any, args ...any) (any, error)

// To implements Filter.
func (f Func) To(subject any, args ...any) (any, error) { return f(subject, args...) }

// Registry maps filter names to implementations. It is safe for concurrent
// use so a single registry can be shared by several engines.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]Filter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{filters: make(map[string]Filter)}
}

// Builtins creates a registry holding the standard filters.
func Builtins() *Registry {
	r := NewRegistry()
	for name, f := range builtins {
		r.Register(name, f)
	}
	return r
}

// Register adds or replaces a filter.
func (r *Registry) Register(name string, f Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = f
}

// Lookup returns the filter registered under name.
func (r *Registry) Lookup(name string) (Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[name]
	return f, ok
}

// Names returns the registered filter names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.filters))
	for n := range r.filters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// argError reports a bad argument list.
func argError(name string, want string, args []any) error {
	return fmt.Errorf("%s: expected %s, got %d argument(s)", name, want, len(args))
}
