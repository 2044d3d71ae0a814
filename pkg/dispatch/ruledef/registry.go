package ruledef

import (
	"sort"
	"sync"

	"mercator-hq/callisto/pkg/dispatch"
)

// Registry is a thread-safe store of named predicates that rule set
// definitions can reference by name. Because the registry hands out the
// same predicate for every reference, two rules naming the same
// predicate share one identity and the later rule replaces the value of
// the earlier one.
type Registry struct {
	mu         sync.RWMutex
	predicates map[string]dispatch.Predicate[map[string]interface{}]
}

// NewRegistry creates a new empty predicate registry.
func NewRegistry() *Registry {
	return &Registry{
		predicates: make(map[string]dispatch.Predicate[map[string]interface{}]),
	}
}

// Register adds a named predicate to the registry. If a predicate with
// the same name already exists, it will be replaced.
func (r *Registry) Register(name string, p dispatch.Predicate[map[string]interface{}]) error {
	if name == "" {
		return &RegistryError{
			Operation: "register",
			Message:   "predicate name cannot be empty",
		}
	}
	if p == nil {
		return &RegistryError{
			Name:      name,
			Operation: "register",
			Message:   "predicate cannot be nil",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.predicates[name] = p
	return nil
}

// RegisterFunc adds a named predicate from a plain function.
func (r *Registry) RegisterFunc(name string, fn func(map[string]interface{}) bool) error {
	return r.Register(name, dispatch.PredicateFunc(fn))
}

// Get retrieves a predicate by name.
func (r *Registry) Get(name string) (dispatch.Predicate[map[string]interface{}], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.predicates[name]
	return p, ok
}

// Names returns a sorted list of all registered predicate names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.predicates))
	for name := range r.predicates {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Count returns the number of registered predicates.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.predicates)
}

// Clear removes all predicates from the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.predicates = make(map[string]dispatch.Predicate[map[string]interface{}])
}
