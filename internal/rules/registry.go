package rules

import (
	"fmt"
	"sync"
)

// Factory is a constructor that creates a Rule.
type Factory func() Rule

// Registry maps rule names to their factory constructors. Registration order
// is preserved: it determines fixer execution index and therefore merge
// precedence, so it must be deterministic across runs.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates a Registry pre-registered with all built-in rules.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	// Built-in registration order is part of the engine's observable
	// behavior: later rules win over earlier ones on overlapping edits.
	must := func(name string, f Factory) {
		if err := r.Register(name, f); err != nil {
			panic(err)
		}
	}
	must(FinalNewlineName, func() Rule { return NewFinalNewline() })
	must(TrailingSpaceName, func() Rule { return NewTrailingSpace() })
	must(EOLNormalizeName, func() Rule { return NewEOLNormalize() })
	return r
}

// Register adds a factory under the given name.
func (r *Registry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("rules: %q already registered", name)
	}
	r.factories[name] = f
	r.order = append(r.order, name)
	return nil
}

// Names returns all registered rule names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Build instantiates the named rules, in the order given. An empty list
// builds every registered rule in registration order.
func (r *Registry) Build(names []string) ([]Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(names) == 0 {
		names = r.order
	}
	out := make([]Rule, 0, len(names))
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("rules: no rule registered as %q", name)
		}
		out = append(out, f())
	}
	return out, nil
}
