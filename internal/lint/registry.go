package lint

import (
	"fmt"
	"strings"
)

// Constructor builds a fresh pass instance.
type Constructor func() Pass

// Registry keeps passes in registration order, which is also hook order.
type Registry struct {
	builders []Constructor
	lints    []*Lint
	byName   map[string]*Lint
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Lint)}
}

// Register adds a pass. Lint names must be unique across passes.
func (r *Registry) Register(build Constructor) error {
	p := build()
	if p == nil {
		return fmt.Errorf("lint: constructor returned nil pass")
	}
	for _, l := range p.Lints() {
		if _, dup := r.byName[l.Name]; dup {
			return fmt.Errorf("lint: %q registered twice (pass %s)", l.Name, p.Name())
		}
	}
	for _, l := range p.Lints() {
		r.byName[l.Name] = l
		r.lints = append(r.lints, l)
	}
	r.builders = append(r.builders, build)
	return nil
}

// MustRegister is Register that panics; for static registration tables.
func (r *Registry) MustRegister(build Constructor) {
	if err := r.Register(build); err != nil {
		panic(err)
	}
}

// Lints returns every registered lint in registration order.
func (r *Registry) Lints() []*Lint {
	return append([]*Lint(nil), r.lints...)
}

// Lookup finds a lint by name, with or without the tool prefix.
func (r *Registry) Lookup(name string) (*Lint, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), ToolName+"::")
	l, ok := r.byName[name]
	return l, ok
}

// Passes instantiates every pass anew.
func (r *Registry) Passes() []Pass {
	out := make([]Pass, 0, len(r.builders))
	for _, b := range r.builders {
		out = append(out, b())
	}
	return out
}
