package bam

import (
	"fmt"
	"sort"
)

// Constructor creates an interpreter for one object of a registered type.
type Constructor func(f *File, v Version) Object

// Registry maps type names to interpreter constructors.
//
// A Registry is an explicit value owned by the Files that use it (see
// WithRegistry). Register and Unregister are not synchronized; perform them
// before the registry is shared with concurrent loads.
type Registry struct {
	types map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Constructor)}
}

// Register binds name to ctor.
func (r *Registry) Register(name string, ctor Constructor) error {
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrAlreadyRegistered)
	}
	r.types[name] = ctor
	return nil
}

// MustRegister is like Register but panics on conflict.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// Unregister removes name.
func (r *Registry) Unregister(name string) error {
	if _, ok := r.types[name]; !ok {
		return fmt.Errorf("unregister %q: %w", name, ErrNotRegistered)
	}
	delete(r.types, name)
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds an interpreter for the first registered name among names.
// It returns nil when none is registered.
func (r *Registry) Create(f *File, v Version, names ...string) Object {
	if r == nil {
		return nil
	}
	for _, name := range names {
		if ctor, ok := r.types[name]; ok {
			return ctor(f, v)
		}
	}
	return nil
}
