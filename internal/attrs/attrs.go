// Package attrs implements the control attribute registry (§6): named
// textual attributes with show/store handlers, as an in-process stand-in
// for the character-device sysfs-style attribute registration the spec
// treats as an external collaborator.
package attrs

import (
	"fmt"
	"sort"
	"sync"
)

// ShowFunc renders the current attribute value, newline-terminated.
type ShowFunc func() (string, error)

// StoreFunc parses and applies a new attribute value. The input may carry
// an optional trailing newline, which implementations should trim.
type StoreFunc func(value string) error

// Attribute is one named control attribute. Store is nil for read-only
// attributes (e.g. stats).
type Attribute struct {
	Name  string
	Show  ShowFunc
	Store StoreFunc
}

// ReadOnly reports whether the attribute rejects writes.
func (a Attribute) ReadOnly() bool { return a.Store == nil }

// Registry registers and looks up named control attributes.
type Registry interface {
	Register(a Attribute) error
	Unregister(name string) error
	Lookup(name string) (Attribute, bool)
	Names() []string
}

// ErrAlreadyRegistered is returned by Register for a duplicate name.
var ErrAlreadyRegistered = fmt.Errorf("attrs: already registered")

// ErrNotRegistered is returned by Unregister for an absent name.
var ErrNotRegistered = fmt.Errorf("attrs: not registered")

// MapRegistry is the default in-memory, mutex-guarded Registry
// implementation.
type MapRegistry struct {
	mu    sync.Mutex
	attrs map[string]Attribute
}

// NewMapRegistry returns an empty MapRegistry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{attrs: make(map[string]Attribute)}
}

func (r *MapRegistry) Register(a Attribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attrs[a.Name]; ok {
		return ErrAlreadyRegistered
	}
	r.attrs[a.Name] = a
	return nil
}

func (r *MapRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attrs[name]; !ok {
		return ErrNotRegistered
	}
	delete(r.attrs, name)
	return nil
}

func (r *MapRegistry) Lookup(name string) (Attribute, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attrs[name]
	return a, ok
}

func (r *MapRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.attrs))
	for n := range r.attrs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
