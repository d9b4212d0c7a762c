package reflection

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"propinfo/internal/core/errors"
	"propinfo/internal/shared/util"
)

// Registry maps class identifiers to Go struct types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
	names map[reflect.Type]string
}

func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]reflect.Type),
		names: make(map[reflect.Type]string),
	}
}

// Register records the struct type of sample under name. Pointers are
// dereferenced; anything that is not a struct is rejected.
func (r *Registry) Register(name string, sample any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New(errors.CodeValidationError, "class name must not be empty")
	}
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return errors.AddContext(
			errors.New(errors.CodeValidationError, fmt.Sprintf("%T is not a struct", sample)),
			errors.CtxClass, name,
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[name]; ok && existing != t {
		return errors.AddContext(
			errors.New(errors.CodeConflict, fmt.Sprintf("class already registered as %s", existing)),
			errors.CtxClass, name,
		)
	}
	r.types[name] = t
	if _, ok := r.names[t]; !ok {
		r.names[t] = name
	}
	return nil
}

// MustRegister is Register for package-level setup.
func (r *Registry) MustRegister(name string, sample any) {
	if err := r.Register(name, sample); err != nil {
		panic(err)
	}
}

// Lookup returns the struct type registered under name.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// NameOf returns the first class identifier registered for t.
func (r *Registry) NameOf(t reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[t]
	return name, ok
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Names returns the registered class identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return util.SortedStringKeys(r.types)
}
