package didi

import (
	"reflect"
	"slices"
	"sync"
)

// Table maps annotated types to their dependency lists.
//
// A list is copied on the way in and on the way out, so what a type carries
// can only change by annotating the type again.
type Table struct {
	mu      sync.RWMutex
	entries map[reflect.Type][]string
}

// NewTable creates an empty annotation table
func NewTable() *Table {
	return &Table{
		entries: make(map[reflect.Type][]string),
	}
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// DefaultTable returns the process-wide table used by Annotate and Dependencies
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		defaultTable = NewTable()
	})
	return defaultTable
}

// Annotate returns a Decorator that records [first, others...] on the
// types it is applied to in this table.
func (t *Table) Annotate(first string, others ...string) Decorator {
	return func(target reflect.Type) reflect.Type {
		if target == nil {
			return nil
		}
		deps := make([]string, 0, len(others)+1)
		deps = append(deps, first)
		deps = append(deps, others...)
		t.set(target, deps)
		return target
	}
}

func (t *Table) set(target reflect.Type, deps []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[target] = deps
}

// Lookup returns a copy of the dependency list attached to target
func (t *Table) Lookup(target reflect.Type) ([]string, bool) {
	if target == nil {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	deps, ok := t.entries[target]
	if !ok {
		return nil, false
	}
	return slices.Clone(deps), true
}

// lookupResult finds the list for a constructor result, trying the pointer
// type first and then its element type.
func (t *Table) lookupResult(result reflect.Type) ([]string, bool) {
	if deps, ok := t.Lookup(result); ok {
		return deps, true
	}
	if result != nil && result.Kind() == reflect.Pointer {
		return t.Lookup(result.Elem())
	}
	return nil, false
}

// Has reports whether target has been annotated
func (t *Table) Has(target reflect.Type) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.entries[target]
	return ok
}

// Forget drops the annotation for target. Mostly useful in tests.
func (t *Table) Forget(target reflect.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, target)
}

// Len returns the number of annotated types
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.entries)
}

// Types returns the annotated types sorted by their string form
func (t *Table) Types() []reflect.Type {
	t.mu.RLock()
	types := make([]reflect.Type, 0, len(t.entries))
	for typ := range t.entries {
		types = append(types, typ)
	}
	t.mu.RUnlock()

	slices.SortFunc(types, func(a, b reflect.Type) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	return types
}
