package didi

import (
	"maps"
	"slices"
)

// Module is a named set of providers.
//
// Modules listed in Depends are loaded before the module itself, and each
// module is loaded at most once per injector. Components named in Init are
// built as soon as the injector is created.
type Module struct {
	Name      string
	Depends   []*Module
	Init      []string
	Providers map[string]Provider

	order []string
}

// NewModule creates an empty module
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Providers: make(map[string]Provider),
	}
}

// Provide registers p under name and returns the module for chaining.
// Registering a name twice replaces the earlier provider.
func (m *Module) Provide(name string, p Provider) *Module {
	if m.Providers == nil {
		m.Providers = make(map[string]Provider)
	}
	if _, exists := m.Providers[name]; !exists {
		m.order = append(m.order, name)
	}
	m.Providers[name] = p
	return m
}

// DependsOn adds modules that must be loaded first
func (m *Module) DependsOn(modules ...*Module) *Module {
	m.Depends = append(m.Depends, modules...)
	return m
}

// InitWith marks components for eager construction
func (m *Module) InitWith(names ...string) *Module {
	m.Init = append(m.Init, names...)
	return m
}

// Names returns the provider names in registration order. Providers added
// by writing to the map directly follow in sorted order.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.Providers))
	seen := make(map[string]bool, len(m.Providers))
	for _, name := range m.order {
		if _, ok := m.Providers[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	rest := slices.Sorted(maps.Keys(m.Providers))
	for _, name := range rest {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// flatten returns m and everything it depends on, dependencies first,
// without duplicates.
func flatten(modules []*Module) []*Module {
	var out []*Module
	visited := make(map[*Module]bool)

	var visit func(m *Module)
	visit = func(m *Module) {
		if m == nil || visited[m] {
			return
		}
		visited[m] = true
		for _, dep := range m.Depends {
			visit(dep)
		}
		out = append(out, m)
	}

	for _, m := range modules {
		visit(m)
	}
	return out
}
