package didi

import (
	"reflect"
	"strconv"

	"go.uber.org/fx"
)

// NameTag returns the fx/dig struct tag selecting the component called name
func NameTag(name string) string {
	return `name:` + strconv.Quote(name)
}

// FxProvide exposes one component to an fx application. Constructor
// parameters are tagged with the names from the component's dependency list
// and the result is tagged with name.
func FxProvide(name string, p Provider) fx.Option {
	return fxProvide(DefaultTable(), name, p)
}

// FxModule exposes m, and the modules it depends on, to an fx application.
// Init components become fx.Invoke calls so fx builds them on start.
//
// Every call provides all the modules it reaches. Two FxModule options whose
// modules share a dependency therefore provide it twice, which fx rejects,
// and an Init name must be provided inside m's own dependency tree. Combine
// such modules with FxModules.
func FxModule(m *Module) fx.Option {
	return fxModule(DefaultTable(), m)
}

// FxModules exposes modules as a single fx module called name. Modules
// shared through DependsOn are provided once, and Init names may refer to
// any component of the combined set.
func FxModules(name string, modules ...*Module) fx.Option {
	return fxModules(DefaultTable(), name, modules)
}

func fxModule(table *Table, m *Module) fx.Option {
	if m == nil {
		return fx.Options()
	}
	return fxModules(table, m.Name, []*Module{m})
}

func fxModules(table *Table, name string, modules []*Module) fx.Option {
	loaded := flatten(modules)
	if len(loaded) == 0 {
		return fx.Options()
	}

	results := make(map[string]reflect.Type)
	var opts []fx.Option
	for _, mod := range loaded {
		for _, component := range mod.Names() {
			p := mod.Providers[component]
			opts = append(opts, fxProvide(table, component, p))
			results[component] = p.ResultType()
		}
	}
	for _, mod := range loaded {
		if len(mod.Init) > 0 {
			opts = append(opts, fxInvoke(mod.Init, results))
		}
	}

	return fx.Module(name, opts...)
}

func fxProvide(table *Table, name string, p Provider) fx.Option {
	if err := p.validate(name); err != nil {
		return fx.Error(err)
	}

	if p.Kind == ValueProvider {
		if p.Target == nil {
			return fx.Error(&InvalidProviderError{Name: name, Reason: "nil values cannot be supplied to fx"})
		}
		return fx.Supply(fx.Annotated{Name: name, Target: p.Target})
	}

	ft := reflect.TypeOf(p.Target)
	deps, err := dependencies(table, ft, p.Deps)
	if err != nil {
		return fx.Error(err)
	}
	if len(deps) != ft.NumIn() {
		return fx.Error(&ArityError{Name: name, Deps: deps, Expected: ft.NumIn()})
	}

	anns := []fx.Annotation{fx.ResultTags(NameTag(name))}
	if len(deps) > 0 {
		tags, err := paramTags(name, deps)
		if err != nil {
			return fx.Error(err)
		}
		anns = append(anns, fx.ParamTags(tags...))
	}
	return fx.Provide(fx.Annotate(p.Target, anns...))
}

// fxInvoke builds a no-op function taking the named components so that fx
// constructs them during start.
func fxInvoke(names []string, results map[string]reflect.Type) fx.Option {
	in := make([]reflect.Type, len(names))
	for i, name := range names {
		t, ok := results[name]
		if !ok || t == nil {
			return fx.Error(&MissingProviderError{Name: name})
		}
		in[i] = t
	}

	tags, err := paramTags("init", names)
	if err != nil {
		return fx.Error(err)
	}
	fn := reflect.MakeFunc(reflect.FuncOf(in, nil, false), func([]reflect.Value) []reflect.Value {
		return nil
	})
	return fx.Invoke(fx.Annotate(fn.Interface(), fx.ParamTags(tags...)))
}

func paramTags(owner string, deps []string) ([]string, error) {
	tags := make([]string, len(deps))
	for i, dep := range deps {
		if dep == InjectorName {
			return nil, &InvalidProviderError{Name: owner, Reason: "the injector itself cannot be resolved through fx"}
		}
		tags[i] = NameTag(dep)
	}
	return tags, nil
}
