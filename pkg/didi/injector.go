package didi

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
)

// Injector resolves named components from the providers of its modules.
//
// Every component is a singleton within the injector that owns its provider.
// Names that are not provided locally are looked up in the parent injector.
// The name "injector" resolves to the injector itself, and constructors may
// call Get on it while they run.
//
// An Injector is safe for concurrent use. Each component is constructed at
// most once; callers asking for a component under construction wait for it.
type Injector struct {
	mu        sync.Mutex
	parent    *Injector
	table     *Table
	logger    *slog.Logger
	providers map[string]Provider
	instances map[string]any
	pending   map[string]*build
}

// build is a construction in progress. instance and err are set before done
// is closed.
type build struct {
	done     chan struct{}
	instance any
	err      error
}

// Option configures an Injector
type Option func(*Injector)

// WithTable makes the injector read annotations from table instead of the
// default table.
func WithTable(table *Table) Option {
	return func(inj *Injector) {
		if table != nil {
			inj.table = table
		}
	}
}

// WithLogger sets the logger used for debug records about construction
func WithLogger(logger *slog.Logger) Option {
	return func(inj *Injector) {
		if logger != nil {
			inj.logger = logger
		}
	}
}

// New creates an injector from modules. Module dependencies are loaded
// first and every Init component is built before New returns.
func New(modules []*Module, opts ...Option) (*Injector, error) {
	inj := &Injector{
		table:     DefaultTable(),
		logger:    slog.New(slog.DiscardHandler),
		providers: make(map[string]Provider),
		instances: make(map[string]any),
		pending:   make(map[string]*build),
	}
	for _, opt := range opts {
		opt(inj)
	}

	if err := inj.load(modules); err != nil {
		return nil, err
	}
	return inj, nil
}

// CreateChild creates an injector that sees every component of inj plus the
// providers of modules. Child providers shadow parent providers.
func (inj *Injector) CreateChild(modules ...*Module) (*Injector, error) {
	if inj == nil {
		return nil, ErrNilInjector
	}
	child := &Injector{
		parent:    inj,
		table:     inj.table,
		logger:    inj.logger,
		providers: make(map[string]Provider),
		instances: make(map[string]any),
		pending:   make(map[string]*build),
	}
	if err := child.load(modules); err != nil {
		return nil, err
	}
	return child, nil
}

func (inj *Injector) load(modules []*Module) error {
	loaded := flatten(modules)

	for _, m := range loaded {
		for _, name := range m.Names() {
			p := m.Providers[name]
			if err := p.validate(name); err != nil {
				return err
			}
			inj.mu.Lock()
			inj.providers[name] = p
			inj.mu.Unlock()
		}
		inj.logger.Debug("loaded module", "module", m.Name, "components", len(m.Providers))
	}

	for _, m := range loaded {
		for _, name := range m.Init {
			if _, err := inj.Get(name, true); err != nil {
				return fmt.Errorf("initializing module %s: %w", m.Name, err)
			}
		}
	}
	return nil
}

// Get returns the component registered under name, building it on first use.
//
// When strict is false a name nobody provides yields (nil, nil); otherwise it
// yields a *MissingProviderError.
//
// Constructors may call Get to look up further components. Cycles through
// declared dependencies are reported as *CircularDependencyError, but a
// constructor that asks the injector for a component still being built
// further up its own chain waits forever.
func (inj *Injector) Get(name string, strict bool) (any, error) {
	if inj == nil {
		return nil, ErrNilInjector
	}
	return inj.get(name, strict, nil)
}

// MustGet returns the component registered under name or panics.
func (inj *Injector) MustGet(name string) any {
	v, err := inj.Get(name, true)
	if err != nil {
		panic(err)
	}
	return v
}

// GetAs returns the component registered under name as a T.
func GetAs[T any](inj *Injector, name string) (T, error) {
	var zero T
	v, err := inj.Get(name, true)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &WrongTypeError{
			Name: name,
			Want: reflect.TypeFor[T]().String(),
			Got:  fmt.Sprintf("%T", v),
		}
	}
	return typed, nil
}

// Provides reports whether name can be resolved by inj or one of its parents
func (inj *Injector) Provides(name string) bool {
	if inj == nil {
		return false
	}
	if name == InjectorName {
		return true
	}

	inj.mu.Lock()
	_, ok := inj.providers[name]
	inj.mu.Unlock()

	if ok {
		return true
	}
	return inj.parent.Provides(name)
}

// Instantiate calls ctor with the components annotated on its result type.
// The result is not cached.
func (inj *Injector) Instantiate(ctor any) (any, error) {
	if inj == nil {
		return nil, ErrNilInjector
	}
	p := Type(ctor)
	if err := p.validate(""); err != nil {
		return nil, err
	}
	return inj.construct(typeName(reflect.TypeOf(ctor)), ctor, nil, nil)
}

// Invoke calls fn with the named components in order. It returns the
// non-error results of fn; a non-nil trailing error result is returned as
// the error.
func (inj *Injector) Invoke(fn any, deps ...string) ([]any, error) {
	if inj == nil {
		return nil, ErrNilInjector
	}
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, &InvalidProviderError{Reason: fmt.Sprintf("invoke target must be a function, got %T", fn)}
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, &InvalidProviderError{Reason: "variadic functions are not supported"}
	}

	name := "invoke " + ft.String()
	args, err := inj.arguments(name, ft, deps, nil)
	if err != nil {
		return nil, err
	}
	results, err := call(name, fv, args)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(results))
	for i, r := range results {
		if i == len(results)-1 && ft.Out(i) == errorType {
			if !r.IsNil() {
				return out, r.Interface().(error)
			}
			break
		}
		out = append(out, r.Interface())
	}
	return out, nil
}

// get resolves name. path holds the components whose construction led here
// and is only used for cycle detection and error messages.
func (inj *Injector) get(name string, strict bool, path []string) (any, error) {
	if name == InjectorName {
		return inj, nil
	}

	inj.mu.Lock()
	if instance, ok := inj.instances[name]; ok {
		inj.mu.Unlock()
		return instance, nil
	}
	p, ok := inj.providers[name]
	if !ok {
		inj.mu.Unlock()
		if inj.parent.Provides(name) {
			return inj.parent.get(name, strict, path)
		}
		if !strict {
			return nil, nil
		}
		return nil, &MissingProviderError{Name: name, Path: append(slices.Clone(path), name)}
	}
	if slices.Contains(path, name) {
		inj.mu.Unlock()
		return nil, &CircularDependencyError{Path: append(slices.Clone(path), name)}
	}
	if b, ok := inj.pending[name]; ok {
		inj.mu.Unlock()
		<-b.done
		return b.instance, b.err
	}
	b := &build{done: make(chan struct{})}
	inj.pending[name] = b
	inj.mu.Unlock()

	if p.Kind == ValueProvider {
		b.instance = p.Target
	} else {
		b.instance, b.err = inj.construct(name, p.Target, p.Deps, append(slices.Clone(path), name))
	}

	// Failed constructions are not cached; the next Get tries again.
	inj.mu.Lock()
	delete(inj.pending, name)
	if b.err == nil {
		inj.instances[name] = b.instance
	}
	inj.mu.Unlock()
	close(b.done)

	if b.err != nil {
		return nil, b.err
	}
	inj.logger.Debug("instantiated component", "name", name, "kind", p.Kind.String())
	return b.instance, nil
}

func (inj *Injector) construct(name string, ctor any, explicit, path []string) (any, error) {
	fv := reflect.ValueOf(ctor)
	ft := fv.Type()

	deps, err := dependencies(inj.table, ft, explicit)
	if err != nil {
		return nil, err
	}
	args, err := inj.arguments(name, ft, deps, path)
	if err != nil {
		return nil, err
	}

	results, err := call(name, fv, args)
	if err != nil {
		return nil, err
	}
	if len(results) == 2 && !results[1].IsNil() {
		return nil, &ConstructorError{Name: name, Cause: results[1].Interface().(error)}
	}
	return results[0].Interface(), nil
}

// arguments resolves deps into call arguments for ft
func (inj *Injector) arguments(name string, ft reflect.Type, deps, path []string) ([]reflect.Value, error) {
	if len(deps) != ft.NumIn() {
		return nil, &ArityError{Name: name, Deps: slices.Clone(deps), Expected: ft.NumIn()}
	}

	args := make([]reflect.Value, len(deps))
	for i, dep := range deps {
		instance, err := inj.get(dep, true, path)
		if err != nil {
			return nil, err
		}
		arg, err := argument(dep, instance, ft.In(i), i+1)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func argument(name string, instance any, want reflect.Type, position int) (reflect.Value, error) {
	if instance == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, &WrongTypeError{Name: name, Want: want.String(), Got: "nil", Position: position}
	}

	v := reflect.ValueOf(instance)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, &WrongTypeError{Name: name, Want: want.String(), Got: v.Type().String(), Position: position}
	}
	return v, nil
}

// call invokes fn and turns a panic into a ConstructorError
func call(name string, fn reflect.Value, args []reflect.Value) (results []reflect.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			results = nil
			err = &ConstructorError{Name: name, Cause: fmt.Errorf("%w: %v", ErrConstructorPanic, rec)}
		}
	}()
	return fn.Call(args), nil
}
