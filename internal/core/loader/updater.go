package loader

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/ctree-dev/ctree/internal/core/interpolate"
	"github.com/ctree-dev/ctree/internal/core/tree"
)

// Value prefixes and key markers understood by the built-in workers.
const (
	defaultSuffix  = "?"
	methodMarker   = "#"
	addSuffix      = "+"
	formatPrefix   = "$>> "
	printfPrefix   = "%>> "
	evalPrefix     = ">>> "
	requiredPrefix = "!!!"
)

// Worker inspects and rewrites an action before it is committed.
type Worker interface {
	Name() string
	Priority() int
	Process(a *Action) error
}

type workerFunc struct {
	name     string
	priority int
	fn       func(a *Action) error
}

// NewWorker builds a Worker from a function.
func NewWorker(name string, priority int, fn func(a *Action) error) Worker {
	return &workerFunc{name: name, priority: priority, fn: fn}
}

func (w *workerFunc) Name() string            { return w.name }
func (w *workerFunc) Priority() int           { return w.priority }
func (w *workerFunc) Process(a *Action) error { return w.fn(a) }

// Updater applies raw key/value pairs to a tree through its workers.
type Updater struct {
	workers   []Worker
	disabled  map[string]bool
	namespace map[string]any
	methods   *Methods
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithNamespace adds names visible to templates and expressions.
func WithNamespace(ns map[string]any) UpdaterOption {
	return func(u *Updater) {
		maps.Copy(u.namespace, ns)
	}
}

// WithWorkers registers additional workers.
func WithWorkers(workers ...Worker) UpdaterOption {
	return func(u *Updater) {
		u.workers = append(u.workers, workers...)
	}
}

// WithoutWorkers disables workers by name.
func WithoutWorkers(names ...string) UpdaterOption {
	return func(u *Updater) {
		for _, n := range names {
			u.disabled[n] = true
		}
	}
}

// WithMethod registers a #name method.
func WithMethod(name string, m Method) UpdaterOption {
	return func(u *Updater) {
		u.methods.Register(name, m)
	}
}

// NewUpdater creates an Updater with the built-in workers.
func NewUpdater(opts ...UpdaterOption) *Updater {
	u := &Updater{
		disabled:  make(map[string]bool),
		namespace: make(map[string]any),
		methods:   DefaultMethods(),
	}
	u.workers = []Worker{
		NewWorker("set-default", 10, u.setDefault),
		NewWorker("call-method", 20, u.callMethod),
		NewWorker("add-value", 25, u.addValue),
		NewWorker("format-value", 30, u.formatValue),
		NewWorker("printf-value", 40, u.printfValue),
		NewWorker("eval-value", 50, u.evalValue),
		NewWorker("required-value", 60, u.requiredValue),
	}
	for _, opt := range opts {
		opt(u)
	}

	enabled := u.workers[:0]
	for _, w := range u.workers {
		if !u.disabled[w.Name()] {
			enabled = append(enabled, w)
		}
	}
	u.workers = enabled
	sort.SliceStable(u.workers, func(i, j int) bool {
		return u.workers[i].Priority() < u.workers[j].Priority()
	})
	return u
}

// Workers returns the enabled worker names in run order.
func (u *Updater) Workers() []string {
	names := make([]string, len(u.workers))
	for i, w := range u.workers {
		names[i] = w.Name()
	}
	return names
}

// Apply runs every worker over the update and commits it.
func (u *Updater) Apply(t *tree.Tree, key string, value any, source string) error {
	a := NewAction(t, key, value, source)
	for _, w := range u.workers {
		if err := w.Process(a); err != nil {
			return withAction(a, fmt.Errorf("%s: %w", w.Name(), err))
		}
	}
	return withAction(a, a.Apply())
}

func (u *Updater) setDefault(a *Action) error {
	if strings.HasSuffix(a.Key, defaultSuffix) {
		a.Key = strings.TrimSuffix(a.Key, defaultSuffix)
		a.Commit = SetDefault
	}
	return nil
}

func (u *Updater) callMethod(a *Action) error {
	key, name, ok := strings.Cut(a.Key, methodMarker)
	if !ok {
		return nil
	}
	a.Key = key
	a.Commit = func(a *Action) error {
		method, found := u.methods.Lookup(name)
		if !found {
			return fmt.Errorf("%w %q", ErrUnknownMethod, name)
		}
		current, err := a.Tree.Get(a.Key)
		if err != nil {
			return err
		}
		return combine(a, current, method)
	}
	return nil
}

func (u *Updater) addValue(a *Action) error {
	if !strings.HasSuffix(a.Key, addSuffix) {
		return nil
	}
	a.Key = strings.TrimSuffix(a.Key, addSuffix)
	a.Commit = func(a *Action) error {
		current, err := a.Tree.Get(a.Key)
		if err != nil {
			return SetValue(a)
		}
		return combine(a, current, add)
	}
	return nil
}

// combine stores fn(current, a.Value). If either side is a promise the
// call is deferred behind a new promise.
func combine(a *Action, current any, fn Method) error {
	if b, ok := current.(*tree.BranchProxy); ok {
		return fmt.Errorf("%w: %q is a branch", ErrUnsupportedOperand, b.Key())
	}
	if isPromise(current) || isPromise(a.Value) {
		value := a.Value
		a.Tree.Set(a.Key, a.Promise(func() (any, error) {
			receiver, err := Resolve(current)
			if err != nil {
				return nil, err
			}
			arg, err := Resolve(value)
			if err != nil {
				return nil, err
			}
			return fn(receiver, arg)
		}))
		return nil
	}
	out, err := fn(current, a.Value)
	if err != nil {
		return err
	}
	a.Tree.Set(a.Key, out)
	return nil
}

func (u *Updater) bindings(a *Action) map[string]any {
	env := maps.Clone(u.namespace)
	env["self"] = NewResolver(a.Tree, a.Source)
	env["branch"] = NewResolver(a.Branch(), a.Source)
	return env
}

func (u *Updater) formatValue(a *Action) error {
	s, ok := a.Value.(string)
	if !ok || !strings.HasPrefix(s, formatPrefix) {
		return nil
	}
	tmpl, env := strings.TrimPrefix(s, formatPrefix), u.bindings(a)
	a.Value = a.Promise(func() (any, error) {
		return interpolate.Format(tmpl, env)
	})
	return nil
}

func (u *Updater) printfValue(a *Action) error {
	s, ok := a.Value.(string)
	if !ok || !strings.HasPrefix(s, printfPrefix) {
		return nil
	}
	tmpl, self := strings.TrimPrefix(s, printfPrefix), NewResolver(a.Tree, a.Source)
	a.Value = a.Promise(func() (any, error) {
		return interpolate.Printf(tmpl, self)
	})
	return nil
}

func (u *Updater) evalValue(a *Action) error {
	s, ok := a.Value.(string)
	if !ok || !strings.HasPrefix(s, evalPrefix) {
		return nil
	}
	code, env := strings.TrimPrefix(s, evalPrefix), u.bindings(a)
	a.Value = a.Promise(func() (any, error) {
		return interpolate.Evaluate(code, env)
	})
	return nil
}

func (u *Updater) requiredValue(a *Action) error {
	s, ok := a.Value.(string)
	if !ok || !strings.HasPrefix(s, requiredPrefix) {
		return nil
	}
	a.Value = &Required{
		Key:     a.Key,
		Comment: strings.TrimSpace(strings.TrimPrefix(s, requiredPrefix)),
	}
	return nil
}
