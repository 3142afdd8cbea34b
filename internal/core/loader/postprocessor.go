package loader

import (
	"sort"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// Item is one key visited by the post-processor. A value replaced with
// Replace is written back after all workers ran.
type Item struct {
	Tree  *tree.Tree
	Key   string
	Value any

	replaced   bool
	violations *[]*Required
}

// Replace swaps the value seen by later workers.
func (it *Item) Replace(v any) {
	it.Value = v
	it.replaced = true
}

// Report records a non-fatal violation.
func (it *Item) Report(r *Required) {
	*it.violations = append(*it.violations, r)
}

// PostWorker is a finalization step run over every key.
type PostWorker interface {
	Name() string
	Priority() int
	Process(it *Item) error
}

type postWorkerFunc struct {
	name     string
	priority int
	fn       func(it *Item) error
}

// NewPostWorker builds a PostWorker from a function.
func NewPostWorker(name string, priority int, fn func(it *Item) error) PostWorker {
	return &postWorkerFunc{name: name, priority: priority, fn: fn}
}

func (w *postWorkerFunc) Name() string          { return w.name }
func (w *postWorkerFunc) Priority() int         { return w.priority }
func (w *postWorkerFunc) Process(it *Item) error { return w.fn(it) }

// PostProcessor resolves promises and validates a loaded tree.
type PostProcessor struct {
	workers []PostWorker
}

// NewPostProcessor creates a PostProcessor with the built-in workers plus
// any extra ones.
func NewPostProcessor(extra ...PostWorker) *PostProcessor {
	workers := append([]PostWorker{
		NewPostWorker("resolve-promise", 30, resolvePromise),
		NewPostWorker("check-required", 50, checkRequired),
	}, extra...)
	sort.SliceStable(workers, func(i, j int) bool {
		return workers[i].Priority() < workers[j].Priority()
	})
	return &PostProcessor{workers: workers}
}

// Finalize visits every key once. The first fatal error stops the pass.
// Reported violations are returned together, sorted by key, as a
// *ValidationError.
func (p *PostProcessor) Finalize(t *tree.Tree) error {
	var violations []*Required
	for _, key := range t.Keys() {
		value, ok := t.Lookup(key)
		if !ok {
			continue
		}
		it := &Item{Tree: t, Key: key, Value: value, violations: &violations}
		for _, w := range p.workers {
			if err := w.Process(it); err != nil {
				return err
			}
		}
		if it.replaced {
			t.Set(key, it.Value)
		}
	}
	if len(violations) == 0 {
		return nil
	}
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Key != violations[j].Key {
			return violations[i].Key < violations[j].Key
		}
		return violations[i].Comment < violations[j].Comment
	})
	return &ValidationError{Violations: violations}
}

func resolvePromise(it *Item) error {
	if !isPromise(it.Value) {
		return nil
	}
	v, err := Resolve(it.Value)
	if err != nil {
		return err
	}
	it.Replace(v)
	return nil
}

func checkRequired(it *Item) error {
	if r, ok := it.Value.(*Required); ok {
		it.Report(r)
	}
	return nil
}
