package interpolate

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm/runtime"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

var (
	// ErrBinding is returned when a tree binding is used other than by
	// indexing it, testing membership or taking its length.
	ErrBinding = errors.New("tree binding must be indexed")
	// ErrKeyType is returned when a tree binding is indexed by a non-string.
	ErrKeyType = errors.New("tree keys are strings")
)

// Helper functions the rewriter substitutes for operations on bindings.
const (
	getFunc = "__get"
	hasFunc = "__has"
	lenFunc = "__len"
)

// Evaluate runs an expr-lang expression against env. Entries of env that
// implement Getter are tree bindings and are read lazily, one Get per
// evaluated access:
//
//	self["a.b"], self.a.b, self["a." + name]   read a key
//	"a.b" in self                               test a key
//	len(branch)                                 count leaf keys
//	self?.a, self["a"] ?? fallback              read, nil when missing
//
// A missing key is an error unless read through ?. or on the left of ??.
// Any other use of a binding fails compilation with ErrBinding, except a
// bare binding as the whole expression, which yields its nested map.
// Names absent from env fail compilation.
func Evaluate(code string, env map[string]any) (any, error) {
	runEnv := make(map[string]any, len(env))
	names := make(map[string]bool)
	for name, v := range env {
		if g, ok := v.(Getter); ok {
			runEnv[name] = &binding{getter: g}
			names[name] = true
			continue
		}
		runEnv[name] = v
	}

	ev := &evaluation{}
	rw := newRewriter(names)
	program, err := expr.Compile(code,
		expr.Env(runEnv),
		expr.Patch(rw),
		expr.Function(getFunc, ev.get),
		expr.Function(hasFunc, ev.has),
		expr.Function(lenFunc, ev.length),
	)
	if err != nil {
		return nil, err
	}
	if err := rw.check(); err != nil {
		return nil, err
	}

	out, err := expr.Run(program, runEnv)
	if err != nil {
		// Report the helper's own error so callers can match it with errors.Is.
		if ev.err != nil {
			err = ev.err
		}
		return nil, fmt.Errorf("evaluate %q: %w", code, err)
	}
	return unwrap(out)
}

// binding is the runtime value of a tree binding.
type binding struct {
	getter Getter
}

func (b *binding) get(key any) (any, error) {
	k, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrKeyType, key)
	}
	v, err := b.getter.Get(k)
	if err != nil {
		return nil, err
	}
	if g, ok := v.(Getter); ok {
		return &binding{getter: g}, nil
	}
	return v, nil
}

// evaluation holds the helper functions of one Evaluate call and the first
// error they reported.
type evaluation struct {
	err error
}

func (e *evaluation) fail(err error) (any, error) {
	if e.err == nil {
		e.err = err
	}
	return nil, err
}

// get is __get(obj, key, optional). Non-binding values are indexed the
// way expr indexes them.
func (e *evaluation) get(params ...any) (any, error) {
	obj, key := params[0], params[1]
	optional, _ := params[2].(bool)

	b, ok := obj.(*binding)
	if !ok {
		if obj == nil && optional {
			return nil, nil
		}
		out, err := protect(func() any { return runtime.Fetch(obj, key) })
		if err != nil {
			if optional {
				return nil, nil
			}
			return e.fail(err)
		}
		return out, nil
	}

	v, err := b.get(key)
	if err != nil {
		if optional && errors.Is(err, tree.ErrKeyNotFound) {
			return nil, nil
		}
		return e.fail(err)
	}
	return v, nil
}

// has is __has(obj, needle).
func (e *evaluation) has(params ...any) (any, error) {
	obj, needle := params[0], params[1]

	b, ok := obj.(*binding)
	if !ok {
		out, err := protect(func() any { return runtime.In(needle, obj) })
		if err != nil {
			return e.fail(err)
		}
		return out, nil
	}

	_, err := b.get(needle)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, tree.ErrKeyNotFound):
		return false, nil
	default:
		return e.fail(err)
	}
}

// length is __len(obj). A binding counts its leaf keys.
func (e *evaluation) length(params ...any) (any, error) {
	b, ok := params[0].(*binding)
	if !ok {
		out, err := protect(func() any { return runtime.Len(params[0]) })
		if err != nil {
			return e.fail(err)
		}
		return out, nil
	}

	l, ok := b.getter.(Lister)
	if !ok {
		return e.fail(fmt.Errorf("%w: %T cannot list its keys", ErrBinding, b.getter))
	}
	return len(l.Keys()), nil
}

func protect(fn func() any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn(), nil
}

// unwrap turns bindings left in a result into nested maps.
func unwrap(v any) (any, error) {
	switch val := v.(type) {
	case *binding:
		return Materialize(val.getter)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			u, err := unwrap(item)
			if err != nil {
				return nil, err
			}
			out[i] = u
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			u, err := unwrap(item)
			if err != nil {
				return nil, err
			}
			out[k] = u
		}
		return out, nil
	}
	return v, nil
}

// rewriter replaces member access, "in" and len on bindings with helper
// calls. ast.Walk is post-order, so inner accesses are already calls when
// the enclosing node is visited.
type rewriter struct {
	bindings map[string]bool
	calls    map[*ast.CallNode]bool
	allowed  map[*ast.IdentifierNode]bool
	idents   []*ast.IdentifierNode
	root     ast.Node
}

func newRewriter(bindings map[string]bool) *rewriter {
	return &rewriter{
		bindings: bindings,
		calls:    make(map[*ast.CallNode]bool),
		allowed:  make(map[*ast.IdentifierNode]bool),
	}
}

func (r *rewriter) Visit(node *ast.Node) {
	r.root = *node

	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if r.bindings[n.Value] {
			r.idents = append(r.idents, n)
		}

	case *ast.MemberNode:
		if r.isTree(n.Node) {
			r.patch(node, getFunc, n.Node, n.Property, &ast.BoolNode{Value: n.Optional})
		}

	case *ast.BinaryNode:
		switch {
		case n.Operator == "in" && r.isTree(n.Right):
			r.patch(node, hasFunc, n.Right, n.Left)
		case n.Operator == "??":
			r.optional(n.Left)
		}

	case *ast.BuiltinNode:
		if n.Name == "len" && len(n.Arguments) == 1 && r.isTree(n.Arguments[0]) {
			r.patch(node, lenFunc, n.Arguments[0])
		}

	case *ast.CallNode:
		callee, ok := n.Callee.(*ast.IdentifierNode)
		if ok && callee.Value == "len" && len(n.Arguments) == 1 && r.isTree(n.Arguments[0]) {
			r.patch(node, lenFunc, n.Arguments[0])
		}
	}
}

func (r *rewriter) patch(node *ast.Node, fn string, args ...ast.Node) {
	if id, ok := unchain(args[0]).(*ast.IdentifierNode); ok {
		r.allowed[id] = true
	}
	call := &ast.CallNode{Callee: &ast.IdentifierNode{Value: fn}, Arguments: args}
	r.calls[call] = true
	ast.Patch(node, call)
}

// optional marks every read in the access chain n as nil-on-missing.
func (r *rewriter) optional(n ast.Node) {
	for {
		call, ok := unchain(n).(*ast.CallNode)
		if !ok || !r.isGet(call) {
			return
		}
		call.Arguments[2] = &ast.BoolNode{Value: true}
		n = call.Arguments[0]
	}
}

// isTree reports whether n evaluates to a binding or to a value read
// from one.
func (r *rewriter) isTree(n ast.Node) bool {
	switch v := unchain(n).(type) {
	case *ast.IdentifierNode:
		return r.bindings[v.Value]
	case *ast.CallNode:
		return r.isGet(v)
	}
	return false
}

func (r *rewriter) isGet(call *ast.CallNode) bool {
	callee, ok := call.Callee.(*ast.IdentifierNode)
	return ok && r.calls[call] && callee.Value == getFunc
}

// check rejects bindings used as plain values.
func (r *rewriter) check() error {
	for _, id := range r.idents {
		if r.allowed[id] || ast.Node(id) == r.root {
			continue
		}
		return fmt.Errorf("%w: %s", ErrBinding, id.Value)
	}
	return nil
}

func unchain(n ast.Node) ast.Node {
	if c, ok := n.(*ast.ChainNode); ok {
		return c.Node
	}
	return n
}
