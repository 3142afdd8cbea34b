package loader

import "fmt"

type promiseState int

const (
	pending promiseState = iota
	resolving
	settled
)

// Promise is a deferred value. It is computed on first Resolve and the
// result, value or error, is kept for later calls.
type Promise struct {
	action *Action
	fn     func() (any, error)
	state  promiseState
	value  any
	err    error
}

// NewPromise wraps fn without an owning action.
func NewPromise(fn func() (any, error)) *Promise {
	return &Promise{fn: fn}
}

// Action returns the update that created the promise, if any.
func (p *Promise) Action() *Action {
	return p.action
}

// Resolve computes the value once. Re-entering a promise that is being
// computed fails with ErrCircularReference.
func (p *Promise) Resolve() (any, error) {
	switch p.state {
	case settled:
		return p.value, p.err
	case resolving:
		return nil, withAction(p.action, ErrCircularReference)
	}

	p.state = resolving
	v, err := p.fn()
	if err == nil {
		v, err = Resolve(v)
	}
	p.value, p.err, p.state = v, withAction(p.action, err), settled
	return p.value, p.err
}

func (p *Promise) String() string {
	if p.action == nil {
		return "<promise>"
	}
	return fmt.Sprintf("<promise for %q>", p.action.Key)
}

// Resolve returns the value of v if it is a *Promise, and v otherwise.
func Resolve(v any) (any, error) {
	if p, ok := v.(*Promise); ok {
		return p.Resolve()
	}
	return v, nil
}

func isPromise(v any) bool {
	_, ok := v.(*Promise)
	return ok
}
