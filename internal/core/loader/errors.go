package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCircularReference is returned when a promise depends on itself.
	ErrCircularReference = errors.New("circular reference")
	// ErrUnknownMethod is returned for a #method with no registered implementation.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrUnsupportedOperand is returned when a method or addition cannot
	// handle the value types involved.
	ErrUnsupportedOperand = errors.New("unsupported operand")
	// ErrNoParser is returned when a file extension has no parser.
	ErrNoParser = errors.New("no parser for extension")
)

// ParseError reports a source file that could not be read or parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ActionError ties a failure to the update that produced the value.
type ActionError struct {
	Action *Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Action)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// withAction wraps err unless it already carries an action, so the
// innermost failing update is the one reported.
func withAction(a *Action, err error) error {
	if err == nil || a == nil {
		return err
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return err
	}
	return &ActionError{Action: a, Err: err}
}

// ValidationError lists every Required marker left in a finalized tree,
// sorted by their string form.
type ValidationError struct {
	Violations []*Required
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}
