package mirror

import (
	"errors"
	"fmt"
)

// InvariantError reports a violated engine precondition: inconsistent type
// metadata or misuse of the construction API. It is raised with panic,
// never returned; absence (a missing child, a type with no base) is reported
// with ok=false or a nil mirror instead.
type InvariantError struct {
	Op      string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("mirror: %s: %s", e.Op, e.Message)
}

func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Message: fmt.Sprintf(format, args...)})
}

// IsInvariantError reports whether err (typically recovered from a panic)
// is an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
