package inspect

import "errors"

var (
	// ErrUnknownValue reports a reference whose first segment names no value.
	ErrUnknownValue = errors.New("unknown value")

	// ErrNotFound reports a reference whose path selects no descendant.
	ErrNotFound = errors.New("no descendant at path")

	// ErrBadRef reports a reference that cannot be parsed.
	ErrBadRef = errors.New("invalid reference")

	// ErrNoStore reports a persistence operation on an inspector without a store.
	ErrNoStore = errors.New("no snapshot store configured")
)
