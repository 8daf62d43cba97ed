package inspect

import (
	"fmt"
	"strings"

	"github.com/roach88/mirror/internal/mirror"
)

// Ref addresses a value: a named world value and a path below it.
type Ref struct {
	Value string
	Path  []mirror.Selector
}

// ParseRef parses "name", "name/path..." or "name.path[...]". An empty
// string is the zero Ref, which resolves to the world root.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, nil
	}
	sels, err := mirror.ParsePath(s)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrBadRef, err)
	}
	name, ok := sels[0].(mirror.Label)
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q must start with a value name", ErrBadRef, s)
	}
	return Ref{Value: string(name), Path: sels[1:]}, nil
}

// String renders the reference in slash form.
func (r Ref) String() string {
	return mirror.FormatPath(append([]mirror.Selector{mirror.Label(r.Value)}, r.Path...))
}
