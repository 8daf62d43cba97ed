package mirror

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Selector picks one child of a mirror: by label (Label) or by position
// (Index).
type Selector interface {
	selector()
	String() string
}

// Label selects the first child carrying this label.
type Label string

// Index selects the child at this zero-based position.
type Index int

func (Label) selector() {}
func (Index) selector() {}

func (l Label) String() string { return string(l) }
func (i Index) String() string { return strconv.Itoa(int(i)) }

// ErrEmptyPath is returned by ParsePath for a path with no selectors.
var ErrEmptyPath = errors.New("empty path")

// Descendant follows a path of selectors from v's mirror. Each step selects a
// child of the current mirror, then reflects that child to continue. It
// reports false if any step is absent.
func (r *Reflector) Descendant(v any, first Selector, rest ...Selector) (any, bool) {
	return r.walk(r.Reflect(v), first, rest)
}

// DescendantPath is Descendant with a pre-built path. An empty path is absent.
func (r *Reflector) DescendantPath(v any, path []Selector) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	return r.Descendant(v, path[0], path[1:]...)
}

func (r *Reflector) walk(m *Mirror, first Selector, rest []Selector) (any, bool) {
	sel := first
	for i := 0; ; i++ {
		child, ok := pick(m.children, sel)
		if !ok {
			return nil, false
		}
		if i == len(rest) {
			return child.Value, true
		}
		sel = rest[i]
		m = r.Reflect(child.Value)
	}
}

func pick(c Children, sel Selector) (Child, bool) {
	switch s := sel.(type) {
	case Label:
		for i := 0; i < c.Len(); i++ {
			if ch := c.At(i); ch.Labeled && ch.Label == string(s) {
				return ch, true
			}
		}
	case Index:
		if s >= 0 && int(s) < c.Len() {
			return c.At(int(s)), true
		}
	}
	return Child{}, false
}

// ParsePath parses a textual path into selectors. Two forms are accepted:
//
//	a/2/b       slash separated; all-digit segments are indexes
//	a.b[2].c    dotted labels with bracketed indexes
//
// In either form a segment wrapped in single quotes is always a label, so
// 'x.y' or '[0]' select children with those literal labels.
func ParsePath(s string) ([]Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyPath
	}
	if strings.Contains(s, "/") && !strings.HasPrefix(s, "'") {
		return parseSlashPath(s)
	}
	return parseDottedPath(s)
}

func parseSlashPath(s string) ([]Selector, error) {
	var out []Selector
	for _, seg := range strings.Split(strings.Trim(s, "/"), "/") {
		switch {
		case seg == "":
			return nil, fmt.Errorf("path %q: empty segment", s)
		case isQuoted(seg):
			out = append(out, Label(seg[1:len(seg)-1]))
		case isDigits(seg):
			n, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			out = append(out, Index(n))
		default:
			out = append(out, Label(seg))
		}
	}
	return out, nil
}

func parseDottedPath(s string) ([]Selector, error) {
	var out []Selector
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == '.':
			if i == 0 || i == len(s)-1 || s[i+1] == '.' {
				return nil, fmt.Errorf("path %q: empty segment", s)
			}
			i++
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unclosed '['", s)
			}
			digits := s[i+1 : i+end]
			if !isDigits(digits) {
				return nil, fmt.Errorf("path %q: index %q is not a number", s, digits)
			}
			n, err := strconv.Atoi(digits)
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			out = append(out, Index(n))
			i += end + 1
		case c == '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unclosed quote", s)
			}
			out = append(out, Label(s[i+1:i+1+end]))
			i += end + 2
		default:
			end := strings.IndexAny(s[i:], ".[")
			if end < 0 {
				end = len(s) - i
			}
			out = append(out, Label(s[i:i+end]))
			i += end
		}
	}
	return out, nil
}

// FormatPath renders selectors in the slash form accepted by ParsePath.
func FormatPath(path []Selector) string {
	parts := make([]string, len(path))
	for i, sel := range path {
		s := sel.String()
		if l, ok := sel.(Label); ok && (isDigits(string(l)) || s == "") {
			s = "'" + s + "'"
		}
		parts[i] = s
	}
	return strings.Join(parts, "/")
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
