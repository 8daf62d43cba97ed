package mirror

import (
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/mirror/internal/layout"
)

// Reflectable is implemented by Go values that supply their own structural
// description. It takes precedence over any description registered for the
// value's type.
type Reflectable interface {
	CustomMirror(s Subject) *Mirror
}

// LeafReflectable marks a Reflectable whose description must not be
// synthesized for its descendants: when it appears as an ancestor, merging
// stops and it is used as-is.
type LeafReflectable interface {
	Reflectable
	leafReflectable()
}

// Leaf can be embedded in a Go type to make it a LeafReflectable.
type Leaf struct{}

func (Leaf) leafReflectable() {}

// DescribeFunc builds the custom mirror for a subject. It must not return nil.
type DescribeFunc func(s Subject) *Mirror

// Reflector resolves mirrors for values. It holds the custom descriptions
// declared for runtime types and the set of leaf types.
//
// A Reflector is safe for concurrent use; mirrors it produces are immutable.
type Reflector struct {
	mu     sync.RWMutex
	custom map[*layout.Type]DescribeFunc
	leaves map[*layout.Type]bool
	logger *slog.Logger
}

// ReflectorOption configures a Reflector.
type ReflectorOption func(*Reflector)

// WithLogger sets the logger used for resolution tracing. The default
// discards everything.
func WithLogger(l *slog.Logger) ReflectorOption {
	return func(r *Reflector) { r.logger = l }
}

// NewReflector creates a Reflector with no declared descriptions.
func NewReflector(opts ...ReflectorOption) *Reflector {
	r := &Reflector{
		custom: make(map[*layout.Type]DescribeFunc),
		leaves: make(map[*layout.Type]bool),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the Reflector used by the package-level helpers and by mirrors
// built from a zero Subject.
var Default = NewReflector()

// Reflect returns the mirror of v using Default.
func Reflect(v any) *Mirror { return Default.Reflect(v) }

// Describe declares fn as the custom description of values whose type is t.
// A later declaration for the same type replaces the earlier one.
func (r *Reflector) Describe(t *layout.Type, fn DescribeFunc) {
	if t == nil || fn == nil {
		invariant("describe", "nil type or description")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[t] = fn
}

// MarkLeaf makes t a leaf type: its description, and that of every subclass,
// is never merged with synthesized descendants.
func (r *Reflector) MarkLeaf(t *layout.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves[t] = true
}

// Declares reports whether t has its own custom description.
func (r *Reflector) Declares(t *layout.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.custom[t]
	return ok
}

// IsLeaf reports whether t or any of its bases was marked as a leaf.
func (r *Reflector) IsLeaf(t *layout.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isLeafLocked(t)
}

func (r *Reflector) isLeafLocked(t *layout.Type) bool {
	for c := t; c != nil; c = c.Super() {
		if r.leaves[c] {
			return true
		}
	}
	return false
}

func (r *Reflector) subjectIsLeaf(v any) bool {
	if _, ok := v.(LeafReflectable); ok {
		return true
	}
	return r.IsLeaf(layout.TypeOf(v))
}

// descriptionFor returns the description applying to values of type t and
// the type that declared it. Descriptions are not inherited, except that an
// undeclared subclass of a leaf type uses the nearest declared leaf
// ancestor's description.
func (r *Reflector) descriptionFor(t *layout.Type) (DescribeFunc, *layout.Type) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.custom[t]; ok {
		return fn, t
	}
	for c := t.Super(); c != nil; c = c.Super() {
		if fn, ok := r.custom[c]; ok {
			if r.isLeafLocked(c) {
				return fn, c
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *Reflector) describe(fn DescribeFunc, s Subject) *Mirror {
	m := fn(s)
	if m == nil {
		invariant("reflect", "description of %s returned no mirror", s.Type())
	}
	return m
}

// Reflect returns the mirror of v. A Go value implementing Reflectable
// describes itself; otherwise a description declared for v's type is used;
// otherwise the mirror is derived from v's legacy view.
func (r *Reflector) Reflect(v any) *Mirror {
	if c, ok := v.(Reflectable); ok {
		m := c.CustomMirror(r.Subject(v))
		if m == nil {
			invariant("reflect", "%T returned no mirror", v)
		}
		return m
	}
	t := layout.TypeOf(v)
	if fn, declared := r.descriptionFor(t); fn != nil {
		if declared != t {
			r.logger.Debug("using leaf ancestor description", "type", t.Name(), "declared_by", declared.Name())
		}
		return r.describe(fn, Subject{r: r, value: v, typ: declared})
	}
	return r.fromLegacy(v)
}

// Subject is the value a custom description is building a mirror for,
// together with the static type being described.
type Subject struct {
	r     *Reflector
	value any
	typ   *layout.Type
}

// Subject returns a subject for v at its dynamic type.
func (r *Reflector) Subject(v any) Subject {
	return Subject{r: r, value: v, typ: layout.TypeOf(v)}
}

// SubjectAs returns a subject for v described as t, which must be v's
// dynamic type or one of its class ancestors.
func (r *Reflector) SubjectAs(v any, t *layout.Type) Subject {
	dyn := layout.TypeOf(v)
	if t != dyn && !(dyn.IsClass() && dyn.IsSubclassOf(t)) {
		invariant("subject", "%s is not %s or one of its ancestors", t, dyn)
	}
	return Subject{r: r, value: v, typ: t}
}

// NewSubject returns a subject for v at its dynamic type, bound to Default.
func NewSubject(v any) Subject { return Default.Subject(v) }

// Value returns the subject value.
func (s Subject) Value() any { return s.value }

// Type returns the static type being described.
func (s Subject) Type() *layout.Type {
	if s.typ == nil {
		return layout.TypeOf(s.value)
	}
	return s.typ
}

// Reflector returns the reflector the subject is bound to.
func (s Subject) Reflector() *Reflector { return s.reflector() }

func (s Subject) reflector() *Reflector {
	if s.r == nil {
		return Default
	}
	return s.r
}

// SuperMirror returns the mirror of the subject viewed as an instance of the
// static type's base: the base's own description when it declares one,
// otherwise a generated node. It returns nil when there is no base.
func (s Subject) SuperMirror() *Mirror {
	obj, ok := s.value.(*layout.Object)
	base := s.Type().Super()
	if !ok || base == nil {
		return nil
	}
	return s.reflector().generatedAncestor(obj, base, nil)
}
