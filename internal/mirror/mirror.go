package mirror

import (
	"iter"

	"github.com/roach88/mirror/internal/layout"
)

// Child is one named-or-unnamed part of a mirrored value.
type Child struct {
	Label   string
	Labeled bool
	Value   any
}

// Labeled returns a child carrying label.
func Labeled(label string, v any) Child {
	return Child{Label: label, Labeled: true, Value: v}
}

// Unlabeled returns a child with no label.
func Unlabeled(v any) Child {
	return Child{Value: v}
}

// Children is an ordered, finite, read-only collection of children.
// At panics when i is outside [0, Len()).
type Children interface {
	Len() int
	At(i int) Child
}

// All iterates c in order.
func All(c Children) iter.Seq2[int, Child] {
	return func(yield func(int, Child) bool) {
		for i := 0; i < c.Len(); i++ {
			if !yield(i, c.At(i)) {
				return
			}
		}
	}
}

// KeyValue is one entry of an ordered literal; every key becomes a label.
type KeyValue struct {
	Key   string
	Value any
}

// KeyValuePairs is an ordered literal of labeled children. Duplicate keys
// are kept.
type KeyValuePairs []KeyValue

// KV is shorthand for building KeyValuePairs entries.
func KV(key string, v any) KeyValue {
	return KeyValue{Key: key, Value: v}
}

type childSlice []Child

func (c childSlice) Len() int       { return len(c) }
func (c childSlice) At(i int) Child { return c[i] }

type unlabeledChildren []any

func (u unlabeledChildren) Len() int       { return len(u) }
func (u unlabeledChildren) At(i int) Child { return Unlabeled(u[i]) }

type pairChildren KeyValuePairs

func (p pairChildren) Len() int       { return len(p) }
func (p pairChildren) At(i int) Child { return Labeled(p[i].Key, p[i].Value) }

// legacyChildren exposes a legacy view's children, skipping the super-layer
// marker at position 0 when present.
type legacyChildren struct {
	view  layout.Legacy
	start int
}

func newLegacyChildren(l layout.Legacy) legacyChildren {
	c := legacyChildren{view: l}
	if _, ok := layout.SuperLayer(l); ok {
		c.start = 1
	}
	return c
}

func (c legacyChildren) Len() int { return c.view.Count() - c.start }

func (c legacyChildren) At(i int) Child {
	if i < 0 || i >= c.Len() {
		invariant("children", "index %d out of range [0, %d)", i, c.Len())
	}
	label, child := c.view.Child(c.start + i)
	return Labeled(label, child.Value())
}

type descendantPolicy uint8

const (
	descendantsGenerated descendantPolicy = iota
	descendantsSuppressed
)

// Mirror is an immutable structural description of one value: its static
// type, its ordered children, a display hint, and a lazily produced
// ancestor mirror.
//
// CRITICAL: a Mirror never caches its ancestor. Each SuperclassMirror call
// recomputes it, so results are independent values.
type Mirror struct {
	r           *Reflector
	subjectType *layout.Type
	children    Children
	display     DisplayHint
	ancestry    ancestry
	descendants descendantPolicy
}

// Option configures a Mirror built by New, NewUnlabeled or NewOrdered.
type Option func(*options)

type options struct {
	display   DisplayHint
	ancestors AncestorRepresentation
}

// WithDisplayHint sets the display hint. The default is DisplayNone.
func WithDisplayHint(h DisplayHint) Option {
	return func(o *options) { o.display = h }
}

// WithAncestors sets the ancestor policy. The default is GeneratedAncestors.
func WithAncestors(a AncestorRepresentation) Option {
	return func(o *options) { o.ancestors = a }
}

// New builds a mirror of subject with the given labeled or unlabeled
// children. The slice is copied.
func New(subject Subject, children []Child, opts ...Option) *Mirror {
	return build(subject, childSlice(append([]Child(nil), children...)), opts)
}

// NewUnlabeled builds a mirror whose children carry no labels.
func NewUnlabeled(subject Subject, values []any, opts ...Option) *Mirror {
	return build(subject, unlabeledChildren(append([]any(nil), values...)), opts)
}

// NewOrdered builds a mirror from an ordered literal; every child is labeled
// with its key, in literal order.
func NewOrdered(subject Subject, pairs KeyValuePairs, opts ...Option) *Mirror {
	return build(subject, pairChildren(append(KeyValuePairs(nil), pairs...)), opts)
}

func build(subject Subject, children Children, opts []Option) *Mirror {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	r := subject.reflector()
	m := &Mirror{
		r:           r,
		subjectType: subject.Type(),
		children:    children,
		display:     o.display,
		ancestry:    r.ancestryFor(subject, o.ancestors),
	}
	if r.subjectIsLeaf(subject.Value()) {
		m.descendants = descendantsSuppressed
	}
	return m
}

// SubjectType returns the static type the mirror describes.
func (m *Mirror) SubjectType() *layout.Type { return m.subjectType }

// Children returns the mirror's children in order.
func (m *Mirror) Children() Children { return m.children }

// All iterates the mirror's children in order.
func (m *Mirror) All() iter.Seq2[int, Child] { return All(m.children) }

// DisplayHint returns the mirror's display hint.
func (m *Mirror) DisplayHint() DisplayHint { return m.display }

// Ancestry reports which kind of ancestor production this mirror holds.
func (m *Mirror) Ancestry() AncestryKind { return m.ancestry.kind }

// SuperclassMirror returns a freshly produced mirror for the subject as an
// instance of the next type up the chain, or nil when there is none.
func (m *Mirror) SuperclassMirror() *Mirror {
	return m.ancestry.resolve()
}

// Ancestors returns the full ancestor chain, nearest first.
func (m *Mirror) Ancestors() []*Mirror {
	var out []*Mirror
	for a := m.SuperclassMirror(); a != nil; a = a.SuperclassMirror() {
		out = append(out, a)
	}
	return out
}

// String returns "Mirror for T".
func (m *Mirror) String() string {
	return "Mirror for " + m.subjectType.Name()
}

// CustomMirror describes a mirror as a value with no children.
func (m *Mirror) CustomMirror(s Subject) *Mirror {
	return New(s, nil)
}

// Descendant follows a path of selectors from this mirror, reflecting each
// intermediate child. It reports false if any step is absent.
func (m *Mirror) Descendant(first Selector, rest ...Selector) (any, bool) {
	return m.reflector().walk(m, first, rest)
}

func (m *Mirror) reflector() *Reflector {
	if m.r == nil {
		return Default
	}
	return m.r
}
