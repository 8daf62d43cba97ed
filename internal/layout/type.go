// Package layout implements the runtime object model that mirrors describe.
//
// It plays the role of the host runtime's object layout and class metadata:
// every value has a dynamic Type, class types form a single-inheritance
// chain, and Reflect produces the legacy per-layer structural view that the
// mirror package builds on.
//
// Key constraints:
//   - Types are compared by identity; composite types are interned so that
//     TypeOf is stable across calls
//   - Class instances store their slots base-first, so every class layer owns
//     a contiguous range of slots
//   - Nothing in this package knows about mirrors or custom descriptions
package layout

import (
	"fmt"
	"slices"
)

// Kind classifies a Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindScalar
	KindStruct
	KindClass
	KindEnum
	KindTuple
	KindOptional
	KindList
	KindDict
	KindSet
	KindForeign
	KindNative
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindScalar:   "scalar",
	KindStruct:   "struct",
	KindClass:    "class",
	KindEnum:     "enum",
	KindTuple:    "tuple",
	KindOptional: "optional",
	KindList:     "list",
	KindDict:     "dict",
	KindSet:      "set",
	KindForeign:  "foreign",
	KindNative:   "native",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Type is a runtime type. Types are nominal and compared by pointer.
type Type struct {
	name   string
	kind   Kind
	super  *Type    // base class (classes only)
	fields []string // own fields (structs and classes)
	cases  []string // enum cases
	offset int      // number of inherited slots (classes only)
}

// NewClass creates a class type. super may be nil for a root class.
// Panics if super is not a class.
func NewClass(name string, super *Type, fields ...string) *Type {
	t := &Type{name: name, kind: KindClass, super: super, fields: slices.Clone(fields)}
	if super != nil {
		if super.kind != KindClass {
			panic(fmt.Sprintf("layout: base of class %s is %s, not a class", name, super.kind))
		}
		t.offset = super.NumFields()
	}
	return t
}

// NewStruct creates a value-semantics aggregate type.
func NewStruct(name string, fields ...string) *Type {
	return &Type{name: name, kind: KindStruct, fields: slices.Clone(fields)}
}

// NewEnum creates a tagged union type.
func NewEnum(name string, cases ...string) *Type {
	return &Type{name: name, kind: KindEnum, cases: slices.Clone(cases)}
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

// String implements fmt.Stringer.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Kind returns the type's kind.
func (t *Type) Kind() Kind {
	return t.kind
}

// IsClass reports whether t is a class (reference, subtype-polymorphic) type.
func (t *Type) IsClass() bool {
	return t != nil && t.kind == KindClass
}

// Super returns the immediate base class, or nil.
func (t *Type) Super() *Type {
	if t == nil {
		return nil
	}
	return t.super
}

// Fields returns the fields declared by t itself (not inherited ones).
func (t *Type) Fields() []string {
	return slices.Clone(t.fields)
}

// Cases returns the enum cases.
func (t *Type) Cases() []string {
	return slices.Clone(t.cases)
}

// HasCase reports whether name is a case of enum t.
func (t *Type) HasCase(name string) bool {
	return slices.Contains(t.cases, name)
}

// NumFields returns the number of slots, including inherited class slots.
func (t *Type) NumFields() int {
	return t.offset + len(t.fields)
}

// FieldIndex returns the slot index of a field, searching own fields first
// and then base classes. Returns -1 if not found.
func (t *Type) FieldIndex(name string) int {
	for c := t; c != nil; c = c.super {
		if i := slices.Index(c.fields, name); i >= 0 {
			return c.offset + i
		}
	}
	return -1
}

// Depth returns the number of base classes above t.
func (t *Type) Depth() int {
	n := 0
	for c := t.Super(); c != nil; c = c.super {
		n++
	}
	return n
}

// Chain returns t followed by each base class, most derived first.
func (t *Type) Chain() []*Type {
	var chain []*Type
	for c := t; c != nil; c = c.super {
		chain = append(chain, c)
	}
	return chain
}

// IsSubclassOf reports whether t is u or inherits from u.
func (t *Type) IsSubclassOf(u *Type) bool {
	for c := t; c != nil; c = c.super {
		if c == u {
			return true
		}
	}
	return false
}
