package layout

import (
	"reflect"
	"strings"
	"sync"
)

// Predeclared types.
var (
	Nil          = &Type{name: "Nil", kind: KindScalar}
	Int          = &Type{name: "Int", kind: KindScalar}
	Uint         = &Type{name: "UInt", kind: KindScalar}
	Float        = &Type{name: "Double", kind: KindScalar}
	String       = &Type{name: "String", kind: KindScalar}
	Bool         = &Type{name: "Bool", kind: KindScalar}
	ListType     = &Type{name: "Array", kind: KindList}
	DictType     = &Type{name: "Dictionary", kind: KindDict}
	SetType      = &Type{name: "Set", kind: KindSet}
	OptionalType = &Type{name: "Optional", kind: KindOptional}
)

// universe interns composite and native types so that identical shapes
// share one *Type. Safe for concurrent use.
var universe = struct {
	mu      sync.Mutex
	tuples  map[string]*Type
	native  map[reflect.Type]*Type
	foreign map[string]*Type
}{
	tuples:  make(map[string]*Type),
	native:  make(map[reflect.Type]*Type),
	foreign: make(map[string]*Type),
}

// TupleOf returns the interned tuple type with the given labels.
// Unlabeled positions use "".
func TupleOf(labels []string) *Type {
	var b strings.Builder
	b.WriteByte('(')
	for i, l := range labels {
		if i > 0 {
			b.WriteString(", ")
		}
		if l != "" {
			b.WriteString(l)
			b.WriteString(": ")
		}
		b.WriteByte('_')
	}
	b.WriteByte(')')
	name := b.String()

	universe.mu.Lock()
	defer universe.mu.Unlock()
	if t, ok := universe.tuples[name]; ok {
		return t
	}
	t := &Type{name: name, kind: KindTuple}
	universe.tuples[name] = t
	return t
}

// ForeignOf returns the interned type for opaque handles of a given kind.
func ForeignOf(kind string) *Type {
	universe.mu.Lock()
	defer universe.mu.Unlock()
	if t, ok := universe.foreign[kind]; ok {
		return t
	}
	t := &Type{name: "Foreign<" + kind + ">", kind: KindForeign}
	universe.foreign[kind] = t
	return t
}

// NativeOf returns the interned type for a Go type walked through reflect.
func NativeOf(rt reflect.Type) *Type {
	universe.mu.Lock()
	defer universe.mu.Unlock()
	if t, ok := universe.native[rt]; ok {
		return t
	}
	t := &Type{name: rt.String(), kind: KindNative}
	universe.native[rt] = t
	return t
}

// Scope maps type names to types. Loaders use it to resolve references.
type Scope struct {
	types map[string]*Type
	order []string
}

// NewScope creates a scope seeded with the predeclared scalar types.
func NewScope() *Scope {
	s := &Scope{types: make(map[string]*Type)}
	for _, t := range []*Type{Int, Uint, Float, String, Bool} {
		s.types[t.name] = t
	}
	return s
}

// Insert adds t to the scope. If a type with the same name exists, Insert
// leaves the scope unchanged and returns the existing type.
func (s *Scope) Insert(t *Type) *Type {
	if prev, ok := s.types[t.name]; ok {
		return prev
	}
	s.types[t.name] = t
	s.order = append(s.order, t.name)
	return nil
}

// Lookup returns the type with the given name, or nil.
func (s *Scope) Lookup(name string) *Type {
	return s.types[name]
}

// Declared returns the user-declared types in insertion order.
func (s *Scope) Declared() []*Type {
	out := make([]*Type, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.types[name])
	}
	return out
}
