package layout

import (
	"fmt"
	"reflect"
	"slices"
)

// Object is an instance of a class. Objects have reference identity; the
// slot array holds inherited fields first, then each subclass layer's own.
type Object struct {
	class *Type
	slots []any
}

// NewObject allocates an instance of class with all slots nil.
// Panics if class is not a class type.
func NewObject(class *Type) *Object {
	if !class.IsClass() {
		panic(fmt.Sprintf("layout: NewObject of non-class type %s", class))
	}
	return &Object{class: class, slots: make([]any, class.NumFields())}
}

// Class returns the dynamic class of the object.
func (o *Object) Class() *Type {
	return o.class
}

// Field returns the value of a named field, searching the whole chain.
func (o *Object) Field(name string) (any, bool) {
	i := o.class.FieldIndex(name)
	if i < 0 {
		return nil, false
	}
	return o.slots[i], true
}

// SetField assigns a named field.
func (o *Object) SetField(name string, v any) error {
	i := o.class.FieldIndex(name)
	if i < 0 {
		return fmt.Errorf("class %s has no field %q", o.class, name)
	}
	o.slots[i] = v
	return nil
}

// layer returns the slots owned by class layer c of this object.
func (o *Object) layer(c *Type) []any {
	return o.slots[c.offset : c.offset+len(c.fields)]
}

// Record is a value of a struct type.
type Record struct {
	typ    *Type
	values []any
}

// NewRecord builds a struct value. values must match the field count.
func NewRecord(t *Type, values ...any) (Record, error) {
	if t.Kind() != KindStruct {
		return Record{}, fmt.Errorf("type %s is %s, not a struct", t, t.Kind())
	}
	if len(values) != len(t.fields) {
		return Record{}, fmt.Errorf("struct %s has %d fields, got %d values", t, len(t.fields), len(values))
	}
	return Record{typ: t, values: slices.Clone(values)}, nil
}

// Type returns the record's struct type.
func (r Record) Type() *Type {
	return r.typ
}

// Field returns the value of a named field.
func (r Record) Field(name string) (any, bool) {
	i := slices.Index(r.typ.fields, name)
	if i < 0 {
		return nil, false
	}
	return r.values[i], true
}

// Variant is a value of an enum type: one case, optionally with a payload.
type Variant struct {
	typ        *Type
	tag        string
	payload    any
	hasPayload bool
}

// NewVariant builds a payload-less enum value.
func NewVariant(t *Type, tag string) (Variant, error) {
	if t.Kind() != KindEnum {
		return Variant{}, fmt.Errorf("type %s is %s, not an enum", t, t.Kind())
	}
	if !t.HasCase(tag) {
		return Variant{}, fmt.Errorf("enum %s has no case %q", t, tag)
	}
	return Variant{typ: t, tag: tag}, nil
}

// NewVariantWith builds an enum value carrying a payload.
func NewVariantWith(t *Type, tag string, payload any) (Variant, error) {
	v, err := NewVariant(t, tag)
	if err != nil {
		return Variant{}, err
	}
	v.payload = payload
	v.hasPayload = true
	return v, nil
}

// Type returns the enum type.
func (v Variant) Type() *Type { return v.typ }

// Case returns the case name.
func (v Variant) Case() string { return v.tag }

// Payload returns the associated value, if any.
func (v Variant) Payload() (any, bool) { return v.payload, v.hasPayload }

// Tuple is an anonymous product, optionally labeled per position.
type Tuple struct {
	labels []string
	elems  []any
}

// NewTuple builds an unlabeled tuple.
func NewTuple(elems ...any) Tuple {
	return Tuple{labels: make([]string, len(elems)), elems: slices.Clone(elems)}
}

// NewLabeledTuple builds a tuple with per-position labels ("" = unlabeled).
func NewLabeledTuple(labels []string, elems []any) (Tuple, error) {
	if len(labels) != len(elems) {
		return Tuple{}, fmt.Errorf("tuple has %d labels and %d elements", len(labels), len(elems))
	}
	return Tuple{labels: slices.Clone(labels), elems: slices.Clone(elems)}, nil
}

// Len returns the number of elements.
func (t Tuple) Len() int { return len(t.elems) }

// At returns the i-th element.
func (t Tuple) At(i int) any { return t.elems[i] }

// Label returns the i-th label, or "".
func (t Tuple) Label(i int) string { return t.labels[i] }

// Optional is a value that may be absent.
type Optional struct {
	value any
	some  bool
}

// Some wraps a present value.
func Some(v any) Optional { return Optional{value: v, some: true} }

// None is the absent optional.
func None() Optional { return Optional{} }

// Get returns the wrapped value and whether it is present.
func (o Optional) Get() (any, bool) { return o.value, o.some }

// List is an ordered sequence.
type List []any

// Pair is one key/value entry of a Dict.
type Pair struct {
	Key   any
	Value any
}

// Dict is an insertion-ordered associative container.
type Dict struct {
	entries []Pair
}

// NewDict builds a dictionary. A repeated key keeps its first position and
// takes the last value.
func NewDict(pairs ...Pair) (Dict, error) {
	var d Dict
	for _, p := range pairs {
		if !isComparable(p.Key) {
			return Dict{}, fmt.Errorf("dictionary key of type %T is not comparable", p.Key)
		}
		if i := d.index(p.Key); i >= 0 {
			d.entries[i].Value = p.Value
			continue
		}
		d.entries = append(d.entries, p)
	}
	return d, nil
}

func (d Dict) index(key any) int {
	return slices.IndexFunc(d.entries, func(p Pair) bool { return p.Key == key })
}

// Len returns the number of entries.
func (d Dict) Len() int { return len(d.entries) }

// Entry returns the i-th entry in insertion order.
func (d Dict) Entry(i int) Pair { return d.entries[i] }

// Get looks up a key.
func (d Dict) Get(key any) (any, bool) {
	if !isComparable(key) {
		return nil, false
	}
	if i := d.index(key); i >= 0 {
		return d.entries[i].Value, true
	}
	return nil, false
}

// Set is an unordered membership container. Iteration follows insertion
// order so repeated reads are consistent.
type Set struct {
	items []any
}

// NewSet builds a set, dropping duplicates.
func NewSet(items ...any) (Set, error) {
	var s Set
	for _, it := range items {
		if !isComparable(it) {
			return Set{}, fmt.Errorf("set element of type %T is not comparable", it)
		}
		if !slices.Contains(s.items, it) {
			s.items = append(s.items, it)
		}
	}
	return s, nil
}

// Len returns the number of members.
func (s Set) Len() int { return len(s.items) }

// At returns the i-th member in iteration order.
func (s Set) At(i int) any { return s.items[i] }

// Foreign is an opaque handle to something the runtime cannot look inside.
type Foreign struct {
	Kind string
	Data any
}

func isComparable(v any) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

// TypeOf returns the dynamic type of a value.
func TypeOf(v any) *Type {
	switch val := v.(type) {
	case nil:
		return Nil
	case int, int8, int16, int32, int64:
		return Int
	case uint, uint8, uint16, uint32, uint64:
		return Uint
	case float32, float64:
		return Float
	case string:
		return String
	case bool:
		return Bool
	case *Object:
		if val == nil {
			return Nil
		}
		return val.class
	case Record:
		return val.typ
	case Variant:
		return val.typ
	case Tuple:
		return TupleOf(val.labels)
	case Optional:
		return OptionalType
	case List:
		return ListType
	case Dict:
		return DictType
	case Set:
		return SetType
	case *Foreign:
		if val == nil {
			return Nil
		}
		return ForeignOf(val.Kind)
	default:
		return NativeOf(reflect.TypeOf(v))
	}
}

// IsObject reports whether v is a class instance.
func IsObject(v any) bool {
	obj, ok := v.(*Object)
	return ok && obj != nil
}
