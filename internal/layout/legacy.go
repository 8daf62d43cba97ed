package layout

import (
	"fmt"

	"github.com/roach88/mirror/internal/quicklook"
)

// Disposition is the coarse structural tag of a legacy view.
type Disposition uint8

const (
	DispositionStruct Disposition = iota
	DispositionClass
	DispositionEnum
	DispositionTuple
	DispositionAggregate
	DispositionIndexContainer
	DispositionKeyContainer
	DispositionMembershipContainer
	DispositionContainer // reserved; no view produces it
	DispositionOptional
	DispositionForeignObject
)

var dispositionNames = [...]string{
	DispositionStruct:              "struct",
	DispositionClass:               "class",
	DispositionEnum:                "enum",
	DispositionTuple:               "tuple",
	DispositionAggregate:           "aggregate",
	DispositionIndexContainer:      "index_container",
	DispositionKeyContainer:        "key_container",
	DispositionMembershipContainer: "membership_container",
	DispositionContainer:           "container",
	DispositionOptional:            "optional",
	DispositionForeignObject:       "foreign_object",
}

func (d Disposition) String() string {
	if int(d) < len(dispositionNames) {
		return dispositionNames[d]
	}
	return fmt.Sprintf("Disposition(%d)", d)
}

// Legacy is the low-level, per-layer structural view of a value: a flat list
// of labeled child views plus a disposition tag.
//
// For class instances each class layer is a separate view. When the class
// has a base, entry zero is a superclass marker view for the base layer.
type Legacy interface {
	// Value returns the value this view describes.
	Value() any
	// ValueType returns the type of this layer.
	ValueType() *Type
	// Count returns the number of entries, including a superclass marker.
	Count() int
	// Child returns the i-th entry.
	Child(i int) (string, Legacy)
	// Disposition returns the structural tag.
	Disposition() Disposition
	// QuickLook returns a preview, or nil when the value has none.
	QuickLook() quicklook.Value
	// Summary returns a one-line description.
	Summary() string
}

// Reflect returns the legacy view of v at its dynamic type.
func Reflect(v any) Legacy {
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return leafView{disp: DispositionAggregate}
		}
		return classView{obj: val, class: val.class}
	case Record:
		return recordView{r: val}
	case Variant:
		return variantView{v: val}
	case Tuple:
		return tupleView{t: val}
	case Optional:
		return optionalView{o: val}
	case List:
		return listView{l: val}
	case Dict:
		return dictView{d: val}
	case Set:
		return setView{s: val}
	case *Foreign:
		if val == nil {
			return leafView{disp: DispositionAggregate}
		}
		return leafView{v: val, disp: DispositionForeignObject}
	case nil, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, string, bool:
		return leafView{v: val, disp: DispositionAggregate}
	default:
		return newNativeView(v)
	}
}

// IsSuperLayer reports whether l is a superclass marker view.
func IsSuperLayer(l Legacy) bool {
	_, ok := l.(superView)
	return ok
}

// SuperLayer returns the superclass marker stored at entry zero of l.
func SuperLayer(l Legacy) (Legacy, bool) {
	if l == nil || l.Count() == 0 {
		return nil, false
	}
	if _, child := l.Child(0); IsSuperLayer(child) {
		return child, true
	}
	return nil, false
}

// leafView describes values with no structure.
type leafView struct {
	v    any
	disp Disposition
}

func (l leafView) Value() any                 { return l.v }
func (l leafView) ValueType() *Type           { return TypeOf(l.v) }
func (l leafView) Count() int                 { return 0 }
func (l leafView) Disposition() Disposition   { return l.disp }
func (l leafView) Summary() string            { return Summary(l.v) }
func (l leafView) QuickLook() quicklook.Value { return scalarQuickLook(l.v) }

func (l leafView) Child(i int) (string, Legacy) {
	panic(fmt.Sprintf("layout: child %d of leaf %s", i, TypeOf(l.v)))
}

// classView is one class layer of an object.
type classView struct {
	obj   *Object
	class *Type
}

// superView marks a class layer reached through a subclass layer.
type superView struct {
	classView
}

func (c classView) Value() any                 { return c.obj }
func (c classView) ValueType() *Type           { return c.class }
func (c classView) Disposition() Disposition   { return DispositionClass }
func (c classView) Summary() string            { return c.class.name }
func (c classView) QuickLook() quicklook.Value { return nil }

func (c classView) Count() int {
	n := len(c.class.fields)
	if c.class.super != nil {
		n++
	}
	return n
}

func (c classView) Child(i int) (string, Legacy) {
	if c.class.super != nil {
		if i == 0 {
			return "super", superView{classView{obj: c.obj, class: c.class.super}}
		}
		i--
	}
	return c.class.fields[i], Reflect(c.obj.layer(c.class)[i])
}

type recordView struct {
	r Record
}

func (r recordView) Value() any                 { return r.r }
func (r recordView) ValueType() *Type           { return r.r.typ }
func (r recordView) Count() int                 { return len(r.r.values) }
func (r recordView) Disposition() Disposition   { return DispositionStruct }
func (r recordView) Summary() string            { return r.r.typ.name }
func (r recordView) QuickLook() quicklook.Value { return nil }

func (r recordView) Child(i int) (string, Legacy) {
	return r.r.typ.fields[i], Reflect(r.r.values[i])
}

type variantView struct {
	v Variant
}

func (v variantView) Value() any                 { return v.v }
func (v variantView) ValueType() *Type           { return v.v.typ }
func (v variantView) Disposition() Disposition   { return DispositionEnum }
func (v variantView) Summary() string            { return Summary(v.v) }
func (v variantView) QuickLook() quicklook.Value { return nil }

func (v variantView) Count() int {
	if v.v.hasPayload {
		return 1
	}
	return 0
}

func (v variantView) Child(i int) (string, Legacy) {
	if i != 0 || !v.v.hasPayload {
		panic(fmt.Sprintf("layout: child %d of enum case %s", i, v.v.tag))
	}
	return v.v.tag, Reflect(v.v.payload)
}

type tupleView struct {
	t Tuple
}

func (t tupleView) Value() any                 { return t.t }
func (t tupleView) ValueType() *Type           { return TypeOf(t.t) }
func (t tupleView) Count() int                 { return len(t.t.elems) }
func (t tupleView) Disposition() Disposition   { return DispositionTuple }
func (t tupleView) Summary() string            { return Summary(t.t) }
func (t tupleView) QuickLook() quicklook.Value { return nil }

func (t tupleView) Child(i int) (string, Legacy) {
	label := t.t.labels[i]
	if label == "" {
		label = fmt.Sprintf(".%d", i)
	}
	return label, Reflect(t.t.elems[i])
}

type optionalView struct {
	o Optional
}

func (o optionalView) Value() any                 { return o.o }
func (o optionalView) ValueType() *Type           { return OptionalType }
func (o optionalView) Disposition() Disposition   { return DispositionOptional }
func (o optionalView) Summary() string            { return Summary(o.o) }
func (o optionalView) QuickLook() quicklook.Value { return nil }

func (o optionalView) Count() int {
	if o.o.some {
		return 1
	}
	return 0
}

func (o optionalView) Child(i int) (string, Legacy) {
	if i != 0 || !o.o.some {
		panic(fmt.Sprintf("layout: child %d of optional", i))
	}
	return "some", Reflect(o.o.value)
}

type listView struct {
	l List
}

func (l listView) Value() any                 { return l.l }
func (l listView) ValueType() *Type           { return ListType }
func (l listView) Count() int                 { return len(l.l) }
func (l listView) Disposition() Disposition   { return DispositionIndexContainer }
func (l listView) Summary() string            { return Summary(l.l) }
func (l listView) QuickLook() quicklook.Value { return nil }

func (l listView) Child(i int) (string, Legacy) {
	return fmt.Sprintf("[%d]", i), Reflect(l.l[i])
}

type dictView struct {
	d Dict
}

func (d dictView) Value() any                 { return d.d }
func (d dictView) ValueType() *Type           { return DictType }
func (d dictView) Count() int                 { return len(d.d.entries) }
func (d dictView) Disposition() Disposition   { return DispositionKeyContainer }
func (d dictView) Summary() string            { return Summary(d.d) }
func (d dictView) QuickLook() quicklook.Value { return nil }

// Child returns each entry as a (key:, value:) tuple.
func (d dictView) Child(i int) (string, Legacy) {
	e := d.d.entries[i]
	entry := Tuple{labels: []string{"key", "value"}, elems: []any{e.Key, e.Value}}
	return fmt.Sprintf("[%d]", i), Reflect(entry)
}

type setView struct {
	s Set
}

func (s setView) Value() any                 { return s.s }
func (s setView) ValueType() *Type           { return SetType }
func (s setView) Count() int                 { return len(s.s.items) }
func (s setView) Disposition() Disposition   { return DispositionMembershipContainer }
func (s setView) Summary() string            { return Summary(s.s) }
func (s setView) QuickLook() quicklook.Value { return nil }

func (s setView) Child(i int) (string, Legacy) {
	return fmt.Sprintf("[%d]", i), Reflect(s.s.items[i])
}

// scalarQuickLook maps builtin scalars onto previews.
func scalarQuickLook(v any) quicklook.Value {
	switch val := v.(type) {
	case string:
		return quicklook.Text(val)
	case bool:
		return quicklook.Bool(val)
	case int:
		return quicklook.Int(val)
	case int8:
		return quicklook.Int(val)
	case int16:
		return quicklook.Int(val)
	case int32:
		return quicklook.Int(val)
	case int64:
		return quicklook.Int(val)
	case uint:
		return quicklook.Uint(val)
	case uint8:
		return quicklook.Uint(val)
	case uint16:
		return quicklook.Uint(val)
	case uint32:
		return quicklook.Uint(val)
	case uint64:
		return quicklook.Uint(val)
	case float32:
		return quicklook.Float(val)
	case float64:
		return quicklook.Double(val)
	default:
		return nil
	}
}
