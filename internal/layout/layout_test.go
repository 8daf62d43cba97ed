package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/quicklook"
)

// shapes builds Shape(id) <- Polygon(sides) <- Square(side).
func shapes() (shape, polygon, square *Type) {
	shape = NewClass("Shape", nil, "id")
	polygon = NewClass("Polygon", shape, "sides")
	square = NewClass("Square", polygon, "side")
	return
}

func newSquare(t *testing.T, square *Type) *Object {
	t.Helper()
	o := NewObject(square)
	require.NoError(t, o.SetField("id", 7))
	require.NoError(t, o.SetField("sides", 4))
	require.NoError(t, o.SetField("side", 3))
	return o
}

func TestClassLayout(t *testing.T) {
	shape, polygon, square := shapes()

	assert.Equal(t, 3, square.NumFields())
	assert.Equal(t, 0, square.FieldIndex("id"))
	assert.Equal(t, 1, square.FieldIndex("sides"))
	assert.Equal(t, 2, square.FieldIndex("side"))
	assert.Equal(t, -1, square.FieldIndex("radius"))

	assert.Equal(t, 2, square.Depth())
	assert.Equal(t, 0, shape.Depth())
	assert.Equal(t, []*Type{square, polygon, shape}, square.Chain())
	assert.True(t, square.IsSubclassOf(shape))
	assert.False(t, shape.IsSubclassOf(square))
	assert.Equal(t, []string{"side"}, square.Fields())
}

func TestNewClassRejectsNonClassBase(t *testing.T) {
	point := NewStruct("Point", "x", "y")
	assert.Panics(t, func() { NewClass("Bad", point) })
}

func TestObjectFields(t *testing.T) {
	_, _, square := shapes()
	o := newSquare(t, square)

	v, ok := o.Field("sides")
	require.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = o.Field("radius")
	assert.False(t, ok)
	assert.Error(t, o.SetField("radius", 1))
}

func TestTypeOf(t *testing.T) {
	_, _, square := shapes()
	point := NewStruct("Point", "x", "y")
	rec, err := NewRecord(point, 1, 2)
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
		want  *Type
	}{
		{"nil", nil, Nil},
		{"int", 3, Int},
		{"int64", int64(3), Int},
		{"uint", uint8(3), Uint},
		{"float", 1.5, Float},
		{"string", "s", String},
		{"bool", true, Bool},
		{"object", NewObject(square), square},
		{"record", rec, point},
		{"list", List{1}, ListType},
		{"optional", Some(1), OptionalType},
		{"nil object", (*Object)(nil), Nil},
		{"nil foreign", (*Foreign)(nil), Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, TypeOf(tt.value))
		})
	}
}

func TestInternedTypes(t *testing.T) {
	a, err := NewLabeledTuple([]string{"x", ""}, []any{1, 2})
	require.NoError(t, err)
	b, err := NewLabeledTuple([]string{"x", ""}, []any{"p", "q"})
	require.NoError(t, err)
	assert.Same(t, TypeOf(a), TypeOf(b))
	assert.Equal(t, "(x: _, _)", TypeOf(a).Name())

	type probe struct{ A int }
	assert.Same(t, TypeOf(probe{1}), TypeOf(probe{2}))
	assert.Same(t, TypeOf(&Foreign{Kind: "fd"}), ForeignOf("fd"))
}

func TestClassLegacyLayers(t *testing.T) {
	shape, polygon, square := shapes()
	o := newSquare(t, square)

	l := Reflect(o)
	assert.Same(t, square, l.ValueType())
	assert.Equal(t, DispositionClass, l.Disposition())
	require.Equal(t, 2, l.Count())

	label, superLayer := l.Child(0)
	assert.Equal(t, "super", label)
	assert.True(t, IsSuperLayer(superLayer))
	assert.Same(t, polygon, superLayer.ValueType())

	label, side := l.Child(1)
	assert.Equal(t, "side", label)
	assert.Equal(t, 3, side.Value())
	assert.False(t, IsSuperLayer(side))

	up, ok := SuperLayer(l)
	require.True(t, ok)
	top, ok := SuperLayer(up)
	require.True(t, ok)
	assert.Same(t, shape, top.ValueType())
	assert.Equal(t, 1, top.Count())

	_, ok = SuperLayer(top)
	assert.False(t, ok)
}

func TestContainerLegacyViews(t *testing.T) {
	color := NewEnum("Color", "red", "rgb")
	rgb, err := NewVariantWith(color, "rgb", NewTuple(1, 2, 3))
	require.NoError(t, err)
	red, err := NewVariant(color, "red")
	require.NoError(t, err)
	dict, err := NewDict(Pair{"b", 2}, Pair{"a", 1}, Pair{"b", 3})
	require.NoError(t, err)
	set, err := NewSet(1, 2, 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		value  any
		disp   Disposition
		labels []string
	}{
		{"enum payload", rgb, DispositionEnum, []string{"rgb"}},
		{"enum bare", red, DispositionEnum, nil},
		{"tuple", NewTuple("a", "b"), DispositionTuple, []string{".0", ".1"}},
		{"optional some", Some(1), DispositionOptional, []string{"some"}},
		{"optional none", None(), DispositionOptional, nil},
		{"list", List{"x", "y"}, DispositionIndexContainer, []string{"[0]", "[1]"}},
		{"dict", dict, DispositionKeyContainer, []string{"[0]", "[1]"}},
		{"set", set, DispositionMembershipContainer, []string{"[0]", "[1]"}},
		{"scalar", 42, DispositionAggregate, nil},
		{"foreign", &Foreign{Kind: "socket"}, DispositionForeignObject, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Reflect(tt.value)
			assert.Equal(t, tt.disp, l.Disposition())
			var labels []string
			for i := 0; i < l.Count(); i++ {
				label, _ := l.Child(i)
				labels = append(labels, label)
			}
			assert.Equal(t, tt.labels, labels)
		})
	}
}

func TestDictKeepsInsertionOrder(t *testing.T) {
	dict, err := NewDict(Pair{"b", 2}, Pair{"a", 1}, Pair{"b", 3})
	require.NoError(t, err)
	require.Equal(t, 2, dict.Len())
	assert.Equal(t, Pair{"b", 3}, dict.Entry(0))
	assert.Equal(t, Pair{"a", 1}, dict.Entry(1))

	_, entry := Reflect(dict).Child(0)
	assert.Equal(t, DispositionTuple, entry.Disposition())
	label, key := entry.Child(0)
	assert.Equal(t, "key", label)
	assert.Equal(t, "b", key.Value())

	_, err = NewDict(Pair{Key: []int{1}, Value: 1})
	assert.Error(t, err)
}

func TestNativeLegacyView(t *testing.T) {
	type inner struct {
		Name string
		tag  string
	}
	type outer struct {
		Inner inner
		Items []int
		Index map[string]int
	}
	v := &outer{
		Inner: inner{Name: "n", tag: "hidden"},
		Items: []int{1, 2},
		Index: map[string]int{"z": 1, "a": 2},
	}

	l := Reflect(v)
	assert.Equal(t, DispositionStruct, l.Disposition())
	require.Equal(t, 3, l.Count())

	label, in := l.Child(0)
	assert.Equal(t, "Inner", label)
	assert.Equal(t, 1, in.Count(), "unexported fields are skipped")

	_, items := l.Child(1)
	assert.Equal(t, DispositionIndexContainer, items.Disposition())
	assert.Equal(t, 2, items.Count())

	_, index := l.Child(2)
	_, first := index.Child(0)
	_, key := first.Child(0)
	assert.Equal(t, "a", key.Value(), "map keys are ordered")

	var nilPtr *outer
	assert.Equal(t, 0, Reflect(nilPtr).Count())
	assert.Equal(t, "nil", Reflect(nilPtr).Summary())
}

// mapKeys returns the entry keys of a native map view in child order.
func mapKeys(l Legacy) []any {
	keys := make([]any, l.Count())
	for i := range keys {
		_, entry := l.Child(i)
		_, k := entry.Child(0)
		keys[i] = k.Value()
	}
	return keys
}

func TestNativeMapOrder(t *testing.T) {
	m := map[any]int{1: 1, "1": 2, int8(1): 3, uint(1): 4}
	want := []any{1, int8(1), "1", uint(1)}
	for i := 0; i < 50; i++ {
		require.Equal(t, want, mapKeys(Reflect(m)), "keys that print alike are ordered by type")
	}
}

func TestNativeMapNaNKeys(t *testing.T) {
	m := map[float64]int{}
	m[math.NaN()] = 2
	m[math.NaN()] = 1
	m[0.5] = 3

	l := Reflect(m)
	require.Equal(t, 3, l.Count())
	var got []string
	for i := 0; i < l.Count(); i++ {
		_, entry := l.Child(i)
		got = append(got, entry.Summary())
	}
	assert.Equal(t, []string{"(key: 0.5, value: 3)", "(key: NaN, value: 1)", "(key: NaN, value: 2)"}, got)
}

func TestNilReferences(t *testing.T) {
	for _, v := range []any{(*Object)(nil), (*Foreign)(nil)} {
		l := Reflect(v)
		assert.Equal(t, 0, l.Count())
		assert.Same(t, Nil, l.ValueType())
		assert.Equal(t, "nil", l.Summary())
		assert.Equal(t, "nil", Summary(v))
	}
	assert.False(t, IsObject((*Object)(nil)))
}

func TestIdentityOf(t *testing.T) {
	type node struct{ Next *node }
	a := &node{}
	a.Next = a
	s := []int{1, 2}

	idA, ok := IdentityOf(a)
	require.True(t, ok)
	idNext, ok := IdentityOf(a.Next)
	require.True(t, ok)
	assert.Equal(t, idA, idNext)

	idS, ok := IdentityOf(s)
	require.True(t, ok)
	idPrefix, ok := IdentityOf(s[:1])
	require.True(t, ok)
	assert.NotEqual(t, idS, idPrefix)

	for _, v := range []any{nil, 3, "s", (*node)(nil), []int{}, node{}} {
		_, ok := IdentityOf(v)
		assert.False(t, ok, "%#v", v)
	}
}

func TestQuickLook(t *testing.T) {
	assert.Equal(t, quicklook.Text("hi"), Reflect("hi").QuickLook())
	assert.Equal(t, quicklook.Int(3), Reflect(3).QuickLook())
	assert.Equal(t, quicklook.Double(1.5), Reflect(1.5).QuickLook())
	assert.Equal(t, quicklook.Bool(true), Reflect(true).QuickLook())
	assert.Nil(t, Reflect(List{}).QuickLook())

	type celsius float64
	assert.Equal(t, quicklook.Double(21.5), Reflect(celsius(21.5)).QuickLook())
}

func TestSummary(t *testing.T) {
	color := NewEnum("Color", "red", "named")
	named, err := NewVariantWith(color, "named", "teal")
	require.NoError(t, err)
	labeled, err := NewLabeledTuple([]string{"x", ""}, []any{1, "b"})
	require.NoError(t, err)

	assert.Equal(t, "hi", Summary("hi"))
	assert.Equal(t, `"hi"`, DebugSummary("hi"))
	assert.Equal(t, "1.5", Summary(1.5))
	assert.Equal(t, `Color.named("teal")`, Summary(named))
	assert.Equal(t, `(x: 1, "b")`, Summary(labeled))
	assert.Equal(t, "Optional(3)", Summary(Some(3)))
	assert.Equal(t, "nil", Summary(None()))
	assert.Equal(t, "1 element", Summary(List{1}))
	assert.Equal(t, "0 members", Summary(Set{}))
}

func TestScope(t *testing.T) {
	s := NewScope()
	shape, _, _ := shapes()

	assert.Nil(t, s.Insert(shape))
	assert.Same(t, shape, s.Insert(NewClass("Shape", nil)))
	assert.Same(t, shape, s.Lookup("Shape"))
	assert.Same(t, Int, s.Lookup("Int"))
	assert.Equal(t, []*Type{shape}, s.Declared())
}
