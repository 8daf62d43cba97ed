package layout

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/roach88/mirror/internal/quicklook"
)

// nativeView walks an arbitrary Go value through the reflect package.
// Pointers and interfaces are followed to the value they hold; struct views
// list exported fields only; map entries are captured once and ordered by
// key type and formatted key, then by scalar value.
type nativeView struct {
	orig    any
	rv      reflect.Value
	fields  []int      // exported field indices (structs)
	entries []mapEntry // ordered entries (maps)
}

type mapEntry struct {
	key, value any
	order      string
}

func newNativeView(v any) nativeView {
	n := nativeView{orig: v, rv: reflect.ValueOf(v)}
	for n.rv.IsValid() && (n.rv.Kind() == reflect.Pointer || n.rv.Kind() == reflect.Interface) {
		if n.rv.IsNil() {
			n.rv = reflect.Value{}
			break
		}
		n.rv = n.rv.Elem()
	}
	if !n.rv.IsValid() {
		return n
	}
	switch n.rv.Kind() {
	case reflect.Struct:
		t := n.rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).IsExported() {
				n.fields = append(n.fields, i)
			}
		}
	case reflect.Map:
		n.entries = make([]mapEntry, 0, n.rv.Len())
		for it := n.rv.MapRange(); it.Next(); {
			k, v := it.Key().Interface(), it.Value().Interface()
			n.entries = append(n.entries, mapEntry{
				key:   k,
				value: v,
				order: fmt.Sprintf("%T\x00%v\x00%s", k, k, scalarText(v)),
			})
		}
		slices.SortStableFunc(n.entries, func(a, b mapEntry) int {
			return cmp.Compare(a.order, b.order)
		})
	}
	return n
}

// scalarText formats v when it is a scalar. Composite values may refer back
// to the map being viewed, so they are not formatted.
func scalarText(v any) string {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func (n nativeView) Value() any { return n.orig }

func (n nativeView) ValueType() *Type {
	if n.orig == nil {
		return Nil
	}
	return NativeOf(reflect.TypeOf(n.orig))
}

func (n nativeView) Count() int {
	if !n.rv.IsValid() {
		return 0
	}
	switch n.rv.Kind() {
	case reflect.Struct:
		return len(n.fields)
	case reflect.Slice, reflect.Array:
		return n.rv.Len()
	case reflect.Map:
		return len(n.entries)
	default:
		return 0
	}
}

func (n nativeView) Child(i int) (string, Legacy) {
	switch n.rv.Kind() {
	case reflect.Struct:
		f := n.fields[i]
		return n.rv.Type().Field(f).Name, Reflect(n.rv.Field(f).Interface())
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d]", i), Reflect(n.rv.Index(i).Interface())
	case reflect.Map:
		e := n.entries[i]
		entry := Tuple{
			labels: []string{"key", "value"},
			elems:  []any{e.key, e.value},
		}
		return fmt.Sprintf("[%d]", i), Reflect(entry)
	}
	panic(fmt.Sprintf("layout: child %d of native %s", i, n.ValueType()))
}

func (n nativeView) Disposition() Disposition {
	if !n.rv.IsValid() {
		return DispositionOptional
	}
	switch n.rv.Kind() {
	case reflect.Struct:
		return DispositionStruct
	case reflect.Slice, reflect.Array:
		return DispositionIndexContainer
	case reflect.Map:
		return DispositionKeyContainer
	default:
		return DispositionAggregate
	}
}

func (n nativeView) QuickLook() quicklook.Value {
	if !n.rv.IsValid() {
		return nil
	}
	switch n.rv.Kind() {
	case reflect.String:
		return quicklook.Text(n.rv.String())
	case reflect.Bool:
		return quicklook.Bool(n.rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return quicklook.Int(n.rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return quicklook.Uint(n.rv.Uint())
	case reflect.Float32:
		return quicklook.Float(float32(n.rv.Float()))
	case reflect.Float64:
		return quicklook.Double(n.rv.Float())
	}
	return nil
}

func (n nativeView) Summary() string {
	if !n.rv.IsValid() {
		return "nil"
	}
	switch n.rv.Kind() {
	case reflect.Struct:
		return n.rv.Type().String()
	case reflect.Slice, reflect.Array:
		return plural(n.rv.Len(), "element")
	case reflect.Map:
		return plural(len(n.entries), "key/value pair")
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return n.rv.Type().String()
	default:
		return fmt.Sprint(n.rv.Interface())
	}
}

// Identity is the reference identity of a value reached through a pointer,
// map or non-empty slice. Two values with equal identities share storage.
type Identity struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

// IdentityOf returns v's reference identity. Values with no shared storage,
// nil references and empty slices have none.
func IdentityOf(v any) (Identity, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return Identity{}, false
		}
		return Identity{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.Len() == 0 {
			return Identity{}, false
		}
		return Identity{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}, true
	default:
		return Identity{}, false
	}
}
