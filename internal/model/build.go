package model

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/mirror/internal/layout"
	"github.com/roach88/mirror/internal/mirror"
)

const (
	building = iota + 1
	built
)

// builder turns a decoded Document into a World.
type builder struct {
	doc    *Document
	scope  *layout.Scope
	r      *mirror.Reflector
	logger *slog.Logger

	values map[string]any
	state  map[string]int
}

func (b *builder) build() (*World, error) {
	if err := b.declareTypes(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(b.doc.Values))
	for name := range b.doc.Values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, err := b.resolve(name, "values."+name); err != nil {
			return nil, err
		}
	}
	for i, name := range b.doc.Leaves {
		t := b.scope.Lookup(name)
		if t == nil {
			return nil, errorf(ErrCodeUnknownType, fmt.Sprintf("leaves[%d]", i), "unknown type %q", name)
		}
		b.r.MarkLeaf(t)
	}
	for i, d := range b.doc.Describe {
		if err := b.declareDescription(d, fmt.Sprintf("describe[%d]", i)); err != nil {
			return nil, err
		}
	}
	if b.doc.Root != "" {
		if _, ok := b.values[b.doc.Root]; !ok {
			return nil, errorf(ErrCodeUnknownRoot, "root", "no value named %q", b.doc.Root)
		}
	}
	b.logger.Debug("world built",
		"name", b.doc.Name,
		"types", len(b.doc.Types),
		"descriptions", len(b.doc.Describe),
		"values", len(names))
	return &World{
		Name:      b.doc.Name,
		Scope:     b.scope,
		Reflector: b.r,
		Root:      b.doc.Root,
		values:    b.values,
		names:     names,
	}, nil
}

func (b *builder) declareTypes() error {
	for i, td := range b.doc.Types {
		path := fmt.Sprintf("types[%d]", i)
		if td.Name == "" {
			return errorf(ErrCodeInvalidType, path, "missing name")
		}
		var t *layout.Type
		switch td.Kind {
		case "class":
			var super *layout.Type
			if td.Super != "" {
				if super = b.scope.Lookup(td.Super); super == nil {
					return errorf(ErrCodeUnknownType, path+".super", "unknown type %q (bases must be declared first)", td.Super)
				}
				if !super.IsClass() {
					return errorf(ErrCodeInvalidType, path+".super", "%s is not a class", td.Super)
				}
			}
			t = layout.NewClass(td.Name, super, td.Fields...)
		case "struct":
			if td.Super != "" {
				return errorf(ErrCodeInvalidType, path+".super", "only classes have a base")
			}
			t = layout.NewStruct(td.Name, td.Fields...)
		case "enum":
			if td.Super != "" || len(td.Fields) > 0 {
				return errorf(ErrCodeInvalidType, path, "enums declare cases only")
			}
			t = layout.NewEnum(td.Name, td.Cases...)
		default:
			return errorf(ErrCodeInvalidType, path+".kind", "unknown kind %q (want class, struct or enum)", td.Kind)
		}
		if dup := duplicate(td.Fields); dup != "" {
			return errorf(ErrCodeInvalidType, path+".fields", "field %q declared twice", dup)
		}
		if existing := b.scope.Insert(t); existing != nil {
			return errorf(ErrCodeDuplicateType, path, "type %q already declared", td.Name)
		}
	}
	return nil
}

func duplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	return ""
}

// childSpec is a validated ChildDoc: a field name or a built literal.
type childSpec struct {
	label   string
	field   string
	literal any
}

func (c childSpec) value(subject any) any {
	if c.field == "" {
		return c.literal
	}
	var v any
	switch s := subject.(type) {
	case *layout.Object:
		v, _ = s.Field(c.field)
	case layout.Record:
		v, _ = s.Field(c.field)
	}
	return v
}

func (b *builder) declareDescription(d DescribeDoc, path string) error {
	t := b.scope.Lookup(d.Type)
	if t == nil {
		return errorf(ErrCodeUnknownType, path+".type", "unknown type %q", d.Type)
	}
	style := d.Style
	if style == "" {
		style = StyleLabeled
	}
	if style != StyleLabeled && style != StyleUnlabeled && style != StyleOrdered {
		return errorf(ErrCodeInvalidDescribe, path+".style", "unknown style %q", d.Style)
	}
	display, err := mirror.ParseDisplayHint(d.Display)
	if err != nil {
		return errorf(ErrCodeInvalidDescribe, path+".display", "%v", err)
	}
	var policy func(mirror.Subject) mirror.AncestorRepresentation
	switch d.Ancestors {
	case "", AncestorsGenerated:
		policy = func(mirror.Subject) mirror.AncestorRepresentation { return mirror.GeneratedAncestors() }
	case AncestorsSuppressed:
		policy = func(mirror.Subject) mirror.AncestorRepresentation { return mirror.SuppressedAncestors() }
	case AncestorsSuper:
		policy = func(s mirror.Subject) mirror.AncestorRepresentation { return mirror.CustomizedAncestors(s.SuperMirror) }
	default:
		return errorf(ErrCodeInvalidDescribe, path+".ancestors", "unknown ancestor policy %q", d.Ancestors)
	}

	children := make([]childSpec, len(d.Children))
	for i, c := range d.Children {
		cpath := fmt.Sprintf("%s.children[%d]", path, i)
		if style != StyleUnlabeled && c.Label == "" {
			return errorf(ErrCodeInvalidDescribe, cpath+".label", "%s children need a label", style)
		}
		spec := childSpec{label: c.Label, field: c.Field}
		if c.Field != "" {
			if c.Literal != nil {
				return errorf(ErrCodeInvalidDescribe, cpath, "field and literal are exclusive")
			}
			if t.Kind() != layout.KindClass && t.Kind() != layout.KindStruct {
				return errorf(ErrCodeInvalidDescribe, cpath+".field", "%s has no fields", t)
			}
			if t.FieldIndex(c.Field) < 0 {
				return errorf(ErrCodeUnknownField, cpath+".field", "%s has no field %q", t, c.Field)
			}
		} else {
			lit, err := b.expr(c.Literal, cpath+".literal")
			if err != nil {
				return err
			}
			spec.literal = lit
		}
		children[i] = spec
	}

	b.r.Describe(t, func(s mirror.Subject) *mirror.Mirror {
		opts := []mirror.Option{mirror.WithDisplayHint(display), mirror.WithAncestors(policy(s))}
		switch style {
		case StyleUnlabeled:
			values := make([]any, len(children))
			for i, c := range children {
				values[i] = c.value(s.Value())
			}
			return mirror.NewUnlabeled(s, values, opts...)
		case StyleOrdered:
			pairs := make(mirror.KeyValuePairs, len(children))
			for i, c := range children {
				pairs[i] = mirror.KV(c.label, c.value(s.Value()))
			}
			return mirror.NewOrdered(s, pairs, opts...)
		default:
			list := make([]mirror.Child, len(children))
			for i, c := range children {
				list[i] = mirror.Labeled(c.label, c.value(s.Value()))
			}
			return mirror.New(s, list, opts...)
		}
	})
	return nil
}

// resolve builds the named top-level value. Objects are registered before
// their fields are filled so that they may refer to themselves.
func (b *builder) resolve(name, path string) (any, error) {
	switch b.state[name] {
	case built:
		return b.values[name], nil
	case building:
		if v, ok := b.values[name]; ok {
			return v, nil
		}
		return nil, errorf(ErrCodeValueCycle, path, "value %q refers to itself", name)
	}
	expr, ok := b.doc.Values[name]
	if !ok {
		return nil, errorf(ErrCodeUnknownValue, path, "no value named %q", name)
	}
	b.state[name] = building
	var v any
	var err error
	if m, isMap := expr.(map[string]any); isMap && m["object"] != nil {
		v, err = b.object(m, "values."+name, func(o *layout.Object) { b.values[name] = o })
	} else {
		v, err = b.expr(expr, "values."+name)
	}
	if err != nil {
		return nil, err
	}
	b.values[name] = v
	b.state[name] = built
	return v, nil
}

var exprKeys = []string{"ref", "object", "struct", "enum", "tuple", "list", "dict", "set", "some", "none", "foreign"}

// expr builds a value from its document form.
func (b *builder) expr(e any, path string) (any, error) {
	switch v := e.(type) {
	case nil, bool, string, int, int64, uint64, float64:
		return v, nil
	case json.Number:
		s := string(v)
		if strings.ContainsAny(s, ".eE") {
			return v.Float64()
		}
		n, err := v.Int64()
		return int(n), err
	case []any:
		return b.list(v, path)
	case map[string]any:
		return b.compound(v, path)
	default:
		return nil, errorf(ErrCodeInvalidValue, path, "unsupported value %T", e)
	}
}

func (b *builder) list(items []any, path string) (layout.List, error) {
	out := make(layout.List, len(items))
	for i, item := range items {
		v, err := b.expr(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (b *builder) compound(m map[string]any, path string) (any, error) {
	var kind string
	for _, k := range exprKeys {
		if _, ok := m[k]; ok {
			if kind != "" {
				return nil, errorf(ErrCodeInvalidValue, path, "both %q and %q given", kind, k)
			}
			kind = k
		}
	}
	switch kind {
	case "ref":
		name, ok := m["ref"].(string)
		if !ok {
			return nil, errorf(ErrCodeInvalidValue, path+".ref", "want a value name")
		}
		return b.resolve(name, path+".ref")
	case "object":
		return b.object(m, path, nil)
	case "struct":
		return b.record(m, path)
	case "enum":
		return b.variant(m, path)
	case "tuple":
		return b.tuple(m, path)
	case "list":
		items, ok := m["list"].([]any)
		if !ok {
			return nil, errorf(ErrCodeInvalidValue, path+".list", "want a sequence")
		}
		return b.list(items, path+".list")
	case "dict":
		return b.dict(m, path)
	case "set":
		items, ok := m["set"].([]any)
		if !ok {
			return nil, errorf(ErrCodeInvalidValue, path+".set", "want a sequence")
		}
		l, err := b.list(items, path+".set")
		if err != nil {
			return nil, err
		}
		s, err := layout.NewSet(l...)
		if err != nil {
			return nil, errorf(ErrCodeInvalidValue, path+".set", "%v", err)
		}
		return s, nil
	case "some":
		v, err := b.expr(m["some"], path+".some")
		if err != nil {
			return nil, err
		}
		return layout.Some(v), nil
	case "none":
		return layout.None(), nil
	case "foreign":
		k, ok := m["foreign"].(string)
		if !ok || k == "" {
			return nil, errorf(ErrCodeInvalidValue, path+".foreign", "want a kind name")
		}
		return &layout.Foreign{Kind: k}, nil
	}
	return nil, errorf(ErrCodeInvalidValue, path, "want one of %s", strings.Join(exprKeys, ", "))
}

func (b *builder) typeOf(m map[string]any, key, path string, kind layout.Kind) (*layout.Type, error) {
	name, ok := m[key].(string)
	if !ok {
		return nil, errorf(ErrCodeInvalidValue, path+"."+key, "want a type name")
	}
	t := b.scope.Lookup(name)
	if t == nil {
		return nil, errorf(ErrCodeUnknownType, path+"."+key, "unknown type %q", name)
	}
	if t.Kind() != kind {
		return nil, errorf(ErrCodeInvalidValue, path+"."+key, "%s is not a %s", name, kind)
	}
	return t, nil
}

func fieldsOf(m map[string]any, path string) (map[string]any, []string, error) {
	raw, ok := m["fields"]
	if !ok || raw == nil {
		return nil, nil, nil
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, errorf(ErrCodeInvalidValue, path+".fields", "want a mapping")
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return fields, names, nil
}

func (b *builder) object(m map[string]any, path string, register func(*layout.Object)) (*layout.Object, error) {
	t, err := b.typeOf(m, "object", path, layout.KindClass)
	if err != nil {
		return nil, err
	}
	fields, names, err := fieldsOf(m, path)
	if err != nil {
		return nil, err
	}
	o := layout.NewObject(t)
	if register != nil {
		register(o)
	}
	for _, name := range names {
		fpath := path + ".fields." + name
		if t.FieldIndex(name) < 0 {
			return nil, errorf(ErrCodeUnknownField, fpath, "%s has no field %q", t, name)
		}
		v, err := b.expr(fields[name], fpath)
		if err != nil {
			return nil, err
		}
		if err := o.SetField(name, v); err != nil {
			return nil, errorf(ErrCodeInvalidValue, fpath, "%v", err)
		}
	}
	return o, nil
}

func (b *builder) record(m map[string]any, path string) (layout.Record, error) {
	t, err := b.typeOf(m, "struct", path, layout.KindStruct)
	if err != nil {
		return layout.Record{}, err
	}
	fields, names, err := fieldsOf(m, path)
	if err != nil {
		return layout.Record{}, err
	}
	for _, name := range names {
		if t.FieldIndex(name) < 0 {
			return layout.Record{}, errorf(ErrCodeUnknownField, path+".fields."+name, "%s has no field %q", t, name)
		}
	}
	values := make([]any, len(t.Fields()))
	for i, name := range t.Fields() {
		if raw, ok := fields[name]; ok {
			if values[i], err = b.expr(raw, path+".fields."+name); err != nil {
				return layout.Record{}, err
			}
		}
	}
	rec, err := layout.NewRecord(t, values...)
	if err != nil {
		return layout.Record{}, errorf(ErrCodeInvalidValue, path, "%v", err)
	}
	return rec, nil
}

func (b *builder) variant(m map[string]any, path string) (layout.Variant, error) {
	t, err := b.typeOf(m, "enum", path, layout.KindEnum)
	if err != nil {
		return layout.Variant{}, err
	}
	tag, ok := m["case"].(string)
	if !ok {
		return layout.Variant{}, errorf(ErrCodeInvalidValue, path+".case", "want a case name")
	}
	if !t.HasCase(tag) {
		return layout.Variant{}, errorf(ErrCodeInvalidValue, path+".case", "%s has no case %q", t, tag)
	}
	var v layout.Variant
	if raw, ok := m["payload"]; ok {
		payload, err := b.expr(raw, path+".payload")
		if err != nil {
			return layout.Variant{}, err
		}
		v, err = layout.NewVariantWith(t, tag, payload)
		if err != nil {
			return layout.Variant{}, errorf(ErrCodeInvalidValue, path, "%v", err)
		}
		return v, nil
	}
	if v, err = layout.NewVariant(t, tag); err != nil {
		return layout.Variant{}, errorf(ErrCodeInvalidValue, path, "%v", err)
	}
	return v, nil
}

func (b *builder) tuple(m map[string]any, path string) (layout.Tuple, error) {
	items, ok := m["tuple"].([]any)
	if !ok {
		return layout.Tuple{}, errorf(ErrCodeInvalidValue, path+".tuple", "want a sequence")
	}
	elems, err := b.list(items, path+".tuple")
	if err != nil {
		return layout.Tuple{}, err
	}
	raw, ok := m["labels"]
	if !ok {
		return layout.NewTuple(elems...), nil
	}
	list, ok := raw.([]any)
	if !ok {
		return layout.Tuple{}, errorf(ErrCodeInvalidValue, path+".labels", "want a sequence")
	}
	labels := make([]string, len(list))
	for i, l := range list {
		if l == nil {
			continue
		}
		if labels[i], ok = l.(string); !ok {
			return layout.Tuple{}, errorf(ErrCodeInvalidValue, fmt.Sprintf("%s.labels[%d]", path, i), "want a string")
		}
	}
	tup, err := layout.NewLabeledTuple(labels, elems)
	if err != nil {
		return layout.Tuple{}, errorf(ErrCodeInvalidValue, path, "%v", err)
	}
	return tup, nil
}

func (b *builder) dict(m map[string]any, path string) (layout.Dict, error) {
	entries, ok := m["dict"].([]any)
	if !ok {
		return layout.Dict{}, errorf(ErrCodeInvalidValue, path+".dict", "want a sequence of {key, value}")
	}
	pairs := make([]layout.Pair, len(entries))
	for i, e := range entries {
		epath := fmt.Sprintf("%s.dict[%d]", path, i)
		entry, ok := e.(map[string]any)
		if !ok {
			return layout.Dict{}, errorf(ErrCodeInvalidValue, epath, "want {key, value}")
		}
		k, err := b.expr(entry["key"], epath+".key")
		if err != nil {
			return layout.Dict{}, err
		}
		v, err := b.expr(entry["value"], epath+".value")
		if err != nil {
			return layout.Dict{}, err
		}
		pairs[i] = layout.Pair{Key: k, Value: v}
	}
	d, err := layout.NewDict(pairs...)
	if err != nil {
		return layout.Dict{}, errorf(ErrCodeInvalidValue, path+".dict", "%v", err)
	}
	return d, nil
}
