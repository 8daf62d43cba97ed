package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/layout"
	"github.com/roach88/mirror/internal/mirror"
)

const worldsDir = "../../testdata/worlds"

func labels(m *mirror.Mirror) []string {
	var out []string
	for _, c := range m.All() {
		out = append(out, c.Label)
	}
	return out
}

func chainNames(m *mirror.Mirror) []string {
	var out []string
	for _, a := range m.Ancestors() {
		out = append(out, a.SubjectType().Name())
	}
	return out
}

func TestLoadYAMLWorld(t *testing.T) {
	w, err := Load(filepath.Join(worldsDir, "shapes.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "shapes", w.Name)
	assert.Equal(t, "canvas", w.Root)
	assert.Equal(t, []string{"canvas", "circle", "origin", "square", "teal"}, w.Names())

	root, ok := w.RootValue()
	require.True(t, ok)
	canvas, ok := root.(layout.Record)
	require.True(t, ok, "root is %T", root)
	assert.Equal(t, "Canvas", canvas.Type().Name())

	// The same named object is shared, not copied.
	square, _ := w.Value("square")
	first, ok := w.Reflector.Descendant(canvas, mirror.Label("shapes"), mirror.Index(0))
	require.True(t, ok)
	last, ok := w.Reflector.Descendant(canvas, mirror.Label("shapes"), mirror.Index(2))
	require.True(t, ok)
	assert.Same(t, square, first)
	assert.Same(t, first, last)

	accent, ok := w.Reflector.Descendant(canvas, mirror.Label("palette"), mirror.Index(1), mirror.Label("value"))
	require.True(t, ok)
	v, ok := accent.(layout.Variant)
	require.True(t, ok)
	assert.Equal(t, "rgb", v.Case())
}

func TestYAMLWorldDescriptions(t *testing.T) {
	w, err := Load(filepath.Join(worldsDir, "shapes.yaml"))
	require.NoError(t, err)

	square, _ := w.Value("square")
	m := w.Reflector.Reflect(square)
	assert.Equal(t, "Square", m.SubjectType().Name())
	assert.Equal(t, []string{"side"}, labels(m))
	assert.Equal(t, []string{"Polygon", "Shape"}, chainNames(m))

	shape := m.Ancestors()[1]
	assert.Equal(t, mirror.DisplayAggregate, shape.DisplayHint())
	assert.Equal(t, []string{"kind", "ident"}, labels(shape))
	assert.Equal(t, "shape", shape.Children().At(0).Value)
	assert.Equal(t, 1, shape.Children().At(1).Value)

	origin, _ := w.Value("origin")
	om := w.Reflector.Reflect(origin)
	assert.Equal(t, []string{"x", "y"}, labels(om))
	assert.Equal(t, 0, om.Children().At(0).Value)
}

func TestLoadCUEWorld(t *testing.T) {
	w, err := Load(filepath.Join(worldsDir, "zoo.cue"))
	require.NoError(t, err)
	assert.Equal(t, "zoo", w.Name)

	polly, ok := w.Value("polly")
	require.True(t, ok)
	m := w.Reflector.Reflect(polly)
	assert.Equal(t, "Bird", m.SubjectType().Name(), "undeclared subclass of a leaf uses the leaf's description")
	assert.Equal(t, []string{"name", "wings"}, labels(m))
	assert.Equal(t, 2, m.Children().At(1).Value)
	assert.Nil(t, m.SuperclassMirror())

	words, ok := polly.(*layout.Object).Field("words")
	require.True(t, ok)
	assert.Equal(t, layout.List{"hello", "cracker"}, words)

	rex, _ := w.Value("rex")
	rm := w.Reflector.Reflect(rex)
	assert.Equal(t, "Dog", rm.SubjectType().Name())
	assert.Equal(t, []string{"breed"}, labels(rm))
	assert.Equal(t, []string{"Mammal", "Animal"}, chainNames(rm))

	mammal := rm.SuperclassMirror()
	assert.Equal(t, mirror.AncestryCustomized, mammal.Ancestry())
	animal := mammal.SuperclassMirror()
	require.Equal(t, 1, animal.Children().Len())
	assert.False(t, animal.Children().At(0).Labeled)
	assert.Equal(t, "Rex", animal.Children().At(0).Value)
}

func TestLoadCUEDirectory(t *testing.T) {
	data, err := os.ReadFile(filepath.Join(worldsDir, "zoo.cue"))
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zoo.cue"), data, 0o644))

	w, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Source)
	assert.Equal(t, []string{"pack", "polly", "rex"}, w.Names())
}

func TestSelfReferentialObject(t *testing.T) {
	w, err := LoadYAML([]byte(`
types:
  - {name: Node, kind: class, fields: [next]}
values:
  loop: {object: Node, fields: {next: {ref: loop}}}
`), "loop.yaml")
	require.NoError(t, err)

	loop, _ := w.Value("loop")
	next, ok := loop.(*layout.Object).Field("next")
	require.True(t, ok)
	assert.Same(t, loop, next)
}

func TestEmptyDocument(t *testing.T) {
	w, err := LoadYAML(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, w.Names())
	_, ok := w.RootValue()
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
		path string
	}{
		{
			name: "unknown key",
			doc:  "tpyes: []",
			code: ErrCodeLoadFailed,
		},
		{
			name: "unknown kind",
			doc:  "types: [{name: A, kind: trait}]",
			code: ErrCodeInvalidType,
			path: "types[0].kind",
		},
		{
			name: "base declared later",
			doc:  "types: [{name: B, kind: class, super: A}, {name: A, kind: class}]",
			code: ErrCodeUnknownType,
			path: "types[0].super",
		},
		{
			name: "struct base",
			doc:  "types: [{name: P, kind: struct}, {name: B, kind: class, super: P}]",
			code: ErrCodeInvalidType,
			path: "types[1].super",
		},
		{
			name: "duplicate type",
			doc:  "types: [{name: A, kind: class}, {name: A, kind: struct}]",
			code: ErrCodeDuplicateType,
			path: "types[1]",
		},
		{
			name: "duplicate field",
			doc:  "types: [{name: A, kind: class, fields: [x, x]}]",
			code: ErrCodeInvalidType,
		},
		{
			name: "unknown object field",
			doc:  "types: [{name: A, kind: class, fields: [x]}]\nvalues: {a: {object: A, fields: {y: 1}}}",
			code: ErrCodeUnknownField,
			path: "values.a.fields.y",
		},
		{
			name: "unknown reference",
			doc:  "values: {a: {ref: b}}",
			code: ErrCodeUnknownValue,
			path: "values.a.ref",
		},
		{
			name: "value cycle",
			doc:  "values: {a: {list: [{ref: b}]}, b: {list: [{ref: a}]}}",
			code: ErrCodeValueCycle,
		},
		{
			name: "ambiguous expression",
			doc:  "values: {a: {list: [], set: []}}",
			code: ErrCodeInvalidValue,
			path: "values.a",
		},
		{
			name: "unknown case",
			doc:  "types: [{name: C, kind: enum, cases: [red]}]\nvalues: {c: {enum: C, case: blue}}",
			code: ErrCodeInvalidValue,
			path: "values.c.case",
		},
		{
			name: "unknown root",
			doc:  "values: {a: 1}\nroot: b",
			code: ErrCodeUnknownRoot,
			path: "root",
		},
		{
			name: "unknown leaf",
			doc:  "leaves: [Ghost]",
			code: ErrCodeUnknownType,
			path: "leaves[0]",
		},
		{
			name: "bad display",
			doc:  "types: [{name: A, kind: class}]\ndescribe: [{type: A, display: tree}]",
			code: ErrCodeInvalidDescribe,
			path: "describe[0].display",
		},
		{
			name: "bad ancestor policy",
			doc:  "types: [{name: A, kind: class}]\ndescribe: [{type: A, ancestors: all}]",
			code: ErrCodeInvalidDescribe,
			path: "describe[0].ancestors",
		},
		{
			name: "ordered child without label",
			doc:  "types: [{name: A, kind: class, fields: [x]}]\ndescribe: [{type: A, style: ordered, children: [{field: x}]}]",
			code: ErrCodeInvalidDescribe,
			path: "describe[0].children[0].label",
		},
		{
			name: "describe unknown field",
			doc:  "types: [{name: A, kind: class, fields: [x]}]\ndescribe: [{type: A, children: [{label: y, field: y}]}]",
			code: ErrCodeUnknownField,
			path: "describe[0].children[0].field",
		},
		{
			name: "field on enum",
			doc:  "types: [{name: C, kind: enum, cases: [red]}]\ndescribe: [{type: C, children: [{label: x, field: x}]}]",
			code: ErrCodeInvalidDescribe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML([]byte(tt.doc), "test.yaml")
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le), "want *LoadError, got %T", err)
			assert.Equal(t, tt.code, le.Code, le.Error())
			if tt.path != "" {
				assert.Equal(t, tt.path, le.Path)
			}
		})
	}
}

func TestLoadCUEErrors(t *testing.T) {
	_, err := LoadCUE([]byte("name: \"a\" & \"b\"\n"), "conflict.cue")
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeBuildFailed, le.Code)
	assert.True(t, le.Pos.IsValid())
	assert.Contains(t, le.Error(), "conflict.cue:1:")

	_, err = LoadCUE([]byte("name: string\n"), "open.cue")
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeBuildFailed, le.Code, "non-concrete documents are rejected")

	_, err = LoadCUE([]byte("nmae: \"x\"\n"), "typo.cue")
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeLoadFailed, le.Code)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadErrorFormat(t *testing.T) {
	err := errorf(ErrCodeUnknownValue, "values.a.ref", "no value named %q", "b")
	assert.Equal(t, `E222: values.a.ref: no value named "b"`, err.Error())
}
