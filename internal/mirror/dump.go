package mirror

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/roach88/mirror/internal/layout"
)

// DumpOption configures Dump.
type DumpOption func(*dumper)

// WithName labels the root line.
func WithName(name string) DumpOption {
	return func(d *dumper) { d.name, d.named = name, true }
}

// WithMaxDepth limits how many levels below the root are expanded.
func WithMaxDepth(n int) DumpOption {
	return func(d *dumper) { d.maxDepth = n }
}

// WithMaxItems limits the total number of lines written.
func WithMaxItems(n int) DumpOption {
	return func(d *dumper) { d.remaining = n }
}

type dumper struct {
	r         *Reflector
	w         io.Writer
	err       error
	name      string
	named     bool
	maxDepth  int
	remaining int
	ids       map[*layout.Object]int
	onPath    map[layout.Identity]bool // native references being expanded
}

// Dump writes an indented tree of v's mirror to w, one line per node:
//
//	▿ Square #0
//	  ▿ super: Polygon
//	    ▿ super: Shape
//	      - id: 7
//	    - sides: 4
//	  - side: 3
//
// "▿" marks an expanded node, "-" a node with no children and "▹" a node
// left unexpanded (depth limit reached, an object already shown, or a Go
// reference met again on its own path). Objects are numbered in order of
// first appearance.
func (r *Reflector) Dump(w io.Writer, v any, opts ...DumpOption) error {
	d := &dumper{
		r:         r,
		w:         w,
		maxDepth:  math.MaxInt,
		remaining: math.MaxInt,
		ids:       make(map[*layout.Object]int),
		onPath:    make(map[layout.Identity]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.value(v, d.name, d.named, 0)
	return d.err
}

// Dump writes v's tree using Default.
func Dump(w io.Writer, v any, opts ...DumpOption) error {
	return Default.Dump(w, v, opts...)
}

func (d *dumper) value(v any, label string, labeled bool, depth int) {
	if d.done() {
		return
	}
	obj, isObj := v.(*layout.Object)
	isObj = isObj && obj != nil
	if isObj {
		if id, seen := d.ids[obj]; seen {
			d.line(depth, "▹ ", label, labeled, fmt.Sprintf("%s #%d", layout.DebugSummary(v), id))
			return
		}
	} else if ref, ok := layout.IdentityOf(v); ok {
		if d.onPath[ref] {
			d.line(depth, "▹ ", label, labeled, layout.DebugSummary(v))
			return
		}
		d.onPath[ref] = true
		defer delete(d.onPath, ref)
	}
	m := d.r.Reflect(v)
	summary := layout.DebugSummary(v)
	if isObj {
		id := len(d.ids)
		d.ids[obj] = id
		summary = fmt.Sprintf("%s #%d", summary, id)
	}
	d.node(m, label, labeled, summary, depth)
}

func (d *dumper) node(m *Mirror, label string, labeled bool, summary string, depth int) {
	if d.done() {
		return
	}
	sup := m.SuperclassMirror()
	switch {
	case m.children.Len() == 0 && sup == nil:
		d.line(depth, "- ", label, labeled, summary)
		return
	case depth >= d.maxDepth:
		d.line(depth, "▹ ", label, labeled, summary)
		return
	}
	d.line(depth, "▿ ", label, labeled, summary)
	if sup != nil {
		d.node(sup, "super", true, sup.subjectType.Name(), depth+1)
	}
	for _, c := range m.All() {
		d.value(c.Value, c.Label, c.Labeled, depth+1)
	}
}

func (d *dumper) done() bool {
	return d.err != nil || d.remaining <= 0
}

func (d *dumper) line(depth int, marker, label string, labeled bool, summary string) {
	d.remaining--
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(marker)
	if labeled {
		b.WriteString(label)
		b.WriteString(": ")
	}
	b.WriteString(summary)
	b.WriteByte('\n')
	_, d.err = io.WriteString(d.w, b.String())
}
