package mirror

import (
	"github.com/roach88/mirror/internal/ir"
	"github.com/roach88/mirror/internal/layout"
)

// Snapshot materializes v's mirror tree into an ir.Node. depth bounds how
// many child levels are expanded; a negative depth expands everything.
// Ancestor layers do not count against depth. An object met again on its
// own path, or a Go pointer, map or slice met again on its own path, is
// recorded as a cycle and not expanded.
func (r *Reflector) Snapshot(v any, depth int) ir.Node {
	s := snapshotter{r: r, onPath: make(map[layout.Identity]bool)}
	return s.value(v, depth)
}

type snapshotter struct {
	r      *Reflector
	onPath map[layout.Identity]bool
}

func (s *snapshotter) value(v any, depth int) ir.Node {
	m := s.r.Reflect(v)
	if ref, ok := layout.IdentityOf(v); ok {
		if s.onPath[ref] {
			return ir.Node{
				SubjectType: m.subjectType.Name(),
				Display:     m.display.String(),
				Summary:     layout.DebugSummary(v),
				Ancestry:    m.ancestry.kind.String(),
				Children:    []ir.Edge{},
				Cycle:       true,
			}
		}
		s.onPath[ref] = true
		defer delete(s.onPath, ref)
	}
	return s.node(m, layout.DebugSummary(v), depth)
}

func (s *snapshotter) node(m *Mirror, summary string, depth int) ir.Node {
	n := ir.Node{
		SubjectType: m.subjectType.Name(),
		Display:     m.display.String(),
		Summary:     summary,
		Ancestry:    m.ancestry.kind.String(),
		Children:    []ir.Edge{},
	}
	if sup := m.SuperclassMirror(); sup != nil {
		a := s.node(sup, sup.subjectType.Name(), depth)
		n.Ancestor = &a
	}
	if depth == 0 {
		n.Truncated = m.children.Len() > 0
		return n
	}
	for _, c := range m.All() {
		n.Children = append(n.Children, ir.Edge{
			Label:   c.Label,
			Labeled: c.Labeled,
			Node:    s.value(c.Value, depth-1),
		})
	}
	return n
}
