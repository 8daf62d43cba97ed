package mirror

import (
	"github.com/roach88/mirror/internal/layout"
)

// legacyMirror walks the class layers of obj outward from its dynamic class
// and returns the layer that describes target. It returns nil when target is
// not a proper ancestor of the object's class.
func legacyMirror(obj *layout.Object, target *layout.Type) layout.Legacy {
	cls := obj.Class()
	layer := layout.Reflect(obj)
	for base := cls.Super(); base != nil; base = cls.Super() {
		sup, ok := layout.SuperLayer(layer)
		if !ok {
			return nil
		}
		if base == target {
			return sup
		}
		layer, cls = sup, base
	}
	return nil
}

// legacyNode adapts a legacy view into a Mirror of static type t.
func (r *Reflector) legacyNode(l layout.Legacy, t *layout.Type, a ancestry) *Mirror {
	return &Mirror{
		r:           r,
		subjectType: t,
		children:    newLegacyChildren(l),
		display:     Classify(l.Disposition()),
		ancestry:    a,
	}
}

// fromLegacy builds the root mirror of a value with no custom description.
func (r *Reflector) fromLegacy(v any) *Mirror {
	l := layout.Reflect(v)
	t := l.ValueType()
	return r.legacyNode(l, t, r.generated(v, t, superLayer(l)))
}
