package mirror

import (
	"github.com/roach88/mirror/internal/layout"
)

// AncestorRepresentation is the policy a custom description picks for its
// subject's ancestors. It only applies when the subject is an object whose
// static type has a base; otherwise it is ignored.
type AncestorRepresentation struct {
	kind     AncestryKind
	supplier func() *Mirror
}

// GeneratedAncestors synthesizes the ancestor mirror from the object's
// structural layout. It is the zero value.
func GeneratedAncestors() AncestorRepresentation {
	return AncestorRepresentation{}
}

// CustomizedAncestors uses the mirror returned by supplier as the ancestor
// description, merged into the chain. supplier is called once per
// SuperclassMirror call.
func CustomizedAncestors(supplier func() *Mirror) AncestorRepresentation {
	if supplier == nil {
		invariant("customized ancestors", "nil supplier")
	}
	return AncestorRepresentation{kind: AncestryCustomized, supplier: supplier}
}

// SuppressedAncestors hides all ancestors.
func SuppressedAncestors() AncestorRepresentation {
	return AncestorRepresentation{kind: AncestrySuppressed}
}

// AncestryKind tags the way a mirror produces its ancestor.
type AncestryKind uint8

const (
	AncestryNotApplicable AncestryKind = iota
	AncestryGenerated
	AncestryCustomized
	AncestrySuppressed
	AncestryMerged
)

func (k AncestryKind) String() string {
	switch k {
	case AncestryGenerated:
		return "generated"
	case AncestryCustomized:
		return "customized"
	case AncestrySuppressed:
		return "suppressed"
	case AncestryMerged:
		return "merged"
	default:
		return "not_applicable"
	}
}

// ancestry is the deferred ancestor production held by a Mirror. Only the
// fields relevant to kind are set.
type ancestry struct {
	kind     AncestryKind
	r        *Reflector
	subject  *layout.Object
	base     *layout.Type
	legacy   layout.Legacy // precomputed legacy layer for base, may be nil
	supplier func() *Mirror
	ancestor *Mirror // Merged: the custom ancestor still to be reached
}

// ancestryFor derives a mirror's ancestry from a construction policy.
func (r *Reflector) ancestryFor(s Subject, policy AncestorRepresentation) ancestry {
	obj, ok := s.Value().(*layout.Object)
	base := s.Type().Super()
	if !ok || base == nil {
		return ancestry{}
	}
	switch policy.kind {
	case AncestryCustomized:
		return ancestry{kind: AncestryCustomized, r: r, subject: obj, base: base, supplier: policy.supplier}
	case AncestrySuppressed:
		return ancestry{kind: AncestrySuppressed}
	default:
		return ancestry{kind: AncestryGenerated, r: r, subject: obj, base: base}
	}
}

// generated is the ancestry of a legacy node for obj at class t, reusing
// layer (the legacy view of t's base) when the caller already has it.
func (r *Reflector) generated(v any, t *layout.Type, layer layout.Legacy) ancestry {
	obj, ok := v.(*layout.Object)
	if !ok || t.Super() == nil {
		return ancestry{}
	}
	return ancestry{kind: AncestryGenerated, r: r, subject: obj, base: t.Super(), legacy: layer}
}

func (a ancestry) resolve() *Mirror {
	switch a.kind {
	case AncestryGenerated:
		return a.r.generatedAncestor(a.subject, a.base, a.legacy)
	case AncestryCustomized:
		return a.r.merge(a.subject, a.base, a.supplier(), nil)
	case AncestryMerged:
		return a.r.merge(a.subject, a.base, a.ancestor, a.legacy)
	default:
		return nil
	}
}

// generatedAncestor returns the mirror of obj viewed as an instance of base:
// base's own description when one applies, otherwise a legacy node.
func (r *Reflector) generatedAncestor(obj *layout.Object, base *layout.Type, layer layout.Legacy) *Mirror {
	if fn, declared := r.descriptionFor(base); fn != nil {
		return r.describe(fn, Subject{r: r, value: obj, typ: declared})
	}
	if layer == nil {
		if layer = legacyMirror(obj, base); layer == nil {
			invariant("ancestor", "%s is not an ancestor of %s", base, obj.Class())
		}
	}
	return r.legacyNode(layer, base, r.generated(obj, base, superLayer(layer)))
}

// merge splices a custom ancestor into the chain at class. When the ancestor
// describes class itself, or forbids synthesizing descendants, it is used
// verbatim. Otherwise a legacy node for class is produced whose own ancestor
// continues the merge one level up.
func (r *Reflector) merge(obj *layout.Object, class *layout.Type, ancestor *Mirror, layer layout.Legacy) *Mirror {
	if ancestor == nil {
		return nil
	}
	if ancestor.subjectType == class || ancestor.descendants == descendantsSuppressed {
		return ancestor
	}
	if layer == nil {
		if layer = legacyMirror(obj, class); layer == nil {
			invariant("merge", "%s is not an ancestor of %s", class, obj.Class())
		}
	}
	var next ancestry
	if base := class.Super(); base != nil {
		next = ancestry{
			kind:     AncestryMerged,
			r:        r,
			subject:  obj,
			base:     base,
			legacy:   superLayer(layer),
			ancestor: ancestor,
		}
	}
	r.logger.Debug("merging ancestor", "class", class.Name(), "ancestor", ancestor.subjectType.Name())
	return r.legacyNode(layer, class, next)
}

func superLayer(l layout.Legacy) layout.Legacy {
	sup, ok := layout.SuperLayer(l)
	if !ok {
		return nil
	}
	return sup
}
