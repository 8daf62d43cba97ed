package mirror

import (
	"fmt"

	"github.com/roach88/mirror/internal/layout"
)

// DisplayHint is the coarse, UI-facing classification of a mirror's shape.
// The zero value is DisplayNone.
type DisplayHint uint8

const (
	DisplayNone DisplayHint = iota
	DisplayAggregate
	DisplayReferenceObject
	DisplayTaggedUnion
	DisplayTuple
	DisplayOptional
	DisplaySequence
	DisplayAssociativeMap
	DisplaySetLike
)

var displayNames = [...]string{
	DisplayNone:            "",
	DisplayAggregate:       "aggregate",
	DisplayReferenceObject: "reference_object",
	DisplayTaggedUnion:     "tagged_union",
	DisplayTuple:           "tuple",
	DisplayOptional:        "optional",
	DisplaySequence:        "sequence",
	DisplayAssociativeMap:  "associative_map",
	DisplaySetLike:         "set_like",
}

// String returns the hint name; DisplayNone renders as "".
func (h DisplayHint) String() string {
	if int(h) < len(displayNames) {
		return displayNames[h]
	}
	return fmt.Sprintf("DisplayHint(%d)", h)
}

// ParseDisplayHint parses a hint name. "" and "none" yield DisplayNone.
func ParseDisplayHint(s string) (DisplayHint, error) {
	if s == "none" {
		return DisplayNone, nil
	}
	for i, name := range displayNames {
		if name == s {
			return DisplayHint(i), nil
		}
	}
	return DisplayNone, fmt.Errorf("unknown display hint %q", s)
}

// Classify maps a legacy disposition onto a display hint.
//
// The eight structural dispositions map one-to-one. Aggregate carries no
// structural information and maps to DisplayNone; ForeignObject is shown as
// a plain reference object. Container is never produced by a legacy view.
func Classify(d layout.Disposition) DisplayHint {
	switch d {
	case layout.DispositionStruct:
		return DisplayAggregate
	case layout.DispositionClass:
		return DisplayReferenceObject
	case layout.DispositionEnum:
		return DisplayTaggedUnion
	case layout.DispositionTuple:
		return DisplayTuple
	case layout.DispositionOptional:
		return DisplayOptional
	case layout.DispositionIndexContainer:
		return DisplaySequence
	case layout.DispositionKeyContainer:
		return DisplayAssociativeMap
	case layout.DispositionMembershipContainer:
		return DisplaySetLike
	case layout.DispositionAggregate:
		return DisplayNone
	case layout.DispositionForeignObject:
		return DisplayReferenceObject
	}
	invariant("classify", "disposition %s has no display hint", d)
	return DisplayNone
}
