// Package mirror builds read-only structural descriptions of runtime values.
//
// A Mirror describes one value as seen through a static type: an ordered
// collection of optionally labeled children, a display hint, and a lazily
// produced mirror for the same value seen as an instance of its base class.
//
// Values get their mirror in one of three ways, checked in order:
//   - Go values implementing Reflectable describe themselves
//   - runtime types with a description declared on the Reflector use it
//   - everything else is derived from the layout package's legacy view
//
// Custom descriptions choose how ancestors appear with an
// AncestorRepresentation: generated from layout, supplied by the author and
// merged into the chain, or suppressed. A mirror never caches its ancestor;
// every SuperclassMirror call produces it again.
//
// Descendant follows a path of Label and Index selectors, reflecting each
// intermediate child in turn.
//
// Engine invariant violations (inconsistent layouts, misuse of the
// construction API) panic with *InvariantError. Absence is reported with a
// nil mirror or ok=false.
package mirror
