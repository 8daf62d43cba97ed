// Package harness runs conformance scenarios against loaded worlds.
//
// A scenario names a world document, a list of structural assertions
// about values in that world, and optionally a list of references whose
// dumps are compared against golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	world: ../worlds/shapes.yaml   # relative to the scenario file
//	assertions:
//	  - type: subject_type
//	    ref: canvas/shapes/0
//	    expect: Square
//	  - type: ancestors
//	    ref: square
//	    types: [Polygon, Shape]
//	  - type: absent
//	    ref: canvas/shapes/9
//	dump: [square]
//
// # Assertion Types
//
//   - subject_type: the mirror of ref has the expected subject type
//   - display: the display hint of ref equals expect ("none" for no hint)
//   - ancestry: the ancestry kind of ref equals expect
//   - summary: the debug summary of ref equals expect
//   - children: the child labels of ref equal labels ("_" for unlabeled)
//   - ancestors: the ancestor subject types of ref equal types, nearest first
//   - descendant: ref resolves; if expect is set it names the subject type
//   - absent: ref does not resolve to a descendant
//   - same_structure: every ref in refs snapshots to the same node hash
//
// Each scenario runs against a fresh in-memory store with a deterministic
// clock and sequential session ids, so recorded snapshots are reproducible.
//
// # Golden Files
//
// RunWithGolden renders the dumps named by the scenario into a text
// fixture under testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
