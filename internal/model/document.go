package model

// Document is the on-disk form of a world. The same shape is read from
// YAML, JSON and CUE.
//
//	types:
//	  - {name: Shape, kind: class, fields: [id]}
//	  - {name: Square, kind: class, super: Shape, fields: [side]}
//	describe:
//	  - type: Shape
//	    style: ordered
//	    display: aggregate
//	    children:
//	      - {label: ident, field: id}
//	leaves: [Shape]
//	values:
//	  sq: {object: Square, fields: {id: 7, side: 3}}
//	root: sq
type Document struct {
	Name     string         `yaml:"name" json:"name"`
	Types    []TypeDoc      `yaml:"types" json:"types"`
	Describe []DescribeDoc  `yaml:"describe" json:"describe"`
	Leaves   []string       `yaml:"leaves" json:"leaves"`
	Values   map[string]any `yaml:"values" json:"values"`
	Root     string         `yaml:"root" json:"root"`
}

// TypeDoc declares one runtime type. Kind is class, struct or enum. Super
// names an earlier class and is only valid for classes.
type TypeDoc struct {
	Name   string   `yaml:"name" json:"name"`
	Kind   string   `yaml:"kind" json:"kind"`
	Super  string   `yaml:"super" json:"super"`
	Fields []string `yaml:"fields" json:"fields"`
	Cases  []string `yaml:"cases" json:"cases"`
}

// DescribeDoc declares a custom description for a type.
//
// Style selects the constructor: labeled (default), unlabeled or ordered.
// Ancestors is generated (default), suppressed or super; super asks the
// base type for its own description.
type DescribeDoc struct {
	Type      string     `yaml:"type" json:"type"`
	Style     string     `yaml:"style" json:"style"`
	Display   string     `yaml:"display" json:"display"`
	Ancestors string     `yaml:"ancestors" json:"ancestors"`
	Children  []ChildDoc `yaml:"children" json:"children"`
}

// ChildDoc is one child of a description: either a field read from the
// subject or a literal value expression.
type ChildDoc struct {
	Label   string `yaml:"label" json:"label"`
	Field   string `yaml:"field" json:"field"`
	Literal any    `yaml:"literal" json:"literal"`
}

// Description styles.
const (
	StyleLabeled   = "labeled"
	StyleUnlabeled = "unlabeled"
	StyleOrdered   = "ordered"
)

// Ancestor policies.
const (
	AncestorsGenerated  = "generated"
	AncestorsSuppressed = "suppressed"
	AncestorsSuper      = "super"
)
