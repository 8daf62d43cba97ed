package ir

// Node is a materialized mirror: one value's structural description with
// its children and ancestor chain expanded.
type Node struct {
	SubjectType string `json:"subject_type"`
	Display     string `json:"display"`
	Summary     string `json:"summary"`
	Ancestry    string `json:"ancestry"`
	Children    []Edge `json:"children"`
	Ancestor    *Node  `json:"ancestor,omitempty"`
	Truncated   bool   `json:"truncated,omitempty"` // children exist beyond the depth limit
	Cycle       bool   `json:"cycle,omitempty"`     // object already on the current path
}

// Edge links a node to one child.
type Edge struct {
	Label   string `json:"label,omitempty"`
	Labeled bool   `json:"labeled"`
	Node    Node   `json:"node"`
}

// IR converts the node to its canonical value form. Optional fields are
// omitted when unset so that they do not affect the hash.
func (n Node) IR() IRObject {
	children := make(IRArray, len(n.Children))
	for i, e := range n.Children {
		edge := IRObject{
			"labeled": IRBool(e.Labeled),
			"node":    e.Node.IR(),
		}
		if e.Labeled {
			edge["label"] = IRString(e.Label)
		}
		children[i] = edge
	}
	obj := IRObject{
		"subject_type": IRString(n.SubjectType),
		"display":      IRString(n.Display),
		"summary":      IRString(n.Summary),
		"ancestry":     IRString(n.Ancestry),
		"children":     children,
	}
	if n.Ancestor != nil {
		obj["ancestor"] = n.Ancestor.IR()
	}
	if n.Truncated {
		obj["truncated"] = IRBool(true)
	}
	if n.Cycle {
		obj["cycle"] = IRBool(true)
	}
	return obj
}

// Chain returns the node followed by its ancestors, nearest first.
func (n *Node) Chain() []*Node {
	var out []*Node
	for c := n; c != nil; c = c.Ancestor {
		out = append(out, c)
	}
	return out
}

// Session groups the snapshots recorded against one loaded world.
type Session struct {
	ID        string `json:"id"`         // UUIDv7
	Source    string `json:"source"`     // world document path
	Root      string `json:"root"`       // root value name
	Seq       int64  `json:"seq"`        // logical clock at creation
	Engine    string `json:"engine"`     // EngineVersion at creation
	IRVersion string `json:"ir_version"` // SchemaVersion at creation
}

// Snapshot is a node recorded at a path within a session.
type Snapshot struct {
	ID        string `json:"id"` // content-addressed, see SnapshotID
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Path      string `json:"path"`
	NodeHash  string `json:"node_hash"`
	Node      Node   `json:"node"`
}
