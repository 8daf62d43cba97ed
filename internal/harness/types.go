package harness

import "github.com/roach88/mirror/internal/ir"

// Dump is the rendered tree of one reference named by a scenario.
type Dump struct {
	Ref  string `json:"ref"`
	Text string `json:"text"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Checked counts the assertions evaluated.
	Checked int `json:"checked"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Dumps holds the trees named by the scenario's dump list, in order.
	Dumps []Dump `json:"dumps,omitempty"`

	// Snapshots holds what same_structure assertions recorded.
	Snapshots []ir.Snapshot `json:"snapshots,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Errors:    []string{},
		Dumps:     []Dump{},
		Snapshots: []ir.Snapshot{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
