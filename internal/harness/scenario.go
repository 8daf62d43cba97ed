package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mirror/internal/inspect"
)

// Scenario is a conformance test against one world.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// World is the path of the world document. LoadScenario resolves it
	// relative to the scenario file.
	World string `yaml:"world"`

	// Assertions are evaluated in order; every failure is reported.
	Assertions []Assertion `yaml:"assertions"`

	// Dump lists references whose trees go into the golden file.
	Dump []string `yaml:"dump,omitempty"`
}

// Assertion is one structural expectation about a referenced value.
type Assertion struct {
	Type   string   `yaml:"type"`
	Ref    string   `yaml:"ref,omitempty"`
	Expect string   `yaml:"expect,omitempty"`
	Labels []string `yaml:"labels,omitempty"`
	Types  []string `yaml:"types,omitempty"`
	Refs   []string `yaml:"refs,omitempty"`
}

// Assertion type constants.
const (
	AssertSubjectType   = "subject_type"
	AssertDisplay       = "display"
	AssertAncestry      = "ancestry"
	AssertSummary       = "summary"
	AssertChildren      = "children"
	AssertAncestors     = "ancestors"
	AssertDescendant    = "descendant"
	AssertAbsent        = "absent"
	AssertSameStructure = "same_structure"
)

// UnlabeledChild stands for an unlabeled child in a children assertion.
const UnlabeledChild = "_"

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected and the world path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenario, err := ParseScenario(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML, resolving a relative world path
// against basePath.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.World != "" && !filepath.IsAbs(scenario.World) && basePath != "" {
		scenario.World = filepath.Join(basePath, scenario.World)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.World == "" {
		return fmt.Errorf("world is required")
	}
	if _, err := os.Stat(s.World); os.IsNotExist(err) {
		return fmt.Errorf("world not found: %s", s.World)
	}
	if len(s.Assertions) == 0 && len(s.Dump) == 0 {
		return fmt.Errorf("assertions or dump must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	for i, ref := range s.Dump {
		if _, err := inspect.ParseRef(ref); err != nil {
			return fmt.Errorf("dump[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSubjectType, AssertDisplay, AssertAncestry, AssertSummary:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertDescendant, AssertAbsent:
	case AssertChildren:
		if a.Labels == nil {
			return fmt.Errorf("assertions[%d]: labels is required for children (use [] for none)", index)
		}
	case AssertAncestors:
		if a.Types == nil {
			return fmt.Errorf("assertions[%d]: types is required for ancestors (use [] for none)", index)
		}
	case AssertSameStructure:
		if len(a.Refs) < 2 {
			return fmt.Errorf("assertions[%d]: same_structure needs at least two refs", index)
		}
		for _, ref := range a.Refs {
			if _, err := inspect.ParseRef(ref); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if _, err := inspect.ParseRef(a.Ref); err != nil {
		return fmt.Errorf("assertions[%d]: %w", index, err)
	}
	return nil
}
