package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/mirror/internal/inspect"
	"github.com/roach88/mirror/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Ref      string // Reference the assertion was made about
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Ref != "" {
		fmt.Fprintf(&buf, " at %s", e.Ref)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// evaluator checks one assertion against an inspector. Snapshots recorded
// along the way are appended to the result.
type evaluator struct {
	ctx    context.Context
	in     *inspect.Inspector
	result *Result
}

// EvaluateAssertions runs every assertion against in, recording failures
// on result.
func EvaluateAssertions(ctx context.Context, in *inspect.Inspector, assertions []Assertion, result *Result) {
	ev := &evaluator{ctx: ctx, in: in, result: result}
	for i, a := range assertions {
		result.Checked++
		if err := ev.evaluate(a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
}

func (ev *evaluator) evaluate(a Assertion) error {
	switch a.Type {
	case AssertSubjectType:
		return ev.compareFound(a, func(f inspect.Found) string { return f.SubjectType })
	case AssertDisplay:
		return ev.compareFound(a, func(f inspect.Found) string {
			if f.Display == "" {
				return "none"
			}
			return f.Display
		})
	case AssertSummary:
		return ev.compareFound(a, func(f inspect.Found) string { return f.Summary })
	case AssertAncestry:
		n, err := ev.in.Reflect(a.Ref, 1)
		if err != nil {
			return err
		}
		return compare(a, a.Expect, n.Ancestry)
	case AssertChildren:
		n, err := ev.in.Reflect(a.Ref, 1)
		if err != nil {
			return err
		}
		return compareList(a, a.Labels, childLabels(n))
	case AssertAncestors:
		chain, err := ev.in.Ancestors(a.Ref)
		if err != nil {
			return err
		}
		types := make([]string, len(chain))
		for i, n := range chain {
			types[i] = n.SubjectType
		}
		return compareList(a, a.Types, types)
	case AssertDescendant:
		f, err := ev.in.Descend(a.Ref)
		if err != nil {
			return &AssertionError{Type: a.Type, Ref: a.Ref, Expected: "descendant present", Actual: err.Error()}
		}
		if a.Expect != "" {
			return compare(a, a.Expect, f.SubjectType)
		}
		return nil
	case AssertAbsent:
		f, err := ev.in.Descend(a.Ref)
		switch {
		case err == nil:
			return &AssertionError{Type: a.Type, Ref: a.Ref, Expected: "no descendant", Actual: f.Summary}
		case errors.Is(err, inspect.ErrNotFound):
			return nil
		default:
			return err
		}
	case AssertSameStructure:
		return ev.sameStructure(a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (ev *evaluator) compareFound(a Assertion, field func(inspect.Found) string) error {
	f, err := ev.in.Descend(a.Ref)
	if err != nil {
		return err
	}
	return compare(a, a.Expect, field(f))
}

// sameStructure records every ref in full and compares node hashes.
func (ev *evaluator) sameStructure(a Assertion) error {
	var first ir.Snapshot
	for i, ref := range a.Refs {
		snap, err := ev.in.Record(ev.ctx, ref, -1)
		if err != nil {
			return err
		}
		ev.result.Snapshots = append(ev.result.Snapshots, snap)
		if i == 0 {
			first = snap
			continue
		}
		if snap.NodeHash != first.NodeHash {
			return &AssertionError{
				Type:     a.Type,
				Ref:      ref,
				Expected: fmt.Sprintf("node hash %s (as %s)", first.NodeHash, first.Path),
				Actual:   fmt.Sprintf("node hash %s", snap.NodeHash),
			}
		}
	}
	return nil
}

func childLabels(n ir.Node) []string {
	out := make([]string, len(n.Children))
	for i, e := range n.Children {
		if e.Labeled {
			out[i] = e.Label
		} else {
			out[i] = UnlabeledChild
		}
	}
	return out
}

func compare(a Assertion, want, got string) error {
	if want == got {
		return nil
	}
	return &AssertionError{Type: a.Type, Ref: a.Ref, Expected: fmt.Sprintf("%q", want), Actual: fmt.Sprintf("%q", got)}
}

func compareList(a Assertion, want, got []string) error {
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{Type: a.Type, Ref: a.Ref, Expected: fmt.Sprintf("%q", want), Actual: fmt.Sprintf("%q", got)}
}
