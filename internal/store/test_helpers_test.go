package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/mirror/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession creates a test session with minimal required fields.
func createTestSession(id string, seq int64) ir.Session {
	return ir.Session{
		ID:        id,
		Source:    "testdata/worlds/shapes.yaml",
		Root:      "canvas",
		Seq:       seq,
		Engine:    ir.EngineVersion,
		IRVersion: ir.SchemaVersion,
	}
}

// createTestSnapshot builds a content-addressed snapshot record.
func createTestSnapshot(t *testing.T, sessionID string, seq int64, path string, n ir.Node) ir.Snapshot {
	t.Helper()
	snap, err := ir.NewSnapshot(sessionID, seq, path, n)
	if err != nil {
		t.Fatalf("NewSnapshot() failed: %v", err)
	}
	return snap
}

// sampleNode is a two-level class node: typ with a single labeled leaf
// child and a Shape ancestor.
func sampleNode(typ string) ir.Node {
	return ir.Node{
		SubjectType: typ,
		Display:     "reference_object",
		Summary:     typ,
		Ancestry:    "generated",
		Children: []ir.Edge{{
			Label:   "side",
			Labeled: true,
			Node: ir.Node{
				SubjectType: "Int",
				Summary:     "3",
				Ancestry:    "not_applicable",
				Children:    []ir.Edge{},
			},
		}},
		Ancestor: &ir.Node{
			SubjectType: "Shape",
			Display:     "reference_object",
			Summary:     "Shape",
			Ancestry:    "not_applicable",
			Children:    []ir.Edge{},
		},
	}
}
