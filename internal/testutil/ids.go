package testutil

import (
	"fmt"
	"sync"
)

// FixedIDs returns predetermined session ids in order.
//
// Example:
//
//	ids := NewFixedIDs("session-1", "session-2")
//	ids.Generate() // "session-1"
//	ids.Generate() // "session-2"
//	ids.Generate() // panic: all ids exhausted
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// Generate returns the next id. It panics once all ids are consumed, which
// catches a test that opened more sessions than it declared.
func (g *FixedIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// SequentialIDs generates "<prefix>-0001", "<prefix>-0002", ... without limit.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a sequential generator. An empty prefix uses
// "session".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "session"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
