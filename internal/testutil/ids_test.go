package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDs_InOrder(t *testing.T) {
	ids := NewFixedIDs("a", "b")
	assert.Equal(t, "a", ids.Generate())
	assert.Equal(t, "b", ids.Generate())
	assert.Panics(t, func() { ids.Generate() })
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "session-0001", ids.Generate())
	assert.Equal(t, "session-0002", ids.Generate())

	custom := NewSequentialIDs("run")
	assert.Equal(t, "run-0001", custom.Generate())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	ids := NewSequentialIDs("t")
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := ids.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}
