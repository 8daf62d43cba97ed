package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/mirror/internal/ir"
)

// ErrCorrupt reports a stored node whose content no longer matches its hash.
var ErrCorrupt = errors.New("stored node does not match its hash")

// marshalNode converts a node to canonical JSON TEXT for storage.
// The canonical form is what NodeHash hashes, so stored bytes and hash agree.
func marshalNode(n ir.Node) (string, error) {
	data, err := ir.MarshalCanonical(n.IR())
	if err != nil {
		return "", fmt.Errorf("marshal node: %w", err)
	}
	return string(data), nil
}

// unmarshalNode parses stored node TEXT and checks it against wantHash.
func unmarshalNode(data, wantHash string) (ir.Node, error) {
	var n ir.Node
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		return ir.Node{}, fmt.Errorf("unmarshal node: %w", err)
	}
	got, err := ir.NodeHash(n)
	if err != nil {
		return ir.Node{}, fmt.Errorf("unmarshal node: %w", err)
	}
	if got != wantHash {
		return ir.Node{}, fmt.Errorf("%w: have %s, want %s", ErrCorrupt, got, wantHash)
	}
	return n, nil
}
