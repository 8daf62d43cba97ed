package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed ids. The version suffix allows the
// encoding to change without colliding with old ids.
const (
	DomainNode     = "mirror/node/v1"
	DomainSnapshot = "mirror/snapshot/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NodeHash returns the content hash of a materialized mirror tree. Equal
// trees hash equally regardless of how they were produced.
func NodeHash(n Node) (string, error) {
	canonical, err := MarshalCanonical(n.IR())
	if err != nil {
		return "", fmt.Errorf("NodeHash: %w", err)
	}
	return hashWithDomain(DomainNode, canonical), nil
}

// SnapshotID returns the id of a snapshot: the node recorded at path in
// session at logical time seq.
func SnapshotID(sessionID string, seq int64, path string, n Node) (string, error) {
	nodeHash, err := NodeHash(n)
	if err != nil {
		return "", fmt.Errorf("SnapshotID: %w", err)
	}
	obj := IRObject{
		"session_id": IRString(sessionID),
		"seq":        IRInt(seq),
		"path":       IRString(path),
		"node_hash":  IRString(nodeHash),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SnapshotID: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustNodeHash is like NodeHash but panics on error.
// Use only in tests or when the node is known to be valid.
func MustNodeHash(n Node) string {
	h, err := NodeHash(n)
	if err != nil {
		panic(err)
	}
	return h
}

// NewSnapshot builds the snapshot record for n recorded at path in session
// at logical time seq, with its node hash and id filled in.
func NewSnapshot(sessionID string, seq int64, path string, n Node) (Snapshot, error) {
	nodeHash, err := NodeHash(n)
	if err != nil {
		return Snapshot{}, err
	}
	id, err := SnapshotID(sessionID, seq, path, n)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ID:        id,
		SessionID: sessionID,
		Seq:       seq,
		Path:      path,
		NodeHash:  nodeHash,
		Node:      n,
	}, nil
}
