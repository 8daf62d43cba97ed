package store

import (
	"context"
	"fmt"

	"github.com/roach88/mirror/internal/ir"
)

// WriteSession inserts a session record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, source, root, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Source,
		sess.Root,
		sess.Seq,
		sess.Engine,
		sess.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteSnapshot inserts a snapshot record and reports whether it was new.
//
// The id and node hash are recomputed from the record's content; a record
// whose id or hash disagrees is rejected. Because ids are content-addressed,
// writing the same snapshot twice is a no-op (inserted=false).
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) WriteSnapshot(ctx context.Context, snap ir.Snapshot) (inserted bool, err error) {
	want, err := ir.NewSnapshot(snap.SessionID, snap.Seq, snap.Path, snap.Node)
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}
	if snap.ID != want.ID || snap.NodeHash != want.NodeHash {
		return false, fmt.Errorf("write snapshot: id %q does not match content (want %q)", snap.ID, want.ID)
	}

	nodeJSON, err := marshalNode(snap.Node)
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots
		(id, session_id, seq, path, node_hash, node)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		snap.ID,
		snap.SessionID,
		snap.Seq,
		snap.Path,
		snap.NodeHash,
		nodeJSON,
	)
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write snapshot: rows affected: %w", err)
	}
	return rows > 0, nil
}
