package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/mirror/internal/ir"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ReadSession retrieves a single session by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, root, seq, engine_version, ir_version
		FROM sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

// ListSessions returns all sessions in logical order.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListSessions(ctx context.Context) ([]ir.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, root, seq, engine_version, ir_version
		FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSnapshot retrieves a single snapshot by ID.
// Returns sql.ErrNoRows if not found and ErrCorrupt if the stored node no
// longer matches its hash.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (ir.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, seq, path, node_hash, node
		FROM snapshots
		WHERE id = ?
	`, id)
	return scanSnapshot(row)
}

// ReadSnapshots returns the snapshots of a session in logical order.
func (s *Store) ReadSnapshots(ctx context.Context, sessionID string) ([]ir.Snapshot, error) {
	// Deterministic ordering - ORDER BY seq ASC, id COLLATE BINARY ASC
	return s.querySnapshots(ctx, `
		SELECT id, session_id, seq, path, node_hash, node
		FROM snapshots
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
}

// ReadSnapshotsByHash returns every snapshot, across sessions, whose node
// has the given hash: the history of one exact structure.
func (s *Store) ReadSnapshotsByHash(ctx context.Context, nodeHash string) ([]ir.Snapshot, error) {
	return s.querySnapshots(ctx, `
		SELECT id, session_id, seq, path, node_hash, node
		FROM snapshots
		WHERE node_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, nodeHash)
}

// ReadPathHistory returns the snapshots recorded at path, across sessions.
func (s *Store) ReadPathHistory(ctx context.Context, path string) ([]ir.Snapshot, error) {
	return s.querySnapshots(ctx, `
		SELECT id, session_id, seq, path, node_hash, node
		FROM snapshots
		WHERE path = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, path)
}

func (s *Store) querySnapshots(ctx context.Context, query string, args ...any) ([]ir.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []ir.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

func scanSession(row scanner) (ir.Session, error) {
	var sess ir.Session
	err := row.Scan(&sess.ID, &sess.Source, &sess.Root, &sess.Seq, &sess.Engine, &sess.IRVersion)
	if err == sql.ErrNoRows {
		return ir.Session{}, err
	}
	if err != nil {
		return ir.Session{}, fmt.Errorf("scan session: %w", err)
	}
	return sess, nil
}

func scanSnapshot(row scanner) (ir.Snapshot, error) {
	var (
		snap     ir.Snapshot
		nodeJSON string
	)
	err := row.Scan(&snap.ID, &snap.SessionID, &snap.Seq, &snap.Path, &snap.NodeHash, &nodeJSON)
	if err == sql.ErrNoRows {
		return ir.Snapshot{}, err
	}
	if err != nil {
		return ir.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	node, err := unmarshalNode(nodeJSON, snap.NodeHash)
	if err != nil {
		return ir.Snapshot{}, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	snap.Node = node
	return snap, nil
}
