// Package store provides SQLite-backed durable storage for mirror snapshots.
//
// The store is an append-only log with:
//   - Sessions: one per loaded world, keyed by a UUIDv7
//   - Snapshots: materialized mirror trees recorded at a path within a session
//
// # Logical Time
//
// Ordering uses the seq column assigned by a Clock, never timestamps. All
// reads are ORDER BY seq ASC, id ASC COLLATE BINARY so that results are
// identical across runs.
//
// # Content Addressing
//
// Snapshot ids and node hashes are computed in internal/ir from canonical
// JSON with domain-separated SHA-256. Nodes are stored in canonical form and
// their hash is recomputed on read; a mismatch is reported as ErrCorrupt.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Snapshots must belong to a known session
package store
