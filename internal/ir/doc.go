// Package ir holds the persisted form of mirror trees.
//
// ir imports nothing internal; the mirror engine converts into it and the
// store reads and writes it.
//
// Key constraints:
//   - NO float types anywhere; numbers are int64
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
//   - Ids are domain-separated SHA-256 over RFC 8785 canonical JSON
package ir
