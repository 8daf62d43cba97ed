// Package model loads worlds: documents that declare runtime types, custom
// descriptions, leaf markers and named values for the mirror engine.
//
// Worlds are written in YAML or CUE. CUE sources may carry their own
// schema; they are validated and must be concrete before decoding. Problems
// are reported as *LoadError with an error code and a document path.
package model
