package model

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes reported by the loader.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // Document could not be parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build or validation failed

	// Type declarations
	ErrCodeDuplicateType = "E201" // Type declared twice
	ErrCodeUnknownType   = "E202" // Reference to an undeclared type
	ErrCodeInvalidType   = "E203" // Bad kind, base or field list

	// Descriptions
	ErrCodeInvalidDescribe = "E211" // Bad style, display, ancestors or child
	ErrCodeUnknownField    = "E212" // Field not declared on the type

	// Values
	ErrCodeInvalidValue = "E221" // Malformed value expression
	ErrCodeUnknownValue = "E222" // Reference to an undefined value
	ErrCodeValueCycle   = "E223" // Non-object values that reference each other
	ErrCodeUnknownRoot  = "E231" // Root names no value
)

// LoadError describes a problem with a world document. Path locates the
// offending element ("values.sq.fields.side"); Pos is set for CUE sources.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func errorf(code, path, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}
