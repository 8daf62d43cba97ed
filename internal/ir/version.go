package ir

// Version constants recorded with each session.
const (
	// SchemaVersion is the snapshot schema version.
	SchemaVersion = "1"

	// EngineVersion is the mirror engine version.
	EngineVersion = "0.1.0"
)
