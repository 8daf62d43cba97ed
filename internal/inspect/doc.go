// Package inspect serves mirrors of a loaded world.
//
// An Inspector addresses values by reference: a value name followed by an
// optional descendant path, in either form accepted by mirror.ParsePath
// ("canvas/shapes/0" or "canvas.shapes[0]"). An empty reference names the
// world's root value.
//
// The same operations are exposed over HTTP (Handler) and as MCP tools
// (RegisterMCP). With a store configured, Record persists snapshots into a
// session opened on first use.
package inspect
