package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shapesWorld  = "../../testdata/worlds/shapes.yaml"
	zooWorld     = "../../testdata/worlds/zoo.cue"
	scenariosDir = "../../testdata/scenarios"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "values", shapesWorld)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"validate", "values", "inspect", "descend", "ancestors", "quicklook", "snapshot", "history", "explore", "serve", "mcp", "test"} {
		assert.Contains(t, names, want)
	}
}

func TestValidate(t *testing.T) {
	out, _, err := execute(t, "validate", shapesWorld)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+shapesWorld+" is valid (5 values, root canvas)\n", out)

	out, _, err = execute(t, "validate", zooWorld, "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "zoo", data["world"])
	assert.Equal(t, float64(3), data["values"])
	assert.Equal(t, "pack", data["root"])
}

func TestValidate_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "values: {a: {ref: b}}\n")

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E222]: values.a.ref: no value named \"b\"\n", out)

	out, _, err = execute(t, "validate", path, "--format", "json")
	require.Error(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E222", resp.Error.Code)
	assert.Equal(t, map[string]any{"path": "values.a.ref"}, resp.Error.Details)
}

func TestValidate_CUEPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "conflict.cue", "name: \"a\" & \"b\"\n")
	out, _, err := execute(t, "validate", path, "--format", "json")
	require.Error(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "E006", resp.Error.Code)
	details := resp.Error.Details.(map[string]any)
	assert.Equal(t, float64(1), details["line"])
}

func TestValidate_NotFound(t *testing.T) {
	out, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValues(t *testing.T) {
	out, _, err := execute(t, "values", shapesWorld)
	require.NoError(t, err)
	assert.Contains(t, out, "canvas (root)")
	assert.Contains(t, out, "Color.rgb((r: 0, g: 128, b: 128))")

	out, _, err = execute(t, "values", shapesWorld, "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Len(t, resp.Data, 5)
}

func TestInspect(t *testing.T) {
	out, _, err := execute(t, "inspect", shapesWorld, "square", "--depth", "-1")
	require.NoError(t, err)
	assert.Equal(t, `▿ Square #0
  ▿ super: Polygon
    ▿ super: Shape
      - kind: "shape"
      - ident: 1
    - sides: 4
  - side: 3
`, out)

	out, _, err = execute(t, "inspect", shapesWorld, "--depth", "0")
	require.NoError(t, err)
	assert.Equal(t, "▹ Canvas\n", out, "empty ref is the root")

	out, _, err = execute(t, "inspect", shapesWorld, "canvas.shapes[0]", "--format", "json", "--depth", "1")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	node := resp.Data.(map[string]any)
	assert.Equal(t, "Square", node["subject_type"])
	assert.Equal(t, "Polygon", node["ancestor"].(map[string]any)["subject_type"])
}

func TestInspect_MaxItems(t *testing.T) {
	out, _, err := execute(t, "inspect", shapesWorld, "square", "--max-items", "2")
	require.NoError(t, err)
	assert.Equal(t, "▿ Square #0\n  ▿ super: Polygon\n", out)
}

func TestDescend(t *testing.T) {
	out, _, err := execute(t, "descend", shapesWorld, "canvas/shapes/1")
	require.NoError(t, err)
	assert.Equal(t, "canvas/shapes/1: Circle\n  type:     Circle\n  display:  reference_object\n  children: 1\n", out)

	out, _, err = execute(t, "descend", zooWorld, "pack/0", "--format", "json")
	require.NoError(t, err)
	found := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, "Bird", found["subject_type"])
	assert.Equal(t, "aggregate", found["display"])
}

func TestDescend_Errors(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		exit int
		want string
	}{
		{"absent", "canvas/shapes/3", ExitFailure, "Error [E303]: no descendant at path: canvas/shapes/3"},
		{"unknown value", "nowhere", ExitCommandError, "Error [E302]"},
		{"bad ref", "0/x", ExitCommandError, "Error [E301]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "descend", shapesWorld, tt.ref)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestAncestors(t *testing.T) {
	out, _, err := execute(t, "ancestors", shapesWorld, "square")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Polygon (generated")
	assert.Contains(t, out, "2. Shape (")

	out, _, err = execute(t, "ancestors", zooWorld, "pack/0")
	require.NoError(t, err)
	assert.Equal(t, "no ancestors\n", out)

	out, _, err = execute(t, "ancestors", zooWorld, "rex", "--format", "json")
	require.NoError(t, err)
	chain := decodeResponse(t, out).Data.([]any)
	require.Len(t, chain, 2)
	assert.Equal(t, "Mammal", chain[0].(map[string]any)["subject_type"])
}

func TestQuickLook(t *testing.T) {
	out, _, err := execute(t, "quicklook", shapesWorld, "canvas/title")
	require.NoError(t, err)
	assert.Equal(t, "text(\"demo\")\n", out)

	out, _, err = execute(t, "quicklook", shapesWorld, "canvas/title", "--format", "json")
	require.NoError(t, err)
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, "text", data["kind"])

	out, _, err = execute(t, "quicklook", shapesWorld, "canvas")
	require.NoError(t, err)
	assert.Equal(t, "text(\"Canvas\")\n", out, "values without a preview fall back to their summary")
}

func TestSnapshotAndHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "mirror.db")

	out, _, err := execute(t, "snapshot", shapesWorld, "square", "origin", "--db", db, "--format", "json")
	require.NoError(t, err)
	snaps := decodeResponse(t, out).Data.([]any)
	require.Len(t, snaps, 2)
	first := snaps[0].(map[string]any)
	second := snaps[1].(map[string]any)
	assert.Equal(t, "square", first["path"])
	assert.Equal(t, "origin", second["path"])
	assert.Equal(t, first["session_id"], second["session_id"])
	assert.Less(t, first["seq"].(float64), second["seq"].(float64))

	_, _, err = execute(t, "snapshot", shapesWorld, "canvas/shapes/0", "square", "--db", db)
	require.NoError(t, err)

	out, _, err = execute(t, "history", shapesWorld, "square", "--db", db, "--format", "json")
	require.NoError(t, err)
	history := decodeResponse(t, out).Data.([]any)
	require.Len(t, history, 2)
	a, b := history[0].(map[string]any), history[1].(map[string]any)
	assert.Equal(t, a["node_hash"], b["node_hash"], "unchanged structure keeps its hash")
	assert.NotEqual(t, a["session_id"], b["session_id"])
	assert.Less(t, a["seq"].(float64), b["seq"].(float64))

	out, _, err = execute(t, "history", shapesWorld, "teal", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "no snapshots\n", out)
}

func TestSnapshot_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "mirror.db")
	out, _, err := execute(t, "snapshot", shapesWorld, "canvas/nope", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E303]")

	out, _, err = execute(t, "snapshot", shapesWorld, "--db", filepath.Join(t.TempDir(), "no", "such", "dir.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E401]")
}

func TestVerboseLogsToStderr(t *testing.T) {
	db := filepath.Join(t.TempDir(), "mirror.db")
	out, errOut, err := execute(t, "-v", "snapshot", shapesWorld, "square", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "session ")
	assert.Contains(t, errOut, "world loaded")
	assert.Contains(t, errOut, "snapshot recorded")

	_, errOut, err = execute(t, "snapshot", shapesWorld, "square", "--db", db)
	require.NoError(t, err)
	assert.Empty(t, errOut)
}
