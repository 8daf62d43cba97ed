package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roach88/mirror/internal/mirror"
)

// NewMCPServer returns an MCP server exposing the inspector's tools.
func NewMCPServer(in *Inspector, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "mirror", Version: version}, nil)
	in.RegisterMCP(srv)
	return srv
}

// RegisterMCP registers the mirror_* tools on srv.
func (in *Inspector) RegisterMCP(srv *mcp.Server) {
	refProp := map[string]any{
		"type":        "string",
		"description": "Value name and optional path, e.g. canvas/shapes/0 or canvas.shapes[0]. Empty for the root value.",
	}

	addTool(srv, &mcp.Tool{
		Name:        "mirror_values",
		Description: "List the named values of the loaded world with their types and summaries.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, func(context.Context, struct{}) (any, error) {
		return in.Values(), nil
	})

	addTool(srv, &mcp.Tool{
		Name:        "mirror_reflect",
		Description: "Reflect a value: its subject type, display hint, children and ancestor chain.",
		InputSchema: inputSchema(map[string]any{
			"ref":   refProp,
			"depth": map[string]any{"type": "integer", "description": "Child levels to expand; negative for all. Default 3."},
		}, nil),
	}, func(_ context.Context, req reflectReq) (any, error) {
		depth := DefaultDepth
		if req.Depth != nil {
			depth = *req.Depth
		}
		return in.Reflect(req.Ref, depth)
	})

	addTool(srv, &mcp.Tool{
		Name:        "mirror_descendant",
		Description: "Follow a path from a named value and describe the descendant it selects.",
		InputSchema: inputSchema(map[string]any{"ref": refProp}, []string{"ref"}),
	}, func(_ context.Context, req refReq) (any, error) {
		found, err := in.Descend(req.Ref)
		if errors.Is(err, ErrNotFound) {
			return map[string]any{"ref": req.Ref, "found": false}, nil
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"found": true, "descendant": found}, nil
	})

	addTool(srv, &mcp.Tool{
		Name:        "mirror_ancestors",
		Description: "List the ancestor mirrors of a value, nearest first.",
		InputSchema: inputSchema(map[string]any{"ref": refProp}, nil),
	}, func(_ context.Context, req refReq) (any, error) {
		chain, err := in.Ancestors(req.Ref)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ancestors": chain, "count": len(chain)}, nil
	})

	addTool(srv, &mcp.Tool{
		Name:        "mirror_dump",
		Description: "Render a value's mirror tree as indented text.",
		InputSchema: inputSchema(map[string]any{
			"ref":       refProp,
			"max_depth": map[string]any{"type": "integer", "description": "Levels below the root to expand."},
		}, nil),
	}, func(_ context.Context, req dumpReq) (any, error) {
		var opts []mirror.DumpOption
		if req.MaxDepth != nil {
			opts = append(opts, mirror.WithMaxDepth(*req.MaxDepth))
		}
		var buf bytes.Buffer
		if err := in.Dump(&buf, req.Ref, opts...); err != nil {
			return nil, err
		}
		return buf.String(), nil
	})

	addTool(srv, &mcp.Tool{
		Name:        "mirror_record",
		Description: "Snapshot a value into the store under the current session.",
		InputSchema: inputSchema(map[string]any{
			"ref":   refProp,
			"depth": map[string]any{"type": "integer", "description": "Child levels to expand; negative for all. Default 3."},
		}, nil),
	}, func(ctx context.Context, req reflectReq) (any, error) {
		depth := DefaultDepth
		if req.Depth != nil {
			depth = *req.Depth
		}
		snap, err := in.Record(ctx, req.Ref, depth)
		if err != nil {
			return nil, err
		}
		return recordResp{ID: snap.ID, SessionID: snap.SessionID, Seq: snap.Seq, Path: snap.Path, NodeHash: snap.NodeHash}, nil
	})
}

type refReq struct {
	Ref string `json:"ref"`
}

type reflectReq struct {
	Ref   string `json:"ref"`
	Depth *int   `json:"depth"`
}

type dumpReq struct {
	Ref      string `json:"ref"`
	MaxDepth *int   `json:"max_depth"`
}

type recordResp struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Path      string `json:"path"`
	NodeHash  string `json:"node_hash"`
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool registers fn as a tool. Arguments decode into Req; a string
// result is returned as-is, anything else as JSON text. Errors become tool
// errors rather than protocol errors.
func addTool[Req any](srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r Req
		if args := req.Params.Arguments; len(args) > 0 {
			if err := json.Unmarshal(args, &r); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}
		resp, err := fn(ctx, r)
		if err != nil {
			return toolError(err), nil
		}
		text, ok := resp.(string)
		if !ok {
			data, err := json.Marshal(resp)
			if err != nil {
				return toolError(fmt.Errorf("marshal: %w", err)), nil
			}
			text = string(data)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	})
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}
