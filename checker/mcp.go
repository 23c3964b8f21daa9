package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers vizdrift tools on an MCP server, so agent-driven
// workflows can capture, check, and calibrate pages.
func (c *Checker) RegisterMCP(srv *mcp.Server) {
	c.registerCaptureTool(srv)
	c.registerCheckTool(srv)
	c.registerCalibrateTool(srv)
	c.registerFlakinessTool(srv)
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

// addTool wires a typed endpoint into the MCP server. Endpoint errors become
// tool errors rather than protocol failures.
func addTool(srv *mcp.Server, tool *mcp.Tool, endpoint func(ctx context.Context, args json.RawMessage) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := endpoint(ctx, req.Params.Arguments)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

type pageReq struct {
	URL     string `json:"url"`
	PageID  string `json:"page_id"`
	Samples int    `json:"samples,omitempty"`
}

func decodePageReq(args json.RawMessage) (*pageReq, error) {
	var r pageReq
	if err := json.Unmarshal(args, &r); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if r.URL == "" {
		return nil, errors.New("url is required")
	}
	if r.PageID == "" {
		r.PageID = r.URL
	}
	return &r, nil
}

var pageProperties = map[string]any{
	"url":     map[string]any{"type": "string", "description": "Page URL to capture"},
	"page_id": map[string]any{"type": "string", "description": "Stable page identifier (defaults to the URL)"},
}

func (c *Checker) registerCaptureTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "vizdrift_capture",
		Description: "Capture a structural layout snapshot of a page and store it.",
		InputSchema: inputSchema(pageProperties, []string{"url"}),
	}
	addTool(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		r, err := decodePageReq(args)
		if err != nil {
			return nil, err
		}
		a, err := c.Snapshot(ctx, r.PageID, r.URL)
		if err != nil {
			return nil, err
		}
		// Return metadata, not the full element list.
		return map[string]any{
			"id":        a.ID,
			"page_id":   a.PageID,
			"url":       a.URL,
			"timestamp": a.Timestamp,
			"elements":  len(a.Elements),
			"groups":    a.Statistics.GroupCount,
		}, nil
	})
}

func (c *Checker) registerCheckTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "vizdrift_check",
		Description: "Capture a page and compare it against its stored baseline with calibrated tolerances.",
		InputSchema: inputSchema(pageProperties, []string{"url"}),
	}
	addTool(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		r, err := decodePageReq(args)
		if err != nil {
			return nil, err
		}
		return c.Check(ctx, r.PageID, r.URL)
	})
}

func samplesProperties() map[string]any {
	props := map[string]any{
		"samples": map[string]any{"type": "integer", "description": "Number of captures (default from config)"},
	}
	for k, v := range pageProperties {
		props[k] = v
	}
	return props
}

func (c *Checker) registerCalibrateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "vizdrift_calibrate",
		Description: "Capture repeated samples of a page and derive noise tolerances for future checks.",
		InputSchema: inputSchema(samplesProperties(), []string{"url"}),
	}
	addTool(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		r, err := decodePageReq(args)
		if err != nil {
			return nil, err
		}
		return c.CalibratePage(ctx, r.PageID, r.URL, r.Samples)
	})
}

func (c *Checker) registerFlakinessTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "vizdrift_flakiness",
		Description: "Capture repeated samples of a page and report which elements vary between captures.",
		InputSchema: inputSchema(samplesProperties(), []string{"url"}),
	}
	addTool(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		r, err := decodePageReq(args)
		if err != nil {
			return nil, err
		}
		return c.Flakiness(ctx, r.PageID, r.URL, r.Samples)
	})
}
