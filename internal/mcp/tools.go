// ABOUTME: Protocol handlers for initialize, tools/list, and tools/call
// ABOUTME: Resolves tool names to endpoints and runs the outbound invocation

package mcp

import (
	"context"
	"fmt"

	"github.com/restbridge/bridge-gateway/internal/invoke"
	"github.com/restbridge/bridge-gateway/internal/store"
	"github.com/restbridge/bridge-gateway/internal/toolgen"
)

// callToolParams are the params for tools/call.
type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// toolContent is one content block in a tool result.
type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// callToolResult is the result for tools/call.
type callToolResult struct {
	Content []toolContent `json:"content"`
}

// listToolsResult is the result for tools/list.
type listToolsResult struct {
	Tools []store.McpTool `json:"tools"`
}

// handleInitialize answers the MCP handshake. Capabilities always advertise
// tools; resources and prompts appear only when the bridge declares any.
func (d *dispatch) handleInitialize() {
	capabilities := map[string]any{
		"tools": map[string]any{},
	}
	if len(d.bridge.Resources) > 0 {
		capabilities["resources"] = map[string]any{}
	}
	if len(d.bridge.Prompts) > 0 {
		capabilities["prompts"] = map[string]any{}
	}

	d.succeed(map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    capabilities,
		"serverInfo": map[string]any{
			"name":    d.bridge.Name,
			"version": serverVersion,
		},
	})
}

// handleToolsList returns the bridge's explicit tools verbatim, or derives
// one tool per endpoint. The two sources are never merged: explicit tools
// suppress derivation entirely to avoid duplicate names.
func (d *dispatch) handleToolsList() {
	var tools []store.McpTool
	switch {
	case len(d.bridge.Tools) > 0:
		tools = d.bridge.Tools
	case len(d.bridge.Endpoints) > 0:
		tools = make([]store.McpTool, 0, len(d.bridge.Endpoints))
		for _, endpoint := range d.bridge.Endpoints {
			tools = append(tools, toolgen.DeriveTool(endpoint))
		}
	}
	if tools == nil {
		tools = []store.McpTool{}
	}

	d.srv.logger.Debug("tools/list", "bridge_id", d.bridge.ID, "count", len(tools))
	d.succeed(listToolsResult{Tools: tools})
}

// handleToolsCall resolves the tool name to an endpoint, compiles and
// executes the outbound call, and wraps the result as text content.
func (d *dispatch) handleToolsCall(ctx context.Context, params callToolParams) {
	if params.Name == "" {
		d.fail(JSONRPCInvalidParams, "Tool name is required", nil)
		return
	}

	endpoint := resolveEndpoint(d.bridge, params.Name)
	if endpoint == nil {
		d.fail(JSONRPCInvalidParams,
			fmt.Sprintf("Tool '%s' not found in bridge '%s'", params.Name, d.bridge.Name), nil)
		return
	}
	if endpoint.Method == "" || endpoint.Path == "" {
		d.fail(JSONRPCInvalidParams,
			fmt.Sprintf("Invalid endpoint configuration for tool '%s'", params.Name), nil)
		return
	}

	compiled, err := invoke.Compile(d.bridge, endpoint, params.Arguments)
	if err != nil {
		d.callFailed(params.Name, err)
		return
	}

	result, err := d.srv.caller.Do(ctx, compiled, endpoint.Config.TimeoutMs)
	if err != nil {
		d.callFailed(params.Name, err)
		return
	}

	d.srv.logEvent(d.bridge.ID, store.LogLevelInfo, "tool call succeeded", map[string]any{
		"tool":       params.Name,
		"status":     result.Status,
		"elapsed_ms": result.Elapsed.Milliseconds(),
	})

	d.succeed(callToolResult{
		Content: []toolContent{{Type: "text", Text: result.Text()}},
	})
}

// callFailed maps any compile or upstream failure into INTERNAL_ERROR.
func (d *dispatch) callFailed(toolName string, err error) {
	d.srv.logger.Warn("tool call failed",
		"bridge_id", d.bridge.ID, "tool", toolName, "error", err)
	d.srv.logEvent(d.bridge.ID, store.LogLevelError, "tool call failed", map[string]any{
		"tool":  toolName,
		"error": err.Error(),
	})
	d.fail(JSONRPCInternalError, fmt.Sprintf("API call failed: %v", err), nil)
}

// resolveEndpoint maps a requested tool name to an endpoint.
//
// Explicit tools take priority: a name match uses the tool's endpointId
// back-reference when present, or any endpoint whose generated or raw name
// equals the tool name. Without an explicit match the endpoints are tried
// directly, first by generated name, then by a normalized comparison
// against the endpoint's display name and method+path.
func resolveEndpoint(bridge *store.Bridge, toolName string) *store.Endpoint {
	for _, tool := range bridge.Tools {
		if tool.Name != toolName {
			continue
		}
		if tool.EndpointID != "" {
			if endpoint := endpointByID(bridge, tool.EndpointID); endpoint != nil {
				return endpoint
			}
		}
		for i := range bridge.Endpoints {
			endpoint := &bridge.Endpoints[i]
			if toolgen.ToolName(endpoint.Method, endpoint.Path) == toolName || endpoint.Name == toolName {
				return endpoint
			}
		}
		return nil
	}

	for i := range bridge.Endpoints {
		endpoint := &bridge.Endpoints[i]
		if toolgen.ToolName(endpoint.Method, endpoint.Path) == toolName {
			return endpoint
		}
	}

	normalized := toolgen.NormalizeName(toolName)
	for i := range bridge.Endpoints {
		endpoint := &bridge.Endpoints[i]
		if toolgen.NormalizeName(endpoint.Name) == normalized {
			return endpoint
		}
		if toolgen.NormalizeName(endpoint.Method+" "+endpoint.Path) == normalized {
			return endpoint
		}
	}

	return nil
}

// endpointByID finds an endpoint by its id within the bridge.
func endpointByID(bridge *store.Bridge, id string) *store.Endpoint {
	for i := range bridge.Endpoints {
		if bridge.Endpoints[i].ID == id {
			return &bridge.Endpoints[i]
		}
	}
	return nil
}
