// ABOUTME: Protocol handlers for resources and prompts
// ABOUTME: Resource content is synthesized on read from the bridge's endpoint metadata

package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/restbridge/bridge-gateway/internal/openapi"
	"github.com/restbridge/bridge-gateway/internal/store"
)

// readResourceParams are the params for resources/read.
type readResourceParams struct {
	URI string `json:"uri"`
}

// getPromptParams are the params for prompts/get.
type getPromptParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// resourceContent is one entry in a resources/read result.
type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// handleResourcesList returns the bridge's declared resources. The list is
// loaded lazily so bridge resolution never pays for it.
func (d *dispatch) handleResourcesList(ctx context.Context) {
	resources, err := d.srv.bridges.GetBridgeResources(ctx, d.bridge.ID)
	if err != nil {
		d.internalError(fmt.Errorf("loading resources: %w", err))
		return
	}
	if resources == nil {
		resources = []store.McpResource{}
	}
	d.succeed(map[string]any{"resources": resources})
}

// handleResourcesRead matches the URI against the bridge's declared
// resources and synthesizes the content from endpoint metadata.
func (d *dispatch) handleResourcesRead(ctx context.Context, params readResourceParams) {
	if params.URI == "" {
		d.fail(JSONRPCInvalidParams, "Resource URI is required", nil)
		return
	}

	resources, err := d.srv.bridges.GetBridgeResources(ctx, d.bridge.ID)
	if err != nil {
		d.internalError(fmt.Errorf("loading resources: %w", err))
		return
	}

	var resource *store.McpResource
	for i := range resources {
		if resources[i].URI == params.URI {
			resource = &resources[i]
			break
		}
	}
	if resource == nil {
		d.fail(JSONRPCInvalidParams, fmt.Sprintf("Resource not found: %s", params.URI), nil)
		return
	}

	text, defaultMime, err := d.synthesizeResource(resource)
	if err != nil {
		d.internalError(fmt.Errorf("synthesizing resource %s: %w", params.URI, err))
		return
	}

	mimeType := resource.MimeType
	if mimeType == "" {
		mimeType = defaultMime
	}

	d.succeed(map[string]any{
		"contents": []resourceContent{{
			URI:      params.URI,
			MimeType: mimeType,
			Text:     text,
		}},
	})
}

// synthesizeResource produces the content for a well-known resource URI.
// Unknown URIs fall back to the resource's own description.
func (d *dispatch) synthesizeResource(resource *store.McpResource) (text, mimeType string, err error) {
	switch {
	case resource.URI == openapi.URISpecFull:
		doc, err := openapi.SpecDocument(d.bridge)
		if err != nil {
			return "", "", err
		}
		return doc, "application/json", nil
	case resource.URI == openapi.URIEndpointsSummary:
		return openapi.EndpointsSummary(d.bridge), "text/markdown", nil
	case strings.HasPrefix(resource.URI, openapi.URISchemaPrefix):
		name := strings.TrimPrefix(resource.URI, openapi.URISchemaPrefix)
		return openapi.SchemaStub(name), "text/markdown", nil
	default:
		return resource.Description, "text/plain", nil
	}
}

// handlePromptsList returns the bridge's declared prompts.
func (d *dispatch) handlePromptsList(ctx context.Context) {
	prompts, err := d.srv.bridges.GetBridgePrompts(ctx, d.bridge.ID)
	if err != nil {
		d.internalError(fmt.Errorf("loading prompts: %w", err))
		return
	}
	if prompts == nil {
		prompts = []store.McpPrompt{}
	}
	d.succeed(map[string]any{"prompts": prompts})
}

// handlePromptsGet renders a prompt as a single user message. Arguments are
// appended as " - key: value" lines in sorted order so output is stable.
func (d *dispatch) handlePromptsGet(ctx context.Context, params getPromptParams) {
	if params.Name == "" {
		d.fail(JSONRPCInvalidParams, "Prompt name is required", nil)
		return
	}

	prompts, err := d.srv.bridges.GetBridgePrompts(ctx, d.bridge.ID)
	if err != nil {
		d.internalError(fmt.Errorf("loading prompts: %w", err))
		return
	}

	var prompt *store.McpPrompt
	for i := range prompts {
		if prompts[i].Name == params.Name {
			prompt = &prompts[i]
			break
		}
	}
	if prompt == nil {
		d.fail(JSONRPCInvalidParams, fmt.Sprintf("Prompt not found: %s", params.Name), nil)
		return
	}

	var b strings.Builder
	b.WriteString(prompt.Description)
	if len(params.Arguments) > 0 {
		keys := make([]string, 0, len(params.Arguments))
		for key := range params.Arguments {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.WriteString("\n")
		for _, key := range keys {
			fmt.Fprintf(&b, "\n - %s: %v", key, params.Arguments[key])
		}
	}

	d.succeed(map[string]any{
		"description": prompt.Description,
		"messages": []map[string]any{{
			"role": "user",
			"content": map[string]any{
				"type": "text",
				"text": b.String(),
			},
		}},
	})
}
