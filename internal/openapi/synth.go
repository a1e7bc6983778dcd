// ABOUTME: Synthesizes content for the well-known openapi:// resource URIs
// ABOUTME: Generates an OpenAPI document and Markdown summaries from bridge endpoints

package openapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/restbridge/bridge-gateway/internal/store"
	"github.com/restbridge/bridge-gateway/internal/toolgen"
)

// Well-known resource URIs with synthesized content.
const (
	URISpecFull         = "openapi://spec/full"
	URIEndpointsSummary = "openapi://endpoints/summary"
	URISchemaPrefix     = "openapi://schema/"
)

// SpecDocument generates an OpenAPI 3.0 document describing the bridge's
// endpoints. The info.title is the bridge name.
func SpecDocument(bridge *store.Bridge) (string, error) {
	paths := make(map[string]map[string]any)
	for _, endpoint := range bridge.Endpoints {
		if endpoint.Path == "" || endpoint.Method == "" {
			continue
		}
		operations, ok := paths[endpoint.Path]
		if !ok {
			operations = make(map[string]any)
			paths[endpoint.Path] = operations
		}

		operation := map[string]any{
			"operationId": toolgen.ToolName(endpoint.Method, endpoint.Path),
			"summary":     endpoint.Name,
			"responses": map[string]any{
				"200": map[string]any{"description": "Successful response"},
			},
		}
		if endpoint.Description != "" {
			operation["description"] = endpoint.Description
		}
		if params := operationParameters(endpoint); len(params) > 0 {
			operation["parameters"] = params
		}
		operations[strings.ToLower(endpoint.Method)] = operation
	}

	document := map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":   bridge.Name,
			"version": "1.0.0",
		},
		"servers": []map[string]any{
			{"url": bridge.BaseURL},
		},
		"paths": paths,
	}
	if bridge.Description != "" {
		document["info"].(map[string]any)["description"] = bridge.Description
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding openapi document: %w", err)
	}
	return string(data), nil
}

// operationParameters maps declared path and query parameters into OpenAPI
// parameter objects. Body parameters are omitted; they belong to the
// request body, not the parameter list.
func operationParameters(endpoint store.Endpoint) []map[string]any {
	var params []map[string]any
	for _, param := range endpoint.Config.Parameters {
		if param.Location == store.LocationBody {
			continue
		}
		entry := map[string]any{
			"name":     param.Name,
			"in":       param.Location,
			"required": param.Required,
			"schema":   map[string]any{"type": param.Type},
		}
		if param.Description != "" {
			entry["description"] = param.Description
		}
		params = append(params, entry)
	}
	return params
}

// EndpointsSummary generates a Markdown summary of every endpoint in the
// bridge, suitable both for the summary resource and the admin docs page.
func EndpointsSummary(bridge *store.Bridge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", bridge.Name)
	if bridge.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", bridge.Description)
	}
	fmt.Fprintf(&b, "Base URL: `%s`\n\n", bridge.BaseURL)

	if len(bridge.Endpoints) == 0 {
		b.WriteString("No endpoints configured.\n")
		return b.String()
	}

	b.WriteString("## Endpoints\n\n")
	for _, endpoint := range bridge.Endpoints {
		fmt.Fprintf(&b, "### %s `%s %s`\n\n", endpoint.Name, strings.ToUpper(endpoint.Method), endpoint.Path)
		if endpoint.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", endpoint.Description)
		}
		fmt.Fprintf(&b, "Tool: `%s`\n\n", toolgen.ToolName(endpoint.Method, endpoint.Path))

		if len(endpoint.Config.Parameters) > 0 {
			b.WriteString("| Parameter | Type | In | Required |\n")
			b.WriteString("|---|---|---|---|\n")
			for _, param := range endpoint.Config.Parameters {
				required := "no"
				if param.Required {
					required = "yes"
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", param.Name, param.Type, param.Location, required)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SchemaStub returns placeholder content for openapi://schema/<name> URIs.
// Per-schema extraction is not implemented; the stub names the schema so
// clients get a stable shape.
func SchemaStub(name string) string {
	return fmt.Sprintf("# Schema: %s\n\nSchema definition for `%s` is not available on this bridge.\n", name, name)
}
