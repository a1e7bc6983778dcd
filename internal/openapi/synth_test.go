// ABOUTME: Tests for synthesized openapi:// resource content
// ABOUTME: Validates the generated OpenAPI document shape and Markdown summaries

package openapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restbridge/bridge-gateway/internal/store"
)

func summaryBridge() *store.Bridge {
	return &store.Bridge{
		ID:          "bridge-1",
		Name:        "Petstore",
		Description: "A pet store API",
		BaseURL:     "https://api.example.com",
		Endpoints: []store.Endpoint{
			{
				ID:     "ep-1",
				Name:   "List users",
				Method: "GET",
				Path:   "/users",
				Config: store.EndpointConfig{
					Parameters: []store.Parameter{
						{Name: "limit", Type: "integer", Location: store.LocationQuery},
					},
				},
			},
			{
				ID:     "ep-2",
				Name:   "Get user",
				Method: "GET",
				Path:   "/users/{id}",
				Config: store.EndpointConfig{
					Parameters: []store.Parameter{
						{Name: "id", Type: "integer", Required: true, Location: store.LocationPath, Style: store.StyleReplacement},
					},
				},
			},
		},
	}
}

func TestSpecDocument(t *testing.T) {
	text, err := SpecDocument(summaryBridge())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &doc))

	info := doc["info"].(map[string]any)
	assert.Equal(t, "Petstore", info["title"])

	servers := doc["servers"].([]any)
	require.Len(t, servers, 1)
	assert.Equal(t, "https://api.example.com", servers[0].(map[string]any)["url"])

	paths := doc["paths"].(map[string]any)
	require.Contains(t, paths, "/users")
	require.Contains(t, paths, "/users/{id}")

	get := paths["/users"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, "get_users_list", get["operationId"])

	read := paths["/users/{id}"].(map[string]any)["get"].(map[string]any)
	params := read["parameters"].([]any)
	require.Len(t, params, 1)
	assert.Equal(t, "path", params[0].(map[string]any)["in"])
}

func TestEndpointsSummary(t *testing.T) {
	summary := EndpointsSummary(summaryBridge())

	assert.Contains(t, summary, "# Petstore")
	assert.Contains(t, summary, "Base URL: `https://api.example.com`")
	assert.Contains(t, summary, "`GET /users`")
	assert.Contains(t, summary, "`get_users_read`")
	assert.Contains(t, summary, "| limit | integer | query | no |")
}

func TestEndpointsSummary_NoEndpoints(t *testing.T) {
	bridge := &store.Bridge{Name: "Empty", BaseURL: "https://x"}
	assert.Contains(t, EndpointsSummary(bridge), "No endpoints configured.")
}

func TestSchemaStub(t *testing.T) {
	stub := SchemaStub("User")
	assert.Contains(t, stub, "# Schema: User")
}
