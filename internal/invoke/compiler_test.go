// ABOUTME: Tests for the outbound request compiler
// ABOUTME: Covers path substitution, query assembly, auth schemes, and body construction

package invoke

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restbridge/bridge-gateway/internal/store"
)

func testBridgeWith(auth store.AuthConfig) *store.Bridge {
	return &store.Bridge{
		ID:      "bridge-1",
		Name:    "Test",
		Enabled: true,
		BaseURL: "https://api.example.com",
		Auth:    auth,
	}
}

func TestCompile_PathSubstitution(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "GET",
		Path:   "/users/{id}",
		Config: store.EndpointConfig{
			Parameters: []store.Parameter{
				{Name: "id", Type: "integer", Required: true, Location: store.LocationPath, Style: store.StyleReplacement},
			},
		},
	}

	req, err := Compile(bridge, endpoint, map[string]any{"id": float64(42)})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/users/42", req.URL)
	assert.NotContains(t, req.URL, "{id}")
	assert.Equal(t, "GET", req.Method)
}

func TestCompile_ColonStyleSubstitution(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "GET",
		Path:   "/users/:id/posts",
		Config: store.EndpointConfig{
			Parameters: []store.Parameter{
				{Name: "id", Type: "string", Required: true, Location: store.LocationPath, Style: store.StyleParameter},
			},
		},
	}

	req, err := Compile(bridge, endpoint, map[string]any{"id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/abc/posts", req.URL)
}

func TestCompile_MissingRequiredParameter(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "GET",
		Path:   "/users/{id}",
		Config: store.EndpointConfig{
			Parameters: []store.Parameter{
				{Name: "id", Type: "integer", Required: true, Location: store.LocationPath, Style: store.StyleReplacement},
			},
		},
	}

	_, err := Compile(bridge, endpoint, map[string]any{})
	require.Error(t, err)
	// The failure names the parameter; it never emits an unresolved placeholder
	assert.Contains(t, err.Error(), "required parameter 'id' is missing")
}

func TestCompile_QueryParameters(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "GET",
		Path:   "/search",
		Config: store.EndpointConfig{
			Parameters: []store.Parameter{
				{Name: "q", Type: "string", Location: store.LocationQuery},
				{Name: "limit", Type: "integer", Location: store.LocationQuery},
			},
		},
	}

	req, err := Compile(bridge, endpoint, map[string]any{"q": "a b", "limit": float64(10)})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/search?q=a+b&limit=10", req.URL)
}

func TestCompile_MissingEndpoint(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})

	_, err := Compile(bridge, nil, nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = Compile(bridge, &store.Endpoint{Method: "GET"}, nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestCompile_BearerAuth(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthBearer, Token: "  tok123  "})
	endpoint := &store.Endpoint{Method: "GET", Path: "/users"}

	req, err := Compile(bridge, endpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", req.Headers["Authorization"])
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
}

func TestCompile_BearerAuthMissingToken(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthBearer})
	endpoint := &store.Endpoint{Method: "GET", Path: "/users"}

	_, err := Compile(bridge, endpoint, nil)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestCompile_APIKeyInQuery(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{
		Type:        store.AuthAPIKey,
		APIKey:      "k",
		KeyLocation: store.KeyLocationQuery,
		ParamName:   "api_key",
	})
	endpoint := &store.Endpoint{Method: "GET", Path: "/users"}

	req, err := Compile(bridge, endpoint, nil)
	require.NoError(t, err)
	assert.Contains(t, req.URL, "api_key=k")
	assert.NotContains(t, req.Headers, "X-API-Key")
}

func TestCompile_APIKeyInHeader(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthAPIKey, APIKey: "k"})
	endpoint := &store.Endpoint{Method: "GET", Path: "/users"}

	req, err := Compile(bridge, endpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, "k", req.Headers["X-API-Key"])

	// Custom header name
	bridge.Auth.HeaderName = "X-Token"
	req, err = Compile(bridge, endpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, "k", req.Headers["X-Token"])
}

func TestCompile_BasicAuth(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthBasic, Username: "u", Password: "p"})
	endpoint := &store.Endpoint{Method: "GET", Path: "/users"}

	req, err := Compile(bridge, endpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, "Basic dTpw", req.Headers["Authorization"]) // base64("u:p")

	bridge.Auth.Password = ""
	_, err = Compile(bridge, endpoint, nil)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestCompile_StaticHeadersApplyLast(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthBearer, Token: "tok"})
	bridge.Headers = map[string]string{
		"Authorization": "custom-override",
		"X-Trace":       "1",
	}
	endpoint := &store.Endpoint{Method: "GET", Path: "/users"}

	req, err := Compile(bridge, endpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom-override", req.Headers["Authorization"])
	assert.Equal(t, "1", req.Headers["X-Trace"])
}

func TestCompile_BaseURLJoin(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"https://api.example.com", "/users", "https://api.example.com/users"},
		{"https://api.example.com/", "/users", "https://api.example.com/users"},
		{"https://api.example.com/v1", "users", "https://api.example.com/v1/users"},
		{"https://api.example.com/v1/", "/users", "https://api.example.com/v1/users"},
	}

	for _, tt := range tests {
		bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
		bridge.BaseURL = tt.base
		endpoint := &store.Endpoint{Method: "GET", Path: tt.path}

		req, err := Compile(bridge, endpoint, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, req.URL, "%s + %s", tt.base, tt.path)
	}
}

func TestCompile_BodyFromParameters(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "POST",
		Path:   "/users",
		Config: store.EndpointConfig{
			Parameters: []store.Parameter{
				{Name: "name", Type: "string", Required: true, Location: store.LocationBody},
				{Name: "age", Type: "integer", Location: store.LocationBody},
			},
		},
	}

	req, err := Compile(bridge, endpoint, map[string]any{"name": "ada", "age": float64(36)})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "ada", body["name"])
	assert.Equal(t, float64(36), body["age"])
}

func TestCompile_BodyFromSchemaProperties(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "POST",
		Path:   "/users",
		Config: store.EndpointConfig{
			Parameters: []store.Parameter{
				{Name: "name", Type: "string", Location: store.LocationBody},
			},
			RequestBody: &store.BodySchema{
				Properties: map[string]store.Property{
					"name":  {Type: "string"},
					"email": {Type: "string"},
				},
			},
		},
	}

	args := map[string]any{"name": "from-param", "email": "a@b.c", "unrelated": true}
	req, err := Compile(bridge, endpoint, args)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	// The body parameter wins over the schema copy of the same field
	assert.Equal(t, "from-param", body["name"])
	assert.Equal(t, "a@b.c", body["email"])
	assert.NotContains(t, body, "unrelated")
}

func TestCompile_RawRequestBodyPassthrough(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "PUT",
		Path:   "/blobs/1",
		Config: store.EndpointConfig{
			RequestBody: &store.BodySchema{Required: true},
		},
	}

	raw := []any{"a", "b"}
	req, err := Compile(bridge, endpoint, map[string]any{"requestBody": raw})
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(req.Body))
}

func TestCompile_NoBodyWhenNothingCollected(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{Method: "POST", Path: "/ping"}

	req, err := Compile(bridge, endpoint, map[string]any{"stray": 1})
	require.NoError(t, err)
	assert.Nil(t, req.Body)
}

func TestCompile_GetNeverHasBody(t *testing.T) {
	bridge := testBridgeWith(store.AuthConfig{Type: store.AuthNone})
	endpoint := &store.Endpoint{
		Method: "GET",
		Path:   "/users",
		Config: store.EndpointConfig{
			Parameters: []store.Parameter{
				{Name: "name", Type: "string", Location: store.LocationBody},
			},
		},
	}

	req, err := Compile(bridge, endpoint, map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Nil(t, req.Body)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "text", stringify("text"))
	assert.Equal(t, "42", stringify(float64(42)))
	assert.Equal(t, "42.5", stringify(float64(42.5)))
	assert.Equal(t, "1000000", stringify(float64(1000000)))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "", stringify(nil))
}
