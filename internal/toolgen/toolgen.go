// ABOUTME: Derives MCP tool names and input schemas from endpoint definitions
// ABOUTME: Name generation is deterministic so list-time and call-time naming agree

package toolgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/restbridge/bridge-gateway/internal/store"
)

// namePattern is the validity predicate for human-entered tool names:
// lower-case start, at least three characters, letters/digits/underscore only.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{2,}$`)

// placeholder matches {param}-style path tokens.
var placeholder = regexp.MustCompile(`\{[^}]*\}`)

// IsValidName reports whether name is an acceptable explicit tool name.
func IsValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ToolName maps an (HTTP method, path) pair to a canonical tool identifier.
//
// The same function runs when the tool list is built and when an incoming
// tools/call name is matched back to an endpoint, so it must stay
// deterministic: "GET /users" -> "get_users_list",
// "GET /users/{id}" -> "get_users_read", "POST /users" -> "post_users_create".
func ToolName(method, path string) string {
	m := strings.ToLower(method)

	// Drop {param} placeholders, then take the last remaining static segment
	// as the resource token.
	resource := "root"
	for _, seg := range strings.Split(placeholder.ReplaceAllString(path, ""), "/") {
		if seg != "" {
			resource = strings.ToLower(seg)
		}
	}

	var action string
	switch strings.ToUpper(method) {
	case "GET":
		if strings.Contains(path, "{") {
			action = "read"
		} else {
			action = "list"
		}
	case "POST":
		action = "create"
	case "PUT", "PATCH":
		action = "update"
	case "DELETE":
		action = "delete"
	}

	return m + "_" + resource + "_" + action
}

// NormalizeName lower-cases a candidate name and collapses every run of
// non-alphanumeric characters to a single underscore. Used for the loose
// endpoint-name fallback match in tools/call resolution.
func NormalizeName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// mapType collapses OpenAPI-ish wire types to JSON Schema primitives.
func mapType(t string) string {
	switch t {
	case "integer", "int32", "int64", "float", "double":
		return "number"
	case "byte", "binary", "date", "date-time":
		return "string"
	default:
		return t
	}
}

// hasBody reports whether the method carries a request body.
func hasBody(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// BuildInputSchema derives a tool's inputSchema from an endpoint's declared
// parameters and request-body shape.
func BuildInputSchema(endpoint store.Endpoint) store.Schema {
	properties := make(map[string]store.Property)
	var required []string

	for _, param := range endpoint.Config.Parameters {
		if param.Location == store.LocationBody {
			continue
		}
		properties[param.Name] = paramProperty(param)
		if param.Required {
			required = append(required, param.Name)
		}
	}

	if hasBody(endpoint.Method) {
		bodyParams := 0
		for _, param := range endpoint.Config.Parameters {
			if param.Location != store.LocationBody {
				continue
			}
			bodyParams++
			properties[param.Name] = paramProperty(param)
			if param.Required {
				required = append(required, param.Name)
			}
		}

		if body := endpoint.Config.RequestBody; body != nil {
			if len(body.Properties) > 0 {
				// Deterministic ordering for the required list
				names := make([]string, 0, len(body.Properties))
				for name := range body.Properties {
					names = append(names, name)
				}
				sort.Strings(names)

				for _, name := range names {
					if _, exists := properties[name]; exists {
						continue
					}
					field := body.Properties[name]
					prop := store.Property{
						Type:        mapType(field.Type),
						Description: field.Description,
						Enum:        field.Enum,
						Format:      field.Format,
						Minimum:     field.Minimum,
						Maximum:     field.Maximum,
						Pattern:     field.Pattern,
						Items:       field.Items,
					}
					if field.Default != nil {
						prop.Default = field.Default
					}
					properties[name] = prop
					if field.Required {
						required = append(required, name)
					}
				}
			} else if bodyParams == 0 {
				// Nothing describes the body shape: expose it as one opaque field
				properties["requestBody"] = store.Property{Type: "object"}
				if body.Required {
					required = append(required, "requestBody")
				}
			}
		}
	}

	return store.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// paramProperty converts a declared parameter into a schema property.
func paramProperty(param store.Parameter) store.Property {
	prop := store.Property{
		Type:        mapType(param.Type),
		Description: param.Description,
	}
	if param.Default != nil {
		prop.Default = param.Default
	}
	return prop
}

// BuildToolDescription appends human-readable parameter and body-field
// summaries to an endpoint's description text. Informational only.
func BuildToolDescription(endpoint store.Endpoint) string {
	description := strings.TrimSpace(endpoint.Description)
	if description == "" {
		description = fmt.Sprintf("%s %s", strings.ToUpper(endpoint.Method), endpoint.Path)
	}

	var requiredParams, optionalParams, requiredFields, optionalFields []string
	for _, param := range endpoint.Config.Parameters {
		if param.Location == store.LocationBody {
			if param.Required {
				requiredFields = append(requiredFields, param.Name)
			} else {
				optionalFields = append(optionalFields, param.Name)
			}
			continue
		}
		if param.Required {
			requiredParams = append(requiredParams, param.Name)
		} else {
			optionalParams = append(optionalParams, param.Name)
		}
	}

	if hasBody(endpoint.Method) && endpoint.Config.RequestBody != nil {
		names := make([]string, 0, len(endpoint.Config.RequestBody.Properties))
		for name := range endpoint.Config.RequestBody.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if endpoint.Config.RequestBody.Properties[name].Required {
				requiredFields = append(requiredFields, name)
			} else {
				optionalFields = append(optionalFields, name)
			}
		}
	}

	var b strings.Builder
	b.WriteString(description)
	if len(requiredParams) > 0 {
		fmt.Fprintf(&b, " Required parameters: %s.", strings.Join(requiredParams, ", "))
	}
	if len(optionalParams) > 0 {
		fmt.Fprintf(&b, " Optional parameters: %s.", strings.Join(optionalParams, ", "))
	}
	if len(requiredFields) > 0 {
		fmt.Fprintf(&b, " Required body fields: %s.", strings.Join(requiredFields, ", "))
	}
	if len(optionalFields) > 0 {
		fmt.Fprintf(&b, " Optional body fields: %s.", strings.Join(optionalFields, ", "))
	}
	return b.String()
}

// DeriveTool builds the MCP tool that represents an endpoint.
func DeriveTool(endpoint store.Endpoint) store.McpTool {
	return store.McpTool{
		Name:        ToolName(endpoint.Method, endpoint.Path),
		Description: BuildToolDescription(endpoint),
		InputSchema: BuildInputSchema(endpoint),
		EndpointID:  endpoint.ID,
	}
}
