// ABOUTME: Compiles a bridge endpoint definition plus call arguments into an outbound HTTP request
// ABOUTME: Handles path substitution, query assembly, upstream auth, and body construction

package invoke

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/restbridge/bridge-gateway/internal/store"
)

// ErrMissingEndpoint is returned when the endpoint or its path is not configured.
var ErrMissingEndpoint = errors.New("endpoint configuration is missing")

// AuthError indicates the bridge's outbound auth config is missing a
// required credential. Distinct from upstream HTTP failures.
type AuthError struct {
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication configuration error: %v", e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// Request is a fully-resolved outbound HTTP request.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte // nil means no body
}

// Compile resolves an endpoint definition and a map of call arguments into
// a concrete outbound request against the bridge's base URL.
func Compile(bridge *store.Bridge, endpoint *store.Endpoint, args map[string]any) (*Request, error) {
	if endpoint == nil || endpoint.Path == "" {
		return nil, ErrMissingEndpoint
	}
	if args == nil {
		args = map[string]any{}
	}

	target := endpoint.Path
	var query []string

	for _, param := range endpoint.Config.Parameters {
		value, present := args[param.Name]
		if !present {
			if param.Required {
				return nil, fmt.Errorf("required parameter '%s' is missing", param.Name)
			}
			continue
		}

		switch param.Location {
		case store.LocationPath:
			token := ":" + param.Name
			if param.Style == store.StyleReplacement {
				token = "{" + param.Name + "}"
			}
			target = strings.ReplaceAll(target, token, url.PathEscape(stringify(value)))
		case store.LocationQuery:
			query = append(query, url.QueryEscape(param.Name)+"="+url.QueryEscape(stringify(value)))
		}
		// Body parameters are handled after auth and URL assembly.
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	query, err := applyAuth(bridge.Auth, headers, query)
	if err != nil {
		return nil, err
	}

	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + strings.Join(query, "&")
	}

	base := bridge.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	absolute := base + strings.TrimPrefix(target, "/")

	// Static bridge headers go last and may overwrite auth or content-type
	// headers. Bridge configs rely on this to mix schemes.
	for key, value := range bridge.Headers {
		headers[key] = value
	}

	body, err := buildBody(endpoint, args)
	if err != nil {
		return nil, err
	}

	return &Request{
		URL:     absolute,
		Method:  strings.ToUpper(endpoint.Method),
		Headers: headers,
		Body:    body,
	}, nil
}

// applyAuth sets the outbound auth header (or query parameter) for the
// bridge's configured scheme, returning the updated query accumulator.
func applyAuth(auth store.AuthConfig, headers map[string]string, query []string) ([]string, error) {
	switch auth.Type {
	case store.AuthBearer:
		token := strings.TrimSpace(auth.Token)
		if token == "" {
			return nil, &AuthError{Cause: errors.New("bearer token is not configured")}
		}
		headers["Authorization"] = "Bearer " + token

	case store.AuthAPIKey:
		key := strings.TrimSpace(auth.APIKey)
		if key == "" {
			return nil, &AuthError{Cause: errors.New("api key is not configured")}
		}
		if auth.KeyLocation == store.KeyLocationQuery {
			name := auth.ParamName
			if name == "" {
				name = auth.HeaderName
			}
			if name == "" {
				name = "api_key"
			}
			query = append(query, url.QueryEscape(name)+"="+url.QueryEscape(key))
		} else {
			name := auth.HeaderName
			if name == "" {
				name = "X-API-Key"
			}
			headers[name] = key
		}

	case store.AuthBasic:
		if auth.Username == "" || auth.Password == "" {
			return nil, &AuthError{Cause: errors.New("basic auth username and password are required")}
		}
		credentials := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
		headers["Authorization"] = "Basic " + credentials
	}

	return query, nil
}

// buildBody assembles the JSON request body for body-carrying methods.
// Returns nil when the method has no body or nothing was collected.
func buildBody(endpoint *store.Endpoint, args map[string]any) ([]byte, error) {
	switch strings.ToUpper(endpoint.Method) {
	case "POST", "PUT", "PATCH":
	default:
		return nil, nil
	}

	fields := make(map[string]any)
	for _, param := range endpoint.Config.Parameters {
		if param.Location != store.LocationBody {
			continue
		}
		if value, present := args[param.Name]; present {
			fields[param.Name] = value
		}
	}

	schema := endpoint.Config.RequestBody
	if schema != nil {
		if len(schema.Properties) == 0 {
			// No declared shape: a raw requestBody argument is passed through
			// verbatim as the entire body.
			if raw, present := args["requestBody"]; present {
				body, err := json.Marshal(raw)
				if err != nil {
					return nil, fmt.Errorf("encoding request body: %w", err)
				}
				return body, nil
			}
		} else {
			for name := range schema.Properties {
				if _, set := fields[name]; set {
					continue
				}
				if value, present := args[name]; present {
					fields[name] = value
				}
			}
		}
	}

	if len(fields) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return body, nil
}

// stringify renders an argument value for URL placement. JSON numbers decode
// as float64, so integers must not pick up an exponent or trailing zeros.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
