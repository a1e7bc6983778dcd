// ABOUTME: Store interface and data types for bridge-gateway persistence
// ABOUTME: Defines Bridge, Endpoint, AccessToken structs and the Store interfaces

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateSlug is returned when creating a bridge with a slug that is already taken
var ErrDuplicateSlug = errors.New("slug already in use")

// Auth scheme constants for outbound API authentication
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthAPIKey = "apikey"
	AuthBasic  = "basic"
)

// Key placement constants for apikey auth
const (
	KeyLocationHeader = "header"
	KeyLocationQuery  = "query"
)

// Parameter location constants
const (
	LocationPath  = "path"
	LocationQuery = "query"
	LocationBody  = "body"
)

// Parameter substitution styles. StyleParameter substitutes ":name" tokens,
// StyleReplacement substitutes "{name}" tokens.
const (
	StyleParameter   = "parameter"
	StyleReplacement = "replacement"
)

// Bridge maps one REST API onto an MCP tool surface.
type Bridge struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Enabled     bool              `json:"enabled"`
	BaseURL     string            `json:"baseUrl"`
	Auth        AuthConfig        `json:"authConfig"`
	Headers     map[string]string `json:"headers,omitempty"`
	Endpoints   []Endpoint        `json:"endpoints,omitempty"`
	Tools       []McpTool         `json:"mcpTools,omitempty"`
	Resources   []McpResource     `json:"mcpResources,omitempty"`
	Prompts     []McpPrompt       `json:"mcpPrompts,omitempty"`
	Access      AccessConfig      `json:"accessConfig"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// AuthConfig describes how the gateway authenticates against the upstream API.
// Type selects the scheme; the remaining fields are scheme-specific secrets.
type AuthConfig struct {
	Type        string `json:"type"`
	Token       string `json:"token,omitempty"`
	APIKey      string `json:"apiKey,omitempty"`
	KeyLocation string `json:"keyLocation,omitempty"`
	ParamName   string `json:"paramName,omitempty"`
	HeaderName  string `json:"headerName,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
}

// AccessConfig is the inbound access policy of a bridge.
// APIKey is a legacy single shared secret checked before the token store.
type AccessConfig struct {
	AuthRequired bool   `json:"authRequired"`
	APIKey       string `json:"apiKey,omitempty"`
}

// Endpoint is one declared REST operation within a bridge.
type Endpoint struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Description string         `json:"description,omitempty"`
	Config      EndpointConfig `json:"config"`
}

// EndpointConfig holds the declarative request/response shape of an endpoint.
type EndpointConfig struct {
	Parameters     []Parameter     `json:"parameters,omitempty"`
	RequestBody    *BodySchema     `json:"requestBody,omitempty"`
	ResponseSchema json.RawMessage `json:"responseSchema,omitempty"`
	// TimeoutMs is a per-endpoint hint for the outbound call deadline.
	TimeoutMs int `json:"timeout,omitempty"`
}

// Parameter declares a single endpoint parameter and where it is placed
// in the outbound request.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"defaultValue,omitempty"`
	Location    string `json:"location"`
	Style       string `json:"style,omitempty"`
}

// BodySchema is a simplified JSON-Schema shape for a request body.
type BodySchema struct {
	Type       string              `json:"type,omitempty"`
	Required   bool                `json:"required,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
}

// Property is a single schema property. Only the JSON Schema keywords the
// dashboard can author are carried through.
type Property struct {
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Default     any             `json:"default,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
	Format      string          `json:"format,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty"`
	Pattern     string          `json:"pattern,omitempty"`
	Items       json.RawMessage `json:"items,omitempty"`
	Required    bool            `json:"required,omitempty"`
}

// Schema is the inputSchema of an MCP tool.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// McpTool is a callable unit exposed via MCP, either authored explicitly
// or derived 1:1 from an endpoint.
type McpTool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema Schema `json:"inputSchema"`
	EndpointID  string `json:"endpointId,omitempty"`
}

// McpResource is a URI-addressable piece of readable content.
type McpResource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// McpPrompt is a named, parameterized text template.
type McpPrompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptArgument declares one argument of a prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// AccessToken is a bridge-scoped inbound credential. Distinct from the
// upstream API's own authentication.
type AccessToken struct {
	ID         string     `json:"id"`
	BridgeID   string     `json:"bridgeId"`
	Name       string     `json:"name,omitempty"`
	Token      string     `json:"token"`
	IsActive   bool       `json:"isActive"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Log levels for bridge event logs
const (
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogEntry is one structured bridge event log record.
type LogEntry struct {
	ID        string         `json:"id"`
	BridgeID  string         `json:"bridgeId"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// BridgeStore is the read surface the gateway dispatcher consumes.
type BridgeStore interface {
	// GetEnabledBridge fetches a bridge by primary id, filtering enabled=true
	// at the query level. Returns ErrNotFound for unknown or disabled bridges.
	GetEnabledBridge(ctx context.Context, id string) (*Bridge, error)
	// GetEnabledBridgeBySlug is the alias lookup path, same enabled filter.
	GetEnabledBridgeBySlug(ctx context.Context, slug string) (*Bridge, error)
	// BridgeExists reports whether a bridge row exists regardless of enabled state.
	BridgeExists(ctx context.Context, id string) (bool, error)
	// GetBridgeResources lazily fetches just the resources blob of a bridge.
	GetBridgeResources(ctx context.Context, bridgeID string) ([]McpResource, error)
	// GetBridgePrompts lazily fetches just the prompts blob of a bridge.
	GetBridgePrompts(ctx context.Context, bridgeID string) ([]McpPrompt, error)
}

// TokenStore is the access-token surface the gateway guard consumes.
type TokenStore interface {
	// FindActiveToken looks up a token scoped to a bridge, filtering
	// isActive=true and unexpired at the query level.
	FindActiveToken(ctx context.Context, bridgeID, token string) (*AccessToken, error)
	// TouchToken updates a token's lastUsedAt. Best effort.
	TouchToken(ctx context.Context, id string, when time.Time) error
}

// LogStore is the fire-and-forget event log sink. AppendLog must tolerate
// bridge ids that do not exist in storage.
type LogStore interface {
	AppendLog(ctx context.Context, entry *LogEntry) error
}

// AdminStore is the management surface behind the dashboard API.
type AdminStore interface {
	CreateBridge(ctx context.Context, bridge *Bridge) error
	GetBridge(ctx context.Context, id string) (*Bridge, error)
	ListBridges(ctx context.Context) ([]*Bridge, error)
	UpdateBridge(ctx context.Context, bridge *Bridge) error
	DeleteBridge(ctx context.Context, id string) error

	CreateAccessToken(ctx context.Context, token *AccessToken) error
	ListAccessTokens(ctx context.Context, bridgeID string) ([]*AccessToken, error)
	RevokeAccessToken(ctx context.Context, id string) error

	ListLogs(ctx context.Context, bridgeID string, limit int) ([]*LogEntry, error)
}

// Store is the full persistence interface.
type Store interface {
	BridgeStore
	TokenStore
	LogStore
	AdminStore

	// Close releases any resources held by the store
	Close() error
}
