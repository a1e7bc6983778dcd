// ABOUTME: MCP gateway endpoint receiving JSON-RPC calls for a bridge
// ABOUTME: Runs the resolve/parse/authenticate/route pipeline and always answers in JSON-RPC shape

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/restbridge/bridge-gateway/internal/access"
	"github.com/restbridge/bridge-gateway/internal/invoke"
	"github.com/restbridge/bridge-gateway/internal/seen"
	"github.com/restbridge/bridge-gateway/internal/store"
)

// protocolVersion is the MCP protocol version advertised in initialize responses.
const protocolVersion = "2024-11-05"

// serverVersion is the static serverInfo version string.
const serverVersion = "1.0.0"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes, plus the gateway's unauthorized extension.
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
	JSONRPCUnauthorized   = -32401
)

// Config holds configuration for the gateway server.
type Config struct {
	Bridges  store.BridgeStore
	Logs     store.LogStore
	Guard    *access.Guard
	Caller   *invoke.Caller
	Logger   *slog.Logger
	Verified *seen.Cache // optional; created with defaults when nil
}

// Server is the MCP gateway endpoint. One instance serves every bridge;
// requests are keyed by bridge id or slug in the URL path.
type Server struct {
	bridges  store.BridgeStore
	logs     store.LogStore
	guard    *access.Guard
	caller   *invoke.Caller
	logger   *slog.Logger
	verified *seen.Cache
}

// NewServer creates a gateway server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Bridges == nil {
		return nil, errors.New("bridge store is required")
	}
	if cfg.Logs == nil {
		return nil, errors.New("log store is required")
	}
	if cfg.Guard == nil {
		return nil, errors.New("access guard is required")
	}
	if cfg.Caller == nil {
		return nil, errors.New("caller is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	verified := cfg.Verified
	if verified == nil {
		verified = seen.New(10*time.Minute, 1024)
	}

	return &Server{
		bridges:  cfg.Bridges,
		logs:     cfg.Logs,
		guard:    cfg.Guard,
		caller:   cfg.Caller,
		logger:   logger.With("component", "mcp"),
		verified: verified,
	}, nil
}

// RegisterRoutes registers the gateway endpoint on the given ServeMux.
// Bridges are addressed as /mcp/<id-or-slug>.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp/", s.handleMCP)
}

// handleMCP answers POST with the JSON-RPC pipeline and OPTIONS with the
// CORS preflight response.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodOptions:
		s.handleOptions(w)
	default:
		setCORSHeaders(w)
		w.Header().Set("Allow", "POST, OPTIONS")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleOptions answers CORS preflight directly.
func (s *Server) handleOptions(w http.ResponseWriter) {
	setCORSHeaders(w)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
	w.WriteHeader(http.StatusNoContent)
}

// dispatchState enumerates the pipeline stages. Every stage either advances
// to the next state or produces a terminal JSON-RPC response.
type dispatchState int

const (
	stateResolveBridge dispatchState = iota
	stateParseEnvelope
	stateAuthenticate
	stateRoute
	stateResponded
)

// dispatch carries one request through the pipeline.
type dispatch struct {
	srv    *Server
	r      *http.Request
	ref    string // bridge id or slug from the URL path
	bridge *store.Bridge
	req    JSONRPCRequest

	resp       *JSONRPCResponse
	httpStatus int
	authHint   bool // set WWW-Authenticate on the response
}

// handlePost runs the dispatch pipeline. The deferred recover is the
// outermost boundary: no failure may escape unmapped.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	d := &dispatch{
		srv:        s,
		r:          r,
		ref:        strings.Trim(strings.TrimPrefix(r.URL.Path, "/mcp/"), "/"),
		httpStatus: http.StatusOK,
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic in dispatch", "panic", rec, "bridge_ref", d.ref)
			d.internalError(fmt.Errorf("internal error: %v", rec))
			d.write(w)
		}
	}()

	for state := stateResolveBridge; state != stateResponded; {
		switch state {
		case stateResolveBridge:
			state = d.resolveBridge()
		case stateParseEnvelope:
			state = d.parseEnvelope()
		case stateAuthenticate:
			state = d.authenticate()
		case stateRoute:
			state = d.route()
		}
	}

	d.write(w)
}

// resolveBridge looks the bridge up by primary id when the reference has a
// UUID-v4 shape, falling back to the slug alias. Both paths filter
// enabled=true at the query level.
func (d *dispatch) resolveBridge() dispatchState {
	ctx := d.r.Context()

	var bridge *store.Bridge
	var err error

	if isUUID(d.ref) {
		bridge, err = d.srv.bridges.GetEnabledBridge(ctx, d.ref)
		if err != nil && errors.Is(err, store.ErrNotFound) {
			bridge, err = d.srv.bridges.GetEnabledBridgeBySlug(ctx, d.ref)
		}
	} else {
		bridge, err = d.srv.bridges.GetEnabledBridgeBySlug(ctx, d.ref)
	}

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			d.fail(JSONRPCInvalidParams, fmt.Sprintf("Bridge not found or disabled: %s", d.ref), nil)
			return stateResponded
		}
		d.internalError(fmt.Errorf("resolving bridge: %w", err))
		return stateResponded
	}

	d.bridge = bridge
	return stateParseEnvelope
}

// parseEnvelope reads and validates the JSON-RPC envelope.
func (d *dispatch) parseEnvelope() dispatchState {
	body, err := io.ReadAll(io.LimitReader(d.r.Body, MaxRequestBodySize+1))
	if err != nil {
		d.fail(JSONRPCParseError, "failed to read request body", nil)
		return stateResponded
	}
	if int64(len(body)) > MaxRequestBodySize {
		d.fail(JSONRPCInvalidRequest, "request body too large", nil)
		return stateResponded
	}

	if err := json.Unmarshal(body, &d.req); err != nil {
		d.fail(JSONRPCParseError, "invalid JSON", nil)
		return stateResponded
	}
	if d.req.JSONRPC != "2.0" {
		d.fail(JSONRPCInvalidRequest, "invalid JSON-RPC version", nil)
		return stateResponded
	}

	return stateAuthenticate
}

// authenticate runs the access control guard. Guard datastore failures
// escalate to internal errors, never to rejections.
func (d *dispatch) authenticate() dispatchState {
	decision := d.srv.guard.Authorize(d.r.Context(), d.bridge, d.r)
	switch decision.Status {
	case access.StatusAuthenticated:
		return stateRoute
	case access.StatusError:
		d.srv.logger.Error("auth check failed", "bridge_id", d.bridge.ID, "error", decision.Err)
		d.internalError(fmt.Errorf("authentication check failed: %w", decision.Err))
		d.httpStatus = http.StatusInternalServerError
		return stateResponded
	default:
		d.fail(JSONRPCUnauthorized, decision.Reason, nil)
		d.httpStatus = http.StatusUnauthorized
		d.authHint = true
		return stateResponded
	}
}

// route validates params per method and invokes the protocol handler.
func (d *dispatch) route() dispatchState {
	ctx := d.r.Context()

	d.srv.logger.Debug("MCP request",
		"bridge_id", d.bridge.ID,
		"method", d.req.Method,
	)

	switch d.req.Method {
	case "initialize":
		d.handleInitialize()
	case "tools/list":
		d.handleToolsList()
	case "tools/call":
		var params callToolParams
		if !d.parseParams(&params) {
			return stateResponded
		}
		d.handleToolsCall(ctx, params)
	case "resources/list":
		d.handleResourcesList(ctx)
	case "resources/read":
		var params readResourceParams
		if !d.parseParams(&params) {
			return stateResponded
		}
		d.handleResourcesRead(ctx, params)
	case "prompts/list":
		d.handlePromptsList(ctx)
	case "prompts/get":
		var params getPromptParams
		if !d.parseParams(&params) {
			return stateResponded
		}
		d.handlePromptsGet(ctx, params)
	default:
		d.fail(JSONRPCMethodNotFound, fmt.Sprintf("Method not found: %s", d.req.Method), nil)
	}

	return stateResponded
}

// parseParams decodes the request params into the method's typed shape.
func (d *dispatch) parseParams(dst any) bool {
	if len(d.req.Params) == 0 {
		return true
	}
	if err := json.Unmarshal(d.req.Params, dst); err != nil {
		d.fail(JSONRPCInvalidParams, "invalid params", nil)
		return false
	}
	return true
}

// succeed records a successful result.
func (d *dispatch) succeed(result any) {
	d.resp = &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      d.req.ID,
		Result:  result,
	}
}

// fail records a JSON-RPC error response. The id echoes the request when
// the envelope was parsed and is null otherwise.
func (d *dispatch) fail(code int, message string, data any) {
	d.resp = &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      d.req.ID,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// internalError records an INTERNAL_ERROR response carrying the bridge id
// and a timestamp, and logs the failure.
func (d *dispatch) internalError(err error) {
	bridgeID := ""
	if d.bridge != nil {
		bridgeID = d.bridge.ID
	}
	data := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if bridgeID != "" {
		data["bridgeId"] = bridgeID
	}

	d.srv.logger.Error("request failed",
		"bridge_id", bridgeID,
		"method", d.req.Method,
		"url", d.r.URL.Path,
		"error", err,
	)
	if bridgeID != "" {
		d.srv.logEvent(bridgeID, store.LogLevelError, "request failed", map[string]any{
			"method": d.req.Method,
			"error":  err.Error(),
		})
	}

	d.fail(JSONRPCInternalError, err.Error(), data)
}

// write emits the terminal response with CORS headers.
func (d *dispatch) write(w http.ResponseWriter) {
	if d.resp == nil {
		// Defensive: every pipeline path should have produced a response.
		d.fail(JSONRPCInternalError, "no response produced", nil)
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	if d.authHint {
		w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
	}
	w.WriteHeader(d.httpStatus)
	if err := json.NewEncoder(w).Encode(d.resp); err != nil {
		d.srv.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// logEvent writes a bridge event log, existence-checked through the
// verified cache so unknown ids never error the log path. Fire and forget.
func (s *Server) logEvent(bridgeID, level, message string, metadata map[string]any) {
	// Detached from the request context: log writes are best effort and
	// survive client disconnects.
	ctx := context.Background()

	if !s.verified.Check(bridgeID) {
		exists, err := s.bridges.BridgeExists(ctx, bridgeID)
		if err != nil || !exists {
			s.logger.Debug("skipping event log for unverified bridge",
				"bridge_id", bridgeID, "error", err)
			return
		}
		s.verified.Mark(bridgeID)
	}

	entry := &store.LogEntry{
		BridgeID: bridgeID,
		Level:    level,
		Message:  message,
		Metadata: metadata,
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		s.logger.Warn("failed to append bridge log", "bridge_id", bridgeID, "error", err)
	}
}

// setCORSHeaders applies the permissive CORS policy every gateway
// response carries.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// isUUID reports whether ref has a UUID-v4 shape.
func isUUID(ref string) bool {
	parsed, err := uuid.Parse(ref)
	return err == nil && parsed.Version() == 4
}
