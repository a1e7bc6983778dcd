// ABOUTME: Per-bridge access control guard evaluated before any protocol handler
// ABOUTME: Runs an ordered list of authentication strategies with short-circuit priority

package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/restbridge/bridge-gateway/internal/store"
)

// Status is the outcome of evaluating one strategy or the whole guard.
type Status int

const (
	// StatusAuthenticated means the caller may proceed.
	StatusAuthenticated Status = iota
	// StatusRejected is an authentication failure attributable to the caller.
	StatusRejected
	// StatusError is a datastore failure during authentication. Escalated to
	// an internal error, never treated as a rejection.
	StatusError
	// statusSkipped means the strategy had nothing to say about this caller.
	statusSkipped
)

// Decision is the guard's verdict for one request.
type Decision struct {
	Status Status
	Reason string // rejection message surfaced to the caller
	Err    error  // underlying error for StatusError
}

// ExtractToken pulls a candidate access token from the request headers,
// in priority order: "Authorization: Bearer", "Authorization: ApiKey",
// then "X-API-Key".
func ExtractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token, true
		}
	}
	if strings.HasPrefix(authHeader, "ApiKey ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "ApiKey ")); token != "" {
			return token, true
		}
	}
	if token := r.Header.Get("X-API-Key"); token != "" {
		return token, true
	}
	return "", false
}

// strategy checks one authentication mechanism for a candidate token.
type strategy func(ctx context.Context, bridge *store.Bridge, token string) Decision

// Guard evaluates a bridge's access policy against incoming credentials.
type Guard struct {
	tokens store.TokenStore
	logs   store.LogStore
	logger *slog.Logger
}

// NewGuard creates a Guard backed by the given token store and log sink.
func NewGuard(tokens store.TokenStore, logs store.LogStore, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		tokens: tokens,
		logs:   logs,
		logger: logger.With("component", "access"),
	}
}

// Authorize evaluates the bridge's access policy for the request.
// When the bridge doesn't require auth the guard is a no-op.
func (g *Guard) Authorize(ctx context.Context, bridge *store.Bridge, r *http.Request) Decision {
	if !bridge.Access.AuthRequired {
		return Decision{Status: StatusAuthenticated}
	}

	token, ok := ExtractToken(r)
	if !ok {
		g.logAttempt(ctx, bridge.ID, false, "no token provided")
		return Decision{Status: StatusRejected, Reason: "Missing access token"}
	}

	// Fixed priority order: the legacy single shared key first, the token
	// store second. The first Authenticated or Error outcome wins.
	strategies := []strategy{
		g.legacyKeyStrategy,
		g.tokenStoreStrategy,
	}

	legacyMatched := false
	for i, check := range strategies {
		decision := check(ctx, bridge, token)
		switch decision.Status {
		case StatusAuthenticated:
			if i == 0 {
				// The legacy key always wins, but the token-store lookup still
				// runs for its lastUsedAt and logging side effects. Lookup
				// failures here are logged, not escalated: the caller is
				// already authenticated.
				legacyMatched = true
				continue
			}
			return decision
		case StatusError:
			if legacyMatched {
				g.logger.Warn("token store lookup failed after legacy key match",
					"bridge_id", bridge.ID, "error", decision.Err)
				return Decision{Status: StatusAuthenticated}
			}
			return decision
		case StatusRejected:
			if legacyMatched {
				return Decision{Status: StatusAuthenticated}
			}
			if i == len(strategies)-1 {
				return decision
			}
		}
	}

	if legacyMatched {
		return Decision{Status: StatusAuthenticated}
	}

	// Defensive double-check: nothing authenticated the caller and nothing
	// rejected it either.
	return Decision{Status: StatusRejected, Reason: "Invalid authentication"}
}

// legacyKeyStrategy compares the candidate against the bridge's legacy
// single accessConfig apiKey.
func (g *Guard) legacyKeyStrategy(ctx context.Context, bridge *store.Bridge, token string) Decision {
	if bridge.Access.APIKey == "" || bridge.Access.APIKey != token {
		return Decision{Status: statusSkipped}
	}
	g.logAttempt(ctx, bridge.ID, true, "legacy api key")
	return Decision{Status: StatusAuthenticated}
}

// tokenStoreStrategy looks the candidate up in the access token store.
// The active and expiry filters are applied at the query level.
func (g *Guard) tokenStoreStrategy(ctx context.Context, bridge *store.Bridge, token string) Decision {
	row, err := g.tokens.FindActiveToken(ctx, bridge.ID, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.logAttempt(ctx, bridge.ID, false, "invalid or expired token")
			return Decision{Status: StatusRejected, Reason: "Invalid or expired access token"}
		}
		return Decision{Status: StatusError, Err: err}
	}

	// Best effort: the authentication decision doesn't depend on this write.
	if err := g.tokens.TouchToken(ctx, row.ID, time.Now().UTC()); err != nil {
		g.logger.Warn("failed to update token last_used_at", "token_id", row.ID, "error", err)
	}

	g.logAttempt(ctx, bridge.ID, true, "access token")
	return Decision{Status: StatusAuthenticated}
}

// logAttempt records an authentication attempt in the bridge event log.
// Fire and forget: sink failures degrade to process logs.
func (g *Guard) logAttempt(ctx context.Context, bridgeID string, success bool, detail string) {
	level := store.LogLevelWarn
	message := "authentication failed"
	if success {
		level = store.LogLevelInfo
		message = "authentication succeeded"
	}

	entry := &store.LogEntry{
		BridgeID: bridgeID,
		Level:    level,
		Message:  message,
		Metadata: map[string]any{"detail": detail},
	}
	if err := g.logs.AppendLog(ctx, entry); err != nil {
		g.logger.Warn("failed to record auth attempt", "bridge_id", bridgeID, "error", err)
	}
}
