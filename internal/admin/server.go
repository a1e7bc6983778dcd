// ABOUTME: HTTP admin API for managing bridges, access tokens, and logs
// ABOUTME: JSON REST surface guarded by JWT bearer authentication

package admin

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/restbridge/bridge-gateway/internal/auth"
	"github.com/restbridge/bridge-gateway/internal/store"
)

// MaxBodySize caps admin request bodies (1MB).
const MaxBodySize = 1 << 20

// Config holds configuration for the admin API server.
type Config struct {
	Store    store.AdminStore
	Verifier auth.TokenVerifier
	Logger   *slog.Logger
}

// Server exposes the bridge management API under /api/.
type Server struct {
	store    store.AdminStore
	verifier auth.TokenVerifier
	logger   *slog.Logger
}

// NewServer creates an admin API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("admin store is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:    cfg.Store,
		verifier: cfg.Verifier,
		logger:   logger.With("component", "admin"),
	}, nil
}

// RegisterRoutes mounts the admin API on the given mux behind JWT auth.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	guard := auth.Middleware(s.verifier)

	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, guard(fn))
	}

	handle("GET /api/bridges", s.handleListBridges)
	handle("POST /api/bridges", s.handleCreateBridge)
	handle("GET /api/bridges/{id}", s.handleGetBridge)
	handle("PUT /api/bridges/{id}", s.handleUpdateBridge)
	handle("DELETE /api/bridges/{id}", s.handleDeleteBridge)
	handle("GET /api/bridges/{id}/docs", s.handleBridgeDocs)
	handle("GET /api/bridges/{id}/logs", s.handleListLogs)
	handle("GET /api/bridges/{id}/tokens", s.handleListTokens)
	handle("POST /api/bridges/{id}/tokens", s.handleCreateToken)
	handle("DELETE /api/tokens/{id}", s.handleRevokeToken)
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error body with the given status.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into dst, enforcing the size cap.
// An empty body leaves dst at its zero value.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// storeError maps store sentinel errors onto HTTP statuses.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateSlug):
		s.writeError(w, http.StatusConflict, "slug already in use")
	default:
		s.logger.Error("store operation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
