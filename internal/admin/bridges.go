// ABOUTME: Admin API handlers for bridge CRUD
// ABOUTME: Validates bridge definitions before they reach the store

package admin

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/restbridge/bridge-gateway/internal/store"
	"github.com/restbridge/bridge-gateway/internal/toolgen"
)

// handleListBridges returns every bridge.
func (s *Server) handleListBridges(w http.ResponseWriter, r *http.Request) {
	bridges, err := s.store.ListBridges(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	if bridges == nil {
		bridges = []*store.Bridge{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"bridges": bridges})
}

// handleGetBridge returns one bridge by id.
func (s *Server) handleGetBridge(w http.ResponseWriter, r *http.Request) {
	bridge, err := s.store.GetBridge(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, bridge)
}

// handleCreateBridge validates and stores a new bridge.
func (s *Server) handleCreateBridge(w http.ResponseWriter, r *http.Request) {
	var bridge store.Bridge
	if !s.readJSON(w, r, &bridge) {
		return
	}

	if err := validateBridge(&bridge); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if bridge.ID == "" {
		bridge.ID = uuid.NewString()
	}
	if bridge.Slug == "" {
		bridge.Slug = toolgen.NormalizeName(bridge.Name)
	}
	ensureEndpointIDs(&bridge)
	bridge.CreatedAt = time.Now().UTC()
	bridge.UpdatedAt = bridge.CreatedAt

	if err := s.store.CreateBridge(r.Context(), &bridge); err != nil {
		s.storeError(w, err)
		return
	}

	s.logger.Info("bridge created", "bridge_id", bridge.ID, "slug", bridge.Slug)
	s.writeJSON(w, http.StatusCreated, &bridge)
}

// handleUpdateBridge replaces an existing bridge definition.
func (s *Server) handleUpdateBridge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := s.store.GetBridge(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	var bridge store.Bridge
	if !s.readJSON(w, r, &bridge) {
		return
	}

	if err := validateBridge(&bridge); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bridge.ID = id
	if bridge.Slug == "" {
		bridge.Slug = existing.Slug
	}
	ensureEndpointIDs(&bridge)
	bridge.CreatedAt = existing.CreatedAt
	bridge.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBridge(r.Context(), &bridge); err != nil {
		s.storeError(w, err)
		return
	}

	s.logger.Info("bridge updated", "bridge_id", id)
	s.writeJSON(w, http.StatusOK, &bridge)
}

// handleDeleteBridge removes a bridge and everything scoped to it.
func (s *Server) handleDeleteBridge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteBridge(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	s.logger.Info("bridge deleted", "bridge_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleListLogs returns recent event logs for a bridge, newest first.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := s.store.ListLogs(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if entries == nil {
		entries = []*store.LogEntry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// validateBridge checks the fields every stored bridge must carry.
func validateBridge(bridge *store.Bridge) error {
	if bridge.Name == "" {
		return fmt.Errorf("name is required")
	}
	if bridge.BaseURL == "" {
		return fmt.Errorf("baseUrl is required")
	}
	parsed, err := url.Parse(bridge.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("baseUrl must be an absolute URL")
	}
	if bridge.Slug != "" && !toolgen.IsValidName(bridge.Slug) {
		return fmt.Errorf("slug must be lowercase alphanumeric with underscores")
	}

	for i, endpoint := range bridge.Endpoints {
		if endpoint.Method == "" || endpoint.Path == "" {
			return fmt.Errorf("endpoint %d: method and path are required", i)
		}
	}

	switch bridge.Auth.Type {
	case "", store.AuthNone:
	case store.AuthBearer:
		if bridge.Auth.Token == "" {
			return fmt.Errorf("auth.token is required for bearer auth")
		}
	case store.AuthAPIKey:
		if bridge.Auth.APIKey == "" {
			return fmt.Errorf("auth.apiKey is required for apikey auth")
		}
	case store.AuthBasic:
		if bridge.Auth.Username == "" {
			return fmt.Errorf("auth.username is required for basic auth")
		}
	default:
		return fmt.Errorf("unknown auth type: %s", bridge.Auth.Type)
	}

	return nil
}

// ensureEndpointIDs assigns ids to endpoints that arrived without one so
// explicit tools can reference them.
func ensureEndpointIDs(bridge *store.Bridge) {
	for i := range bridge.Endpoints {
		if bridge.Endpoints[i].ID == "" {
			bridge.Endpoints[i].ID = uuid.NewString()
		}
	}
}
