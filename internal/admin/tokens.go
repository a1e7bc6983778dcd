// ABOUTME: Admin API handlers for bridge access token management
// ABOUTME: Issues opaque bearer credentials scoped to a single bridge

package admin

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/restbridge/bridge-gateway/internal/store"
)

// tokenPrefix marks gateway-issued access tokens.
const tokenPrefix = "bgt_"

// maxTokenTTLDays caps requested token lifetimes.
const maxTokenTTLDays = 365

// createTokenRequest is the body for POST /api/bridges/{id}/tokens.
type createTokenRequest struct {
	Name          string `json:"name"`
	ExpiresInDays int    `json:"expiresInDays,omitempty"`
}

// handleCreateToken issues a new access token for a bridge. The opaque
// token value is returned once, in this response only.
func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	bridgeID := r.PathValue("id")

	if _, err := s.store.GetBridge(r.Context(), bridgeID); err != nil {
		s.storeError(w, err)
		return
	}

	var req createTokenRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	if req.ExpiresInDays < 0 || req.ExpiresInDays > maxTokenTTLDays {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("expiresInDays must be between 0 and %d", maxTokenTTLDays))
		return
	}

	value, err := generateTokenValue()
	if err != nil {
		s.logger.Error("failed to generate token", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token := &store.AccessToken{
		ID:        uuid.NewString(),
		BridgeID:  bridgeID,
		Name:      req.Name,
		Token:     value,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if req.ExpiresInDays > 0 {
		expiresAt := time.Now().UTC().AddDate(0, 0, req.ExpiresInDays)
		token.ExpiresAt = &expiresAt
	}

	if err := s.store.CreateAccessToken(r.Context(), token); err != nil {
		s.storeError(w, err)
		return
	}

	s.logger.Info("access token created", "bridge_id", bridgeID, "token_id", token.ID)
	s.writeJSON(w, http.StatusCreated, token)
}

// handleListTokens returns a bridge's tokens with the secret value redacted.
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	bridgeID := r.PathValue("id")

	if _, err := s.store.GetBridge(r.Context(), bridgeID); err != nil {
		s.storeError(w, err)
		return
	}

	tokens, err := s.store.ListAccessTokens(r.Context(), bridgeID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	redacted := make([]*store.AccessToken, 0, len(tokens))
	for _, token := range tokens {
		copied := *token
		copied.Token = redactToken(copied.Token)
		redacted = append(redacted, &copied)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tokens": redacted})
}

// handleRevokeToken marks a token inactive. Revocation is permanent.
func (s *Server) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.RevokeAccessToken(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	s.logger.Info("access token revoked", "token_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// generateTokenValue produces a 32-byte random token in hex.
func generateTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	return tokenPrefix + hex.EncodeToString(buf), nil
}

// redactToken keeps just enough of the value to identify it in a list.
func redactToken(value string) string {
	if len(value) <= 12 {
		return "****"
	}
	return value[:12] + "..."
}
