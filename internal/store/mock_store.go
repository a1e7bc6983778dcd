// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows gateway and admin tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	bridges map[string]*Bridge      // keyed by bridge ID
	slugs   map[string]string       // keyed by slug -> bridge ID
	tokens  map[string]*AccessToken // keyed by token ID
	logs    map[string][]*LogEntry  // keyed by bridge ID

	// TokenErr, when set, is returned by FindActiveToken to simulate
	// datastore failures during authentication.
	TokenErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		bridges: make(map[string]*Bridge),
		slugs:   make(map[string]string),
		tokens:  make(map[string]*AccessToken),
		logs:    make(map[string][]*LogEntry),
	}
}

// CreateBridge stores a new bridge.
func (m *MockStore) CreateBridge(ctx context.Context, bridge *Bridge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bridge.Slug != "" {
		if _, taken := m.slugs[bridge.Slug]; taken {
			return ErrDuplicateSlug
		}
	}

	// Make a copy to avoid external modification
	b := *bridge
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	m.bridges[b.ID] = &b
	if b.Slug != "" {
		m.slugs[b.Slug] = b.ID
	}
	return nil
}

// GetBridge retrieves a bridge by ID regardless of enabled state.
func (m *MockStore) GetBridge(ctx context.Context, id string) (*Bridge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bridges[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *b
	return &result, nil
}

// GetEnabledBridge retrieves an enabled bridge by ID.
func (m *MockStore) GetEnabledBridge(ctx context.Context, id string) (*Bridge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bridges[id]
	if !ok || !b.Enabled {
		return nil, ErrNotFound
	}
	result := *b
	return &result, nil
}

// GetEnabledBridgeBySlug retrieves an enabled bridge by slug.
func (m *MockStore) GetEnabledBridgeBySlug(ctx context.Context, slug string) (*Bridge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugs[slug]
	if !ok {
		return nil, ErrNotFound
	}
	b, ok := m.bridges[id]
	if !ok || !b.Enabled {
		return nil, ErrNotFound
	}
	result := *b
	return &result, nil
}

// BridgeExists reports whether a bridge exists regardless of enabled state.
func (m *MockStore) BridgeExists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bridges[id]
	return ok, nil
}

// ListBridges returns all bridges ordered by creation time.
func (m *MockStore) ListBridges(ctx context.Context) ([]*Bridge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bridges := make([]*Bridge, 0, len(m.bridges))
	for _, b := range m.bridges {
		result := *b
		bridges = append(bridges, &result)
	}
	sort.Slice(bridges, func(i, j int) bool {
		return bridges[i].CreatedAt.Before(bridges[j].CreatedAt)
	})
	return bridges, nil
}

// UpdateBridge replaces a stored bridge.
func (m *MockStore) UpdateBridge(ctx context.Context, bridge *Bridge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.bridges[bridge.ID]
	if !ok {
		return ErrNotFound
	}
	if bridge.Slug != "" {
		if takenBy, taken := m.slugs[bridge.Slug]; taken && takenBy != bridge.ID {
			return ErrDuplicateSlug
		}
	}
	if old.Slug != "" {
		delete(m.slugs, old.Slug)
	}

	b := *bridge
	b.UpdatedAt = time.Now().UTC()
	m.bridges[b.ID] = &b
	if b.Slug != "" {
		m.slugs[b.Slug] = b.ID
	}
	return nil
}

// DeleteBridge removes a bridge and its tokens.
func (m *MockStore) DeleteBridge(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bridges[id]
	if !ok {
		return ErrNotFound
	}
	if b.Slug != "" {
		delete(m.slugs, b.Slug)
	}
	delete(m.bridges, id)
	for tokenID, token := range m.tokens {
		if token.BridgeID == id {
			delete(m.tokens, tokenID)
		}
	}
	return nil
}

// GetBridgeResources returns just the resources of a bridge.
func (m *MockStore) GetBridgeResources(ctx context.Context, bridgeID string) ([]McpResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bridges[bridgeID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]McpResource(nil), b.Resources...), nil
}

// GetBridgePrompts returns just the prompts of a bridge.
func (m *MockStore) GetBridgePrompts(ctx context.Context, bridgeID string) ([]McpPrompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bridges[bridgeID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]McpPrompt(nil), b.Prompts...), nil
}

// CreateAccessToken stores a new access token.
func (m *MockStore) CreateAccessToken(ctx context.Context, token *AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := *token
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.tokens[t.ID] = &t
	return nil
}

// FindActiveToken looks up an active, unexpired token scoped to a bridge.
func (m *MockStore) FindActiveToken(ctx context.Context, bridgeID, token string) (*AccessToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.TokenErr != nil {
		return nil, m.TokenErr
	}

	for _, t := range m.tokens {
		if t.BridgeID != bridgeID || t.Token != token || !t.IsActive {
			continue
		}
		if t.ExpiresAt != nil && !t.ExpiresAt.After(time.Now()) {
			continue
		}
		result := *t
		return &result, nil
	}
	return nil, ErrNotFound
}

// TouchToken updates a token's lastUsedAt.
func (m *MockStore) TouchToken(ctx context.Context, id string, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tokens[id]; ok {
		w := when
		t.LastUsedAt = &w
	}
	return nil
}

// ListAccessTokens returns all tokens for a bridge, newest first.
func (m *MockStore) ListAccessTokens(ctx context.Context, bridgeID string) ([]*AccessToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tokens []*AccessToken
	for _, t := range m.tokens {
		if t.BridgeID == bridgeID {
			result := *t
			tokens = append(tokens, &result)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})
	return tokens, nil
}

// RevokeAccessToken marks a token inactive.
func (m *MockStore) RevokeAccessToken(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[id]
	if !ok {
		return ErrNotFound
	}
	t.IsActive = false
	return nil
}

// AppendLog records a log entry. Unknown bridge ids are accepted.
func (m *MockStore) AppendLog(ctx context.Context, entry *LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := *entry
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.logs[e.BridgeID] = append(m.logs[e.BridgeID], &e)
	return nil
}

// ListLogs returns the most recent log entries for a bridge, newest first.
func (m *MockStore) ListLogs(ctx context.Context, bridgeID string, limit int) ([]*LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.logs[bridgeID]
	result := make([]*LogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := *entries[i]
		result = append(result, &e)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Logs returns every recorded log entry for a bridge in insertion order.
// Test helper, not part of the Store interface.
func (m *MockStore) Logs(bridgeID string) []*LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*LogEntry(nil), m.logs[bridgeID]...)
}

// GetToken returns a stored token by ID. Test helper.
func (m *MockStore) GetToken(id string) *AccessToken {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tokens[id]; ok {
		result := *t
		return &result
	}
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
