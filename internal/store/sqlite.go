// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Persists bridges, access tokens and bridge logs with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// Endpoint/tool/resource/prompt definitions are stored as JSON blobs since
// they are only ever read and written as a unit with their bridge.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS bridges (
			id TEXT PRIMARY KEY,
			slug TEXT,
			name TEXT NOT NULL,
			description TEXT,
			enabled INTEGER NOT NULL DEFAULT 1,
			base_url TEXT NOT NULL,
			auth_config TEXT NOT NULL,
			headers TEXT,
			endpoints TEXT,
			mcp_tools TEXT,
			mcp_resources TEXT,
			mcp_prompts TEXT,
			access_config TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_bridges_slug
			ON bridges(slug) WHERE slug IS NOT NULL;

		CREATE TABLE IF NOT EXISTS access_tokens (
			id TEXT PRIMARY KEY,
			bridge_id TEXT NOT NULL,
			name TEXT,
			token TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			expires_at DATETIME,
			last_used_at DATETIME,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (bridge_id) REFERENCES bridges(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_access_tokens_bridge_token
			ON access_tokens(bridge_id, token);

		CREATE TABLE IF NOT EXISTS bridge_logs (
			id TEXT PRIMARY KEY,
			bridge_id TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bridge_logs_bridge_created
			ON bridge_logs(bridge_id, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const bridgeColumns = `id, slug, name, description, enabled, base_url, auth_config,
	headers, endpoints, mcp_tools, mcp_resources, mcp_prompts, access_config,
	created_at, updated_at`

// CreateBridge inserts a new bridge. A missing ID is generated.
// Returns ErrDuplicateSlug if the slug is already taken.
func (s *SQLiteStore) CreateBridge(ctx context.Context, bridge *Bridge) error {
	if bridge.ID == "" {
		bridge.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if bridge.CreatedAt.IsZero() {
		bridge.CreatedAt = now
	}
	bridge.UpdatedAt = now

	authJSON, headersJSON, endpointsJSON, toolsJSON, resourcesJSON, promptsJSON, accessJSON, err := marshalBridgeBlobs(bridge)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bridges (` + bridgeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		bridge.ID,
		nullString(bridge.Slug),
		bridge.Name,
		nullString(bridge.Description),
		boolToInt(bridge.Enabled),
		bridge.BaseURL,
		authJSON,
		headersJSON,
		endpointsJSON,
		toolsJSON,
		resourcesJSON,
		promptsJSON,
		accessJSON,
		bridge.CreatedAt.Format(time.RFC3339),
		bridge.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("inserting bridge: %w", err)
	}

	s.logger.Debug("created bridge", "id", bridge.ID, "slug", bridge.Slug)
	return nil
}

// GetBridge retrieves a bridge by ID regardless of enabled state.
// Returns ErrNotFound if the bridge doesn't exist.
func (s *SQLiteStore) GetBridge(ctx context.Context, id string) (*Bridge, error) {
	query := `SELECT ` + bridgeColumns + ` FROM bridges WHERE id = ?`
	return s.scanBridge(s.db.QueryRowContext(ctx, query, id))
}

// GetEnabledBridge retrieves a bridge by ID with the enabled filter applied
// at the query level. Returns ErrNotFound for unknown or disabled bridges.
func (s *SQLiteStore) GetEnabledBridge(ctx context.Context, id string) (*Bridge, error) {
	query := `SELECT ` + bridgeColumns + ` FROM bridges WHERE id = ? AND enabled = 1`
	return s.scanBridge(s.db.QueryRowContext(ctx, query, id))
}

// GetEnabledBridgeBySlug retrieves an enabled bridge by its slug alias.
func (s *SQLiteStore) GetEnabledBridgeBySlug(ctx context.Context, slug string) (*Bridge, error) {
	query := `SELECT ` + bridgeColumns + ` FROM bridges WHERE slug = ? AND enabled = 1`
	return s.scanBridge(s.db.QueryRowContext(ctx, query, slug))
}

// BridgeExists reports whether a bridge row exists regardless of enabled state.
func (s *SQLiteStore) BridgeExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM bridges WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying bridge existence: %w", err)
	}
	return true, nil
}

// ListBridges returns all bridges ordered by creation time.
func (s *SQLiteStore) ListBridges(ctx context.Context) ([]*Bridge, error) {
	query := `SELECT ` + bridgeColumns + ` FROM bridges ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying bridges: %w", err)
	}
	defer rows.Close()

	var bridges []*Bridge
	for rows.Next() {
		bridge, err := s.scanBridge(rows)
		if err != nil {
			return nil, err
		}
		bridges = append(bridges, bridge)
	}
	return bridges, rows.Err()
}

// UpdateBridge replaces a bridge's configuration.
// Returns ErrNotFound if the bridge doesn't exist.
func (s *SQLiteStore) UpdateBridge(ctx context.Context, bridge *Bridge) error {
	bridge.UpdatedAt = time.Now().UTC()

	authJSON, headersJSON, endpointsJSON, toolsJSON, resourcesJSON, promptsJSON, accessJSON, err := marshalBridgeBlobs(bridge)
	if err != nil {
		return err
	}

	query := `
		UPDATE bridges
		SET slug = ?, name = ?, description = ?, enabled = ?, base_url = ?,
			auth_config = ?, headers = ?, endpoints = ?, mcp_tools = ?,
			mcp_resources = ?, mcp_prompts = ?, access_config = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		nullString(bridge.Slug),
		bridge.Name,
		nullString(bridge.Description),
		boolToInt(bridge.Enabled),
		bridge.BaseURL,
		authJSON,
		headersJSON,
		endpointsJSON,
		toolsJSON,
		resourcesJSON,
		promptsJSON,
		accessJSON,
		bridge.UpdatedAt.Format(time.RFC3339),
		bridge.ID,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("updating bridge: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBridge removes a bridge and, via cascade, its access tokens.
func (s *SQLiteStore) DeleteBridge(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bridges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting bridge: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.logger.Debug("deleted bridge", "id", id)
	return nil
}

// GetBridgeResources fetches just the resources blob of a bridge.
// Kept separate from GetEnabledBridge so resources/list requests don't
// reload the full endpoint configuration.
func (s *SQLiteStore) GetBridgeResources(ctx context.Context, bridgeID string) ([]McpResource, error) {
	var blob sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT mcp_resources FROM bridges WHERE id = ?`, bridgeID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying bridge resources: %w", err)
	}

	var resources []McpResource
	if blob.Valid && blob.String != "" {
		if err := json.Unmarshal([]byte(blob.String), &resources); err != nil {
			return nil, fmt.Errorf("decoding bridge resources: %w", err)
		}
	}
	return resources, nil
}

// GetBridgePrompts fetches just the prompts blob of a bridge.
func (s *SQLiteStore) GetBridgePrompts(ctx context.Context, bridgeID string) ([]McpPrompt, error) {
	var blob sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT mcp_prompts FROM bridges WHERE id = ?`, bridgeID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying bridge prompts: %w", err)
	}

	var prompts []McpPrompt
	if blob.Valid && blob.String != "" {
		if err := json.Unmarshal([]byte(blob.String), &prompts); err != nil {
			return nil, fmt.Errorf("decoding bridge prompts: %w", err)
		}
	}
	return prompts, nil
}

// CreateAccessToken inserts a new access token. A missing ID is generated.
func (s *SQLiteStore) CreateAccessToken(ctx context.Context, token *AccessToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO access_tokens (id, bridge_id, name, token, is_active, expires_at, last_used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.BridgeID,
		nullString(token.Name),
		token.Token,
		boolToInt(token.IsActive),
		nullTime(token.ExpiresAt),
		nullTime(token.LastUsedAt),
		token.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting access token: %w", err)
	}

	s.logger.Debug("created access token", "id", token.ID, "bridge_id", token.BridgeID)
	return nil
}

// FindActiveToken looks up an access token scoped to a bridge. The active
// and expiry filters are applied at the query level so callers never see
// revoked or expired rows. Returns ErrNotFound when nothing matches.
func (s *SQLiteStore) FindActiveToken(ctx context.Context, bridgeID, token string) (*AccessToken, error) {
	query := `
		SELECT id, bridge_id, name, token, is_active, expires_at, last_used_at, created_at
		FROM access_tokens
		WHERE bridge_id = ? AND token = ? AND is_active = 1
			AND (expires_at IS NULL OR expires_at > ?)
	`

	row := s.db.QueryRowContext(ctx, query, bridgeID, token, time.Now().UTC().Format(time.RFC3339))
	return scanAccessToken(row)
}

// TouchToken updates a token's lastUsedAt timestamp. Best effort: a missing
// row is not an error.
func (s *SQLiteStore) TouchToken(ctx context.Context, id string, when time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE access_tokens SET last_used_at = ? WHERE id = ?`,
		when.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating token last_used_at: %w", err)
	}
	return nil
}

// ListAccessTokens returns all tokens for a bridge, newest first.
func (s *SQLiteStore) ListAccessTokens(ctx context.Context, bridgeID string) ([]*AccessToken, error) {
	query := `
		SELECT id, bridge_id, name, token, is_active, expires_at, last_used_at, created_at
		FROM access_tokens
		WHERE bridge_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, bridgeID)
	if err != nil {
		return nil, fmt.Errorf("querying access tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*AccessToken
	for rows.Next() {
		token, err := scanAccessToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// RevokeAccessToken marks a token inactive. Returns ErrNotFound if the
// token doesn't exist.
func (s *SQLiteStore) RevokeAccessToken(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE access_tokens SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("revoking access token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking revoke result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendLog inserts a bridge event log record. There is deliberately no
// foreign key to bridges: the sink must tolerate ids that don't exist yet.
func (s *SQLiteStore) AppendLog(ctx context.Context, entry *LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var metadataJSON any
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("encoding log metadata: %w", err)
		}
		metadataJSON = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bridge_logs (id, bridge_id, level, message, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.BridgeID,
		entry.Level,
		entry.Message,
		metadataJSON,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting log entry: %w", err)
	}
	return nil
}

// ListLogs returns the most recent log entries for a bridge, newest first.
// If limit is 0 or negative, a default of 100 is used.
func (s *SQLiteStore) ListLogs(ctx context.Context, bridgeID string, limit int) ([]*LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, bridge_id, level, message, metadata, created_at
		FROM bridge_logs
		WHERE bridge_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, bridgeID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	defer rows.Close()

	var entries []*LogEntry
	for rows.Next() {
		var entry LogEntry
		var metadata sql.NullString
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.BridgeID, &entry.Level, &entry.Message, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
				s.logger.Warn("failed to decode log metadata", "id", entry.ID, "error", err)
			}
		}
		entry.CreatedAt = parseStoredTime(createdAt, entry.ID, "created_at")
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBridge scans a full bridge row, decoding the JSON blob columns.
func (s *SQLiteStore) scanBridge(row rowScanner) (*Bridge, error) {
	var bridge Bridge
	var slug, description, headers, endpoints, tools, resources, prompts sql.NullString
	var enabled int
	var authConfig, accessConfig string
	var createdAt, updatedAt string

	err := row.Scan(
		&bridge.ID,
		&slug,
		&bridge.Name,
		&description,
		&enabled,
		&bridge.BaseURL,
		&authConfig,
		&headers,
		&endpoints,
		&tools,
		&resources,
		&prompts,
		&accessConfig,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning bridge: %w", err)
	}

	bridge.Slug = slug.String
	bridge.Description = description.String
	bridge.Enabled = enabled != 0

	if err := json.Unmarshal([]byte(authConfig), &bridge.Auth); err != nil {
		return nil, fmt.Errorf("decoding auth config for bridge %s: %w", bridge.ID, err)
	}
	if err := json.Unmarshal([]byte(accessConfig), &bridge.Access); err != nil {
		return nil, fmt.Errorf("decoding access config for bridge %s: %w", bridge.ID, err)
	}
	if err := decodeBlob(headers, &bridge.Headers); err != nil {
		return nil, fmt.Errorf("decoding headers for bridge %s: %w", bridge.ID, err)
	}
	if err := decodeBlob(endpoints, &bridge.Endpoints); err != nil {
		return nil, fmt.Errorf("decoding endpoints for bridge %s: %w", bridge.ID, err)
	}
	if err := decodeBlob(tools, &bridge.Tools); err != nil {
		return nil, fmt.Errorf("decoding tools for bridge %s: %w", bridge.ID, err)
	}
	if err := decodeBlob(resources, &bridge.Resources); err != nil {
		return nil, fmt.Errorf("decoding resources for bridge %s: %w", bridge.ID, err)
	}
	if err := decodeBlob(prompts, &bridge.Prompts); err != nil {
		return nil, fmt.Errorf("decoding prompts for bridge %s: %w", bridge.ID, err)
	}

	bridge.CreatedAt = parseStoredTime(createdAt, bridge.ID, "created_at")
	bridge.UpdatedAt = parseStoredTime(updatedAt, bridge.ID, "updated_at")

	return &bridge, nil
}

// scanAccessToken scans an access token row.
func scanAccessToken(row rowScanner) (*AccessToken, error) {
	var token AccessToken
	var name, expiresAt, lastUsedAt sql.NullString
	var isActive int
	var createdAt string

	err := row.Scan(
		&token.ID,
		&token.BridgeID,
		&name,
		&token.Token,
		&isActive,
		&expiresAt,
		&lastUsedAt,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning access token: %w", err)
	}

	token.Name = name.String
	token.IsActive = isActive != 0
	if expiresAt.Valid {
		t := parseStoredTime(expiresAt.String, token.ID, "expires_at")
		token.ExpiresAt = &t
	}
	if lastUsedAt.Valid {
		t := parseStoredTime(lastUsedAt.String, token.ID, "last_used_at")
		token.LastUsedAt = &t
	}
	token.CreatedAt = parseStoredTime(createdAt, token.ID, "created_at")

	return &token, nil
}

// marshalBridgeBlobs encodes the JSON blob columns of a bridge.
func marshalBridgeBlobs(bridge *Bridge) (auth, headers, endpoints, tools, resources, prompts, access any, err error) {
	authData, err := json.Marshal(bridge.Auth)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding auth config: %w", err)
	}
	accessData, err := json.Marshal(bridge.Access)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding access config: %w", err)
	}

	encode := func(v any, empty bool) (any, error) {
		if empty {
			return nil, nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}

	if headers, err = encode(bridge.Headers, len(bridge.Headers) == 0); err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding headers: %w", err)
	}
	if endpoints, err = encode(bridge.Endpoints, len(bridge.Endpoints) == 0); err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding endpoints: %w", err)
	}
	if tools, err = encode(bridge.Tools, len(bridge.Tools) == 0); err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding tools: %w", err)
	}
	if resources, err = encode(bridge.Resources, len(bridge.Resources) == 0); err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding resources: %w", err)
	}
	if prompts, err = encode(bridge.Prompts, len(bridge.Prompts) == 0); err != nil {
		return nil, nil, nil, nil, nil, nil, nil, fmt.Errorf("encoding prompts: %w", err)
	}

	return string(authData), headers, endpoints, tools, resources, prompts, string(accessData), nil
}

// decodeBlob decodes a nullable JSON column into dst, leaving dst untouched
// for NULL or empty values.
func decodeBlob(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

// parseStoredTime parses an RFC3339 timestamp column, logging on failure.
func parseStoredTime(value, id, field string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.Warn("failed to parse stored timestamp", "id", id, "field", field, "error", err)
		return time.Time{}
	}
	return parsed
}

// nullString converts an empty string to nil for nullable columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTime converts a nil time pointer to nil for nullable columns.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isConstraintViolation checks if an error is a SQLite constraint violation.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}
