// ABOUTME: Wiring tests for the gateway orchestrator
// ABOUTME: Boots the full stack against a temporary SQLite database

package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/restbridge/bridge-gateway/internal/auth"
	"github.com/restbridge/bridge-gateway/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{HTTPAddr: "127.0.0.1:0"},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "gateway.db")},
		Auth:     config.AuthConfig{JWTSecret: "test-secret"},
	}
}

func newTestGateway(t *testing.T) (*Gateway, *httptest.Server) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw, err := New(testConfig(t), logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ts := httptest.NewServer(gw.Handler())
	t.Cleanup(func() {
		ts.Close()
		gw.store.Close()
	})
	return gw, ts
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestGateway(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/health/ready")
	if err != nil {
		t.Fatalf("ready request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ready") {
		t.Errorf("ready body = %q", body)
	}
}

func TestEndToEndBridgeFlow(t *testing.T) {
	_, ts := newTestGateway(t)

	verifier := auth.NewJWTVerifier([]byte("test-secret"))
	adminToken, err := verifier.Generate("admin", time.Hour)
	if err != nil {
		t.Fatalf("generating admin token: %v", err)
	}

	// Create a bridge through the admin API.
	bridgeBody, _ := json.Marshal(map[string]any{
		"name":    "Echo API",
		"slug":    "echo",
		"enabled": true,
		"baseUrl": "http://127.0.0.1:1/",
		"endpoints": []map[string]any{
			{"name": "List", "method": "GET", "path": "/items"},
		},
	})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/bridges", bytes.NewReader(bridgeBody))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create bridge request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("create bridge status = %d, body %s", resp.StatusCode, raw)
	}

	// The gateway endpoint sees it immediately.
	rpcBody := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	resp, err = http.Post(ts.URL+"/mcp/echo", "application/json", strings.NewReader(rpcBody))
	if err != nil {
		t.Fatalf("tools/list request failed: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if rpcResp.Error != nil {
		t.Fatalf("tools/list error: %+v", rpcResp.Error)
	}
	if len(rpcResp.Result.Tools) != 1 || rpcResp.Result.Tools[0].Name != "get_items_list" {
		t.Errorf("tools = %+v", rpcResp.Result.Tools)
	}
}

func TestAdminAPIRequiresAuth(t *testing.T) {
	_, ts := newTestGateway(t)

	resp, err := http.Get(ts.URL + "/api/bridges")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
