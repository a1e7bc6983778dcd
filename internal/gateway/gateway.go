// ABOUTME: Gateway orchestrator that wires the store, MCP endpoint, and admin API
// ABOUTME: Manages the HTTP server and component lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/restbridge/bridge-gateway/internal/access"
	"github.com/restbridge/bridge-gateway/internal/admin"
	"github.com/restbridge/bridge-gateway/internal/auth"
	"github.com/restbridge/bridge-gateway/internal/config"
	"github.com/restbridge/bridge-gateway/internal/invoke"
	"github.com/restbridge/bridge-gateway/internal/mcp"
	"github.com/restbridge/bridge-gateway/internal/seen"
	"github.com/restbridge/bridge-gateway/internal/store"
)

// Gateway orchestrates the bridge-gateway server components. It owns the
// store and HTTP server and wires the MCP endpoint and admin API onto a
// shared mux.
type Gateway struct {
	config     *config.Config
	store      store.Store
	httpServer *http.Server
	logger     *slog.Logger

	mcpServer   *mcp.Server
	adminServer *admin.Server
}

// initStore creates a store based on config and environment. The
// BRIDGE_DB_PATH environment variable overrides the configured path.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("BRIDGE_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	gw := &Gateway{
		config: cfg,
		store:  s,
		logger: logger.With("component", "gateway"),
	}

	caller := invoke.NewCaller(invoke.CallerConfig{
		Logger:         logger,
		UserAgent:      cfg.Gateway.UserAgent,
		DefaultTimeout: cfg.Gateway.UpstreamTimeout,
	})
	guard := access.NewGuard(s, s, logger)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Bridges:  s,
		Logs:     s,
		Guard:    guard,
		Caller:   caller,
		Logger:   logger,
		Verified: seen.New(10*time.Minute, 10_000),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}
	gw.mcpServer = mcpServer

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	adminServer, err := admin.NewServer(admin.Config{
		Store:    s,
		Verifier: verifier,
		Logger:   logger,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating admin server: %w", err)
	}
	gw.adminServer = adminServer

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)
	mcpServer.RegisterRoutes(mux)
	adminServer.RegisterRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Handler exposes the composed HTTP handler. Test hook.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", listener.Addr().String())
		if err := g.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes the store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store answers queries.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	bridges, err := g.store.ListBridges(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d bridges)", len(bridges))
}
