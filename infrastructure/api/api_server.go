package api

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/citetrack"
	apimiddleware "github.com/helixml/citetrack/infrastructure/api/middleware"
	v1 "github.com/helixml/citetrack/infrastructure/api/v1"
	mcpinternal "github.com/helixml/citetrack/internal/mcp"
)

// APIServer provides an HTTP API backed by a citetrack Client.
type APIServer struct {
	client  *citetrack.Client
	auth    apimiddleware.AuthConfig
	limiter *apimiddleware.TenantLimiter
	version string
	server  *Server
	handler http.Handler
	logger  *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// When apiKeys is non-empty every /api/v1 and /mcp request needs a valid key.
// Both also need the tenant header. Health and metrics stay open.
func NewAPIServer(client *citetrack.Client, apiKeys []string) *APIServer {
	return &APIServer{
		client:  client,
		auth:    apimiddleware.NewAuthConfigWithKeys(apiKeys),
		version: "dev",
		logger:  client.Logger(),
	}
}

// WithActionRateLimit limits action requests to perSecond per tenant. Zero
// or less leaves actions unlimited.
func (a *APIServer) WithActionRateLimit(perSecond float64) *APIServer {
	if perSecond <= 0 {
		a.limiter = nil
		return a
	}
	burst := int(math.Ceil(perSecond))
	a.limiter = apimiddleware.NewTenantLimiter(perSecond, burst)
	return a
}

// WithVersion sets the version reported by /healthz and MCP.
func (a *APIServer) WithVersion(version string) *APIServer {
	if version != "" {
		a.version = version
	}
	return a
}

// mountRoutes wires up all routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": a.version,
		})
	})
	router.Method(http.MethodGet, "/metrics", c.Metrics.Handler())

	brandsRouter := v1.NewBrandsRouter(c).WithRateLimit(a.limiter)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(apimiddleware.RequireAPIKey(a.auth))
		r.Use(apimiddleware.RequireTenant)

		r.Mount("/brands", brandsRouter.Routes())
	})

	// MCP streams its responses, so it must not sit behind chi's Timeout.
	mcpSrv := mcpinternal.NewServer(c.Analytics, a.version, a.logger, mcpinternal.WithRequestTenant())
	router.Group(func(r chi.Router) {
		r.Use(apimiddleware.RequireAPIKey(a.auth))
		r.Use(apimiddleware.RequireTenant)
		r.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	srv := NewServer(addr, a.logger, a.client.Metrics)
	a.server = &srv
	a.mountRoutes(srv.Router())
	return srv.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the full middleware stack and routes as an http.Handler
// for use with custom servers and tests.
func (a *APIServer) Handler() http.Handler {
	if a.handler == nil {
		srv := NewServer("", a.logger, a.client.Metrics)
		a.mountRoutes(srv.Router())
		a.handler = srv.Router()
	}
	return a.handler
}
