// Package server exposes the agent loop over HTTP.
//
// Routes:
//
//	GET  /health           service and registry status
//	GET  /models           models offered by the configured providers
//	GET  /tools            current tool snapshot
//	POST /tools/refresh    reload the snapshot from the registry
//	POST /v1/agent/chat    run the agent, streamed as SSE or aggregated
//	GET  /v1/runs          recent run journal entries
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"drakyn/agent"
	"drakyn/config"
	"drakyn/mcp"
	"drakyn/model"
	"drakyn/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators a Server routes requests to. Runs and Catalog
// may be nil.
type Deps struct {
	Config   *config.Config
	Agent    *agent.Orchestrator
	Provider model.Provider
	Tools    *mcp.Snapshot
	Runs     *storage.RunStorage

	// Catalog holds additional providers queried by GET /models, keyed by
	// provider ID.
	Catalog map[string]model.Provider
}

type Server struct {
	deps   Deps
	engine *gin.Engine
}

// New builds the gin engine and attaches all routes.
func New(deps Deps) *Server {
	if deps.Config == nil {
		deps.Config = config.Default()
	}

	g := gin.New()
	g.Use(gin.Recovery())
	if config.Debug {
		g.Use(gin.Logger())
	}

	s := &Server{deps: deps, engine: g}
	s.attachRoutes(g)
	return s
}

func (s *Server) attachRoutes(r *gin.Engine) {
	origins := s.deps.Config.Server.CORSOrigins
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Cache-Control"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.health)
	r.GET("/models", s.models)
	r.GET("/tools", s.tools)
	r.POST("/tools/refresh", s.refreshTools)

	v1 := r.Group("/v1")
	{
		v1.POST("/agent/chat", s.chat)
		v1.GET("/runs", s.listRuns)
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address until ctx is cancelled, then shuts
// down gracefully. In-flight runs see their request contexts cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.deps.Config.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return s.serve(ctx, srv)
}

func (s *Server) serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Server] Listening on %s", srv.Addr)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Server] Stopped")
	}
	return nil
}

// modelID is the identifier recorded for runs and reported by /health.
func (s *Server) modelID() string {
	if s.deps.Config.Agent.Model != "" {
		return s.deps.Config.Agent.Model
	}
	if s.deps.Provider != nil {
		return s.deps.Provider.GetModel()
	}
	return ""
}
