// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package web exposes the authentication service over HTTP. Handlers are thin
// transport adapters: parsing, cookie plumbing, and failure rendering live
// here, all auth decisions live in internal/auth.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// Options configures the HTTP server.
type Options struct {
	// Addr is the listen address in "host:port" form.
	Addr string

	// AllowedOrigins is the CORS allowlist. Credentials are always allowed,
	// so "*" is rejected by the cors middleware.
	AllowedOrigins []string

	// SecureCookies marks session cookies Secure. Enabled in production.
	SecureCookies bool

	Logger *slog.Logger
}

// Server is the public HTTP surface.
type Server struct {
	auth          *auth.Service
	engine        *gin.Engine
	httpServer    *http.Server
	logger        *slog.Logger
	secureCookies bool
}

// NewServer creates a Server and registers all routes.
func NewServer(svc *auth.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	if len(opts.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = opts.AllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		auth:          svc,
		engine:        engine,
		logger:        logger,
		secureCookies: opts.SecureCookies,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", s.handleSignUp)
			authRoutes.POST("/signin", s.handleSignIn)
			authRoutes.POST("/signout", s.handleSignOut)
		}

		protected := api.Group("")
		protected.Use(s.RequireSession())
		{
			protected.GET("/me", s.handleMe)
		}
	}
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving. It returns an error channel that receives any serve
// error; the channel is closed on graceful shutdown.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("web server error", "error", err)
			errCh <- err
		}
	}()
	s.logger.Info("web server started", "addr", s.httpServer.Addr)
	return errCh
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gatehouse"})
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
