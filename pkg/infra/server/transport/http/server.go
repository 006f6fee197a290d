// Package http runs the gin HTTP server.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/pkg/infra/middleware"
	options "github.com/kart-io/datasphere/pkg/options/server/http"
	apierrors "github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

// Server is the HTTP server. It implements server.Runnable.
type Server struct {
	opts   *options.Options
	engine *gin.Engine
	server *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a gin engine with the base middleware chain:
// Recovery, RequestID, Logger, Timeout and, when origins are configured, CORS.
// Requests get the write timeout as their deadline.
func NewServer(opts *options.Options, extra ...gin.HandlerFunc) *Server {
	if opts == nil {
		opts = options.NewOptions()
	}
	gin.SetMode(opts.Mode)

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout:   opts.WriteTimeout,
			SkipPaths: []string{middleware.HealthPath},
		}),
	)
	if len(opts.CORSOrigins) > 0 {
		engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     opts.CORSOrigins,
			AllowCredentials: true,
		}))
	}
	engine.Use(extra...)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(apierrors.ErrNotFound.HTTP, response.Err(apierrors.ErrNotFound))
	})

	return &Server{
		opts:   opts,
		engine: engine,
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Name returns the server name.
func (s *Server) Name() string {
	return "http"
}

// Options returns the options the server was created with.
func (s *Server) Options() *options.Options {
	return s.opts
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Start binds the listener and serves in the background.
// A bind failure is returned synchronously.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	logger.Infow("HTTP server listening", "addr", ln.Addr().String(), "mode", s.opts.Mode)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server stopped unexpectedly", "error", err.Error())
		}
	}()
	return nil
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
