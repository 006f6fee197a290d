package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/pkg/infra/server/transport/http"
)

// Manager owns the HTTP server plus any extra Runnables and drives
// their lifecycle together.
type Manager struct {
	opts       *Options
	httpServer *http.Server
	servers    []Runnable
	mu         sync.Mutex
	started    bool
}

// NewManager creates a new server manager.
func NewManager(opts ...Option) *Manager {
	serverOpts := NewOptions()
	for _, opt := range opts {
		opt(serverOpts)
	}

	m := &Manager{opts: serverOpts}
	if serverOpts.HTTP != nil {
		m.httpServer = http.NewServer(serverOpts.HTTP)
	}
	return m
}

// HTTPServer returns the HTTP server, or nil when disabled.
func (m *Manager) HTTPServer() *http.Server {
	return m.httpServer
}

// AddServer registers an extra server started after the HTTP server.
func (m *Manager) AddServer(server Runnable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servers = append(m.servers, server)
}

func (m *Manager) runnables() []Runnable {
	all := make([]Runnable, 0, len(m.servers)+1)
	if m.httpServer != nil {
		all = append(all, m.httpServer)
	}
	return append(all, m.servers...)
}

// Start starts every server. If one fails, those already started are stopped.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("server manager already started")
	}

	all := m.runnables()
	for i, s := range all {
		if err := s.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = all[j].Stop(ctx)
			}
			return fmt.Errorf("failed to start server %s: %w", s.Name(), err)
		}
		logger.Infow("Server started", "name", s.Name())
	}

	m.started = true
	return nil
}

// Stop stops the servers in reverse start order.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false

	all := m.runnables()
	var errs []error
	for i := len(all) - 1; i >= 0; i-- {
		if err := all[i].Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop server %s: %w", all[i].Name(), err))
			continue
		}
		logger.Infow("Server stopped", "name", all[i].Name())
	}
	return utilerrors.NewAggregate(errs)
}

// Run starts the servers and blocks until SIGINT, SIGTERM or ctx is done,
// then shuts down within ShutdownTimeout.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Infow("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	logger.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.opts.ShutdownTimeout)
	defer cancel()

	return m.Stop(shutdownCtx)
}
