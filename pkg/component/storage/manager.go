package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kart-io/logger"
)

// Manager keeps the storage clients of the process by name.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewManager creates a new storage manager instance.
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]Client),
	}
}

// Register registers a storage client with the given name.
func (m *Manager) Register(name string, client Client) error {
	if name == "" {
		return fmt.Errorf("storage: client name cannot be empty")
	}
	if client == nil {
		return fmt.Errorf("storage: client %q is nil", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients[name]; exists {
		return fmt.Errorf("storage: client %q already registered", name)
	}
	m.clients[name] = client
	logger.Infow("Storage client registered", "name", name, "type", client.Name())
	return nil
}

// Get retrieves a storage client by name.
func (m *Manager) Get(name string) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, ok := m.clients[name]
	if !ok {
		return nil, fmt.Errorf("storage: client %q not found", name)
	}
	return client, nil
}

// List returns the registered client names in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll pings every registered client concurrently.
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]HealthStatus {
	m.mu.RLock()
	clients := make(map[string]Client, len(m.clients))
	for name, client := range m.clients {
		clients[name] = client
	}
	m.mu.RUnlock()

	statuses := make(map[string]HealthStatus, len(clients))
	var (
		statusMu sync.Mutex
		wg       sync.WaitGroup
	)

	for name, client := range clients {
		wg.Add(1)
		go func(n string, c Client) {
			defer wg.Done()

			start := time.Now()
			err := c.Ping(ctx)

			statusMu.Lock()
			statuses[n] = HealthStatus{
				Name:    n,
				Healthy: err == nil,
				Latency: time.Since(start),
				Error:   err,
			}
			statusMu.Unlock()
		}(name, client)
	}

	wg.Wait()
	return statuses
}

// AllHealthy reports whether every registered client answers its ping.
func (m *Manager) AllHealthy(ctx context.Context) bool {
	for _, status := range m.HealthCheckAll(ctx) {
		if !status.Healthy {
			logger.Warnw("Storage client unhealthy", "name", status.Name, "error", status.Error)
			return false
		}
	}
	return true
}

// CloseAll closes all registered clients and returns the first error.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, client := range m.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close client '%s': %w", name, err)
		}
		delete(m.clients, name)
	}
	return firstErr
}
