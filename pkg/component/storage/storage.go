// Package storage defines the contract shared by external storage clients
// and a registry used for readiness checks and shutdown.
package storage

import (
	"context"
	"time"
)

// Client is an external storage connection.
type Client interface {
	// Name returns the storage type identifier.
	Name() string
	// Ping checks that the connection is alive.
	Ping(ctx context.Context) error
	// Close releases the connection.
	Close() error
}

// HealthStatus is the result of pinging one client.
type HealthStatus struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Error   error         `json:"-"`
}
