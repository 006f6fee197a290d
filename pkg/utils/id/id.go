// Package id provides unique ID generation for persisted entities.
//
// IDs are ULIDs: 26 character, lexicographically sortable by creation time,
// which keeps primary keys index friendly on every supported database.
//
// Usage:
//
//	datasetID := id.NewULID() // e.g., "01ARZ3NDEKTSV4RRFFQ69G5FAV"
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator defines the interface for ID generators.
type Generator interface {
	// Generate creates a new unique ID.
	Generate() string
}

// ULIDGenerator produces monotonic ULIDs. It is safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a ULID generator backed by crypto/rand.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Generate creates a new ULID string.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

var defaultULID = NewULIDGenerator()

// NewULID generates a new ULID string.
func NewULID() string {
	return defaultULID.Generate()
}

// IsValidULID reports whether s parses as a ULID.
func IsValidULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
