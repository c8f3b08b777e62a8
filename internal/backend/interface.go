// Package backend selects and builds the persistence backend from
// configuration.
package backend

import (
	"context"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/cache"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the repository and the resources it owns.
type BackendResult struct {
	Repository store.Repository
	// Cleaners are caches that need a cache.Manager for expiry; empty when
	// caching is disabled.
	Cleaners []cache.Cleaner
	Cleanup  CleanupFunc
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Recurring read cache; a zero TTL disables it.
	CacheTTL  time.Duration
	CacheSize int
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
