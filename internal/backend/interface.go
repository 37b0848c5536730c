package backend

import (
	"context"
	"time"

	"pocketbook/internal/cache"
	"pocketbook/internal/events"
	"pocketbook/internal/tracker"
	"pocketbook/internal/view"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is a loaded tracker together with the pieces the binary
// schedules or subscribes to.
type BackendResult struct {
	Tracker *tracker.Tracker

	// Events fans every mutation out to in-process subscribers.
	Events *events.Broadcaster

	// Views is the memo cache behind Tracker.View, for periodic cleanup.
	Views *cache.LRU[view.View]

	Cleanup CleanupFunc
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

	// Memory backend seeds its slot from <DataDirectory>/<StorageKey>.json
	DataDirectory string

	StorageKey    string
	StorageSecret string
	IDScheme      string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ViewCacheSize int
	ViewCacheTTL  time.Duration
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
