package storage

import (
	"context"
	"time"
)

// ContentStore defines the key-value operations the share services need.
// Implementations namespace keys with domain.ShareKey and expire records
// after the given TTL, so an expired record is indistinguishable from one
// that was never written.
type ContentStore interface {
	// Create stores content under id with the given TTL.
	// It returns domain.ErrConflict if a live record already exists for id.
	Create(ctx context.Context, id string, content string, ttl time.Duration) error

	// Get returns the content stored under id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (string, error)

	// Close gracefully shuts down the store connection.
	Close() error
}
