// Package db defines the search-backend contract the reindexer needs and the FT index
// definitions it creates. Drivers live in sub-packages.
package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	JSONStore
	KeyStore
	IndexManager
	Counter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore writes JSON documents.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
}

// KeyStore enumerates and removes keys in bulk.
type KeyStore interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) (int, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Counter counts documents matched by an FT query.
type Counter interface {
	SearchCount(ctx context.Context, index, query string) (int, error)
}
