// Package valkey adapts the Redis driver to valkey-search, which lacks TEXT fields
// and rejects bare wildcard queries.
package valkey

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/reindexer/internal/db"
	dbRedis "github.com/kailas-cloud/reindexer/internal/db/redis"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Valkey store.
type Config struct {
	dbRedis.Config
	// KeyPrefix scopes wildcard counts, which fall back to SCAN.
	KeyPrefix string
}

// Store implements db.Store for Valkey with valkey-search.
type Store struct {
	*dbRedis.Store
	keyPrefix string
}

// NewStore creates a Valkey store.
func NewStore(cfg Config) (*Store, error) {
	inner, err := dbRedis.NewStore(cfg.Config)
	if err != nil {
		return nil, err
	}
	return &Store{Store: inner, keyPrefix: cfg.KeyPrefix}, nil
}

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client, keyPrefix string) *Store {
	return &Store{Store: dbRedis.NewStoreForTest(c), keyPrefix: keyPrefix}
}

// SupportsTextSearch returns false: valkey-search has no TEXT field type.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return false
}

// SearchCount returns document count. query="*" is answered by counting keys under
// the configured prefix.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	if query != "*" {
		return s.Store.SearchCount(ctx, index, query)
	}
	if s.keyPrefix == "" {
		return 0, fmt.Errorf("wildcard count on %s: key prefix is not configured", index)
	}
	keys, err := s.Scan(ctx, s.keyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan for count: %w", err)
	}
	return len(keys), nil
}
