package resourceindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/reindexer/internal/db"
)

const (
	testIndex  = "resource_v3"
	testPrefix = "resource_v3:"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn          func(ctx context.Context, key, path string, data []byte) error
	scanFn             func(ctx context.Context, pattern string) ([]string, error)
	delMultiFn         func(ctx context.Context, keys []string) (int, error)
	createIndexFn      func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn        func(ctx context.Context, name string) error
	indexExistsFn      func(ctx context.Context, name string) (bool, error)
	searchCountFn      func(ctx context.Context, index, query string) (int, error)
	supportsTextSearch bool
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) (int, error) {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return len(keys), nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SupportsTextSearch(_ context.Context) bool {
	return m.supportsTextSearch
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testIndex, testPrefix), ms
}
