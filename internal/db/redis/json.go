package redis

import (
	"context"

	"github.com/kailas-cloud/reindexer/internal/db"
)

// JSONSet stores a JSON document at the given key and path. Setting "$" replaces the whole document.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args(path, string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}
