// Package resourceindex manages the search index that holds resource documents.
package resourceindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/reindexer/internal/db"
	"github.com/kailas-cloud/reindexer/internal/domain/resource"
)

// store is the consumer interface for the resource index (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements usecase/reindex.IndexLifecycle and usecase/reindex.DocumentWriter.
type Repo struct {
	store  store
	name   string
	prefix string
}

// New creates a resource index repository for index name over keys starting with prefix.
func New(s store, name, prefix string) *Repo {
	return &Repo{store: s, name: name, prefix: prefix}
}

// Name returns the index name.
func (r *Repo) Name() string { return r.name }

// Rebuild drops the index together with every document under the key prefix, then
// recreates the schema. Returns the number of documents removed.
func (r *Repo) Rebuild(ctx context.Context) (int, error) {
	if err := r.store.DropIndex(ctx, r.name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("drop index: %w", err)
	}

	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	deleted := 0
	if len(keys) > 0 {
		deleted, err = r.store.DelMulti(ctx, keys)
		if err != nil {
			return deleted, fmt.Errorf("delete documents: %w", err)
		}
	}

	if err := r.create(ctx); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Ensure creates the index if it does not exist. Existing documents are left untouched.
// Returns true when the index was created.
func (r *Repo) Ensure(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.name)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := r.create(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repo) create(ctx context.Context) error {
	def, err := buildIndex(r.name, r.prefix, r.store.SupportsTextSearch(ctx))
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	// a concurrent creator is not an error: the schema is the same
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert writes doc under its key, replacing any previous version.
func (r *Repo) Upsert(ctx context.Context, doc resource.Document) error {
	if doc.ID == "" {
		return errors.New("document id is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", doc.ID, err)
	}
	if err := r.store.JSONSet(ctx, r.key(doc.ID), "$", data); err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// Count returns the number of documents currently in the index.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.name, "*")
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}
