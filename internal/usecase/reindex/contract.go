package reindex

import (
	"context"
	"iter"
	"time"

	"github.com/kailas-cloud/reindexer/internal/domain/resource"
	"github.com/kailas-cloud/reindexer/internal/domain/selection"
)

// Catalog is the read-only relational source.
type Catalog interface {
	Relations(ctx context.Context) iter.Seq2[resource.Relation, error]
	Resources(ctx context.Context, sel selection.Selection) iter.Seq2[resource.Resource, error]
}

// Index is the destination search index.
type Index interface {
	Name() string
	// Rebuild drops the index and its documents and recreates the schema.
	Rebuild(ctx context.Context) (deleted int, err error)
	// Ensure creates the index if absent, keeping existing documents.
	Ensure(ctx context.Context) (created bool, err error)
	Upsert(ctx context.Context, doc resource.Document) error
	Count(ctx context.Context) (int, error)
}

// Recorder receives run metrics.
type Recorder interface {
	DocumentIndexed()
	DocumentFailed()
	RunFinished(relations int, fullRebuild bool, duration time.Duration, succeeded bool)
}

type nopRecorder struct{}

func (nopRecorder) DocumentIndexed()                           {}
func (nopRecorder) DocumentFailed()                            {}
func (nopRecorder) RunFinished(int, bool, time.Duration, bool) {}
