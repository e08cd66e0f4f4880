package reindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reindexer/internal/domain"
	"github.com/kailas-cloud/reindexer/internal/domain/resource"
	"github.com/kailas-cloud/reindexer/internal/domain/selection"
)

// Options tune failure handling.
type Options struct {
	// SkipFailed logs and counts per-record failures instead of aborting the run.
	SkipFailed bool
	// StrictRelations turns a conflicting duplicate relation into a fatal error.
	StrictRelations bool
}

// Stats describes one run.
type Stats struct {
	Total       int
	Failed      int
	Relations   int
	Conflicts   int
	IndexSize   int
	FullRebuild bool
	Start       time.Time
	End         time.Time
}

// Duration returns the wall time of the run.
func (s Stats) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Service runs one reconciliation pass from the catalog into the search index.
type Service struct {
	catalog  Catalog
	index    Index
	builder  resource.DocumentBuilder
	recorder Recorder
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
}

// New creates a reindex service. builder is usually resource.DefaultRegistry().
func New(catalog Catalog, index Index, builder resource.DocumentBuilder, logger *zap.Logger) *Service {
	return &Service{
		catalog:  catalog,
		index:    index,
		builder:  builder,
		recorder: nopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
}

// WithOptions configures failure handling.
func (s *Service) WithOptions(opts Options) *Service {
	s.opts = opts
	return s
}

// WithRecorder attaches a metrics recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Run prepares the index, loads the relationship map and indexes every selected resource
// in catalog order. A selection of all implies a full rebuild.
func (s *Service) Run(ctx context.Context, sel selection.Selection) (stats Stats, err error) {
	stats = Stats{Start: s.now(), FullRebuild: sel.IsAll()}
	defer func() {
		stats.End = s.now()
		s.recorder.RunFinished(stats.Relations, stats.FullRebuild, stats.Duration(), err == nil)
	}()

	for _, c := range sel.Criteria() {
		s.logger.Info("Selected criterion",
			zap.String("criterion", string(c.Kind())),
			zap.Strings("values", c.Values()),
		)
	}

	if err := s.PrepareIndex(ctx, sel); err != nil {
		return stats, err
	}

	rels, err := resource.BuildRelationshipMap(s.catalog.Relations(ctx), s.opts.StrictRelations)
	if err != nil {
		return stats, fmt.Errorf("build relationship map: %w", err)
	}
	stats.Relations = rels.Edges()
	stats.Conflicts = len(rels.Conflicts())
	for _, c := range rels.Conflicts() {
		s.logger.Warn("Conflicting relation overwritten",
			zap.String("first_id", c.FirstID),
			zap.String("second_id", c.SecondID),
			zap.String("previous", c.Previous),
			zap.String("current", c.Current),
		)
	}
	s.logger.Info("Relationship map built",
		zap.Int("relations", stats.Relations),
		zap.Int("resources", rels.Len()),
		zap.Int("conflicts", stats.Conflicts),
	)

	if err := s.indexAll(ctx, sel, rels, &stats); err != nil {
		stats.End = s.now()
		s.logger.Error("Index reload failed",
			zap.Int("count", stats.Total),
			zap.Int("failed", stats.Failed),
			zap.Duration("duration", stats.End.Sub(stats.Start)),
			zap.Error(err),
		)
		return stats, err
	}

	if n, cerr := s.index.Count(ctx); cerr != nil {
		s.logger.Warn("Index size unavailable", zap.Error(cerr))
	} else {
		stats.IndexSize = n
	}

	stats.End = s.now()
	s.logger.Info("Index reload",
		zap.Int("count", stats.Total),
		zap.Int("failed", stats.Failed),
		zap.Int("index_size", stats.IndexSize),
		zap.Duration("duration", stats.End.Sub(stats.Start)),
	)

	if stats.Failed > 0 {
		return stats, &domain.PartialFailureError{Failed: stats.Failed, Indexed: stats.Total}
	}
	return stats, nil
}

// PrepareIndex runs the index lifecycle decision. A selection of all drops the index
// with every document in it and recreates it; a narrow selection only creates the index
// when it is missing.
func (s *Service) PrepareIndex(ctx context.Context, sel selection.Selection) error {
	if sel.IsAll() {
		s.logger.Warn("Full rebuild: deleting search index and all its documents",
			zap.String("index", s.index.Name()),
		)
		deleted, err := s.index.Rebuild(ctx)
		if err != nil {
			return fmt.Errorf("rebuild index %s: %w", s.index.Name(), err)
		}
		s.logger.Warn("Search index recreated",
			zap.String("index", s.index.Name()),
			zap.Int("deleted_documents", deleted),
		)
		return nil
	}

	created, err := s.index.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("ensure index %s: %w", s.index.Name(), err)
	}
	if created {
		s.logger.Info("Search index created", zap.String("index", s.index.Name()))
	}
	return nil
}

func (s *Service) indexAll(
	ctx context.Context, sel selection.Selection, rels *resource.RelationshipMap, stats *Stats,
) error {
	for res, err := range s.catalog.Resources(ctx, sel) {
		if cerr := ctx.Err(); cerr != nil {
			return aborted(stats.Total, cerr)
		}
		if err != nil {
			return fmt.Errorf("select resources: %w", err)
		}

		if err := s.indexOne(ctx, res, rels); err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return aborted(stats.Total, cerr)
			}
			if !s.opts.SkipFailed {
				return err
			}
			stats.Failed++
			s.recorder.DocumentFailed()
			s.logger.Warn("Resource skipped", zap.String("id", res.ID), zap.Error(err))
			continue
		}

		stats.Total++
		s.recorder.DocumentIndexed()
	}
	return nil
}

func (s *Service) indexOne(ctx context.Context, res resource.Resource, rels *resource.RelationshipMap) error {
	doc, err := s.builder.BuildDocument(res, rels.For(res.ID))
	if err != nil {
		return fmt.Errorf("build document %s: %w", res.ID, err)
	}
	if err := s.index.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("index resource %s: %w", res.ID, err)
	}
	return nil
}

func aborted(done int, cause error) error {
	return fmt.Errorf("%w after %d records: %w", domain.ErrRunAborted, done, cause)
}

// IsAborted reports whether err stems from cancellation rather than a data or backend failure.
func IsAborted(err error) bool {
	return errors.Is(err, domain.ErrRunAborted)
}
