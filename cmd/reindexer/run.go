package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reindexer/internal/catalog"
	"github.com/kailas-cloud/reindexer/internal/config"
	"github.com/kailas-cloud/reindexer/internal/db"
	dbRedis "github.com/kailas-cloud/reindexer/internal/db/redis"
	dbValkey "github.com/kailas-cloud/reindexer/internal/db/valkey"
	"github.com/kailas-cloud/reindexer/internal/domain/resource"
	"github.com/kailas-cloud/reindexer/internal/domain/selection"
	logpkg "github.com/kailas-cloud/reindexer/internal/logger"
	"github.com/kailas-cloud/reindexer/internal/metrics"
	"github.com/kailas-cloud/reindexer/internal/repository/resourceindex"
	"github.com/kailas-cloud/reindexer/internal/runguard"
	"github.com/kailas-cloud/reindexer/internal/usecase/health"
	"github.com/kailas-cloud/reindexer/internal/usecase/reindex"
	"github.com/kailas-cloud/reindexer/internal/version"
)

const metricsPushTimeout = 10 * time.Second

// runReindex is the composition root: it wires config, guard, backends and the reindex
// service, and maps the outcome to an exit status.
func runReindex(opts options, stderr io.Writer) int {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return 1
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logpkg.NewLogger(level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed to create logger: %v\n", programName, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting "+programName,
		zap.Int("pid", os.Getpid()),
		zap.Int("uid", os.Getuid()),
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
	)

	guard := runguard.New(cfg.PIDFile)
	if err := guard.Acquire(); err != nil {
		logger.Error("Cannot acquire run guard", zap.String("kind", errorKind(err)), zap.Error(err))
		return 1
	}
	defer func() {
		if err := guard.Release(); err != nil {
			logger.Warn("Failed to release run guard", zap.Error(err))
		}
	}()

	ctx, caught, stop := notifyContext(context.Background(), logger)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	err = reindexOnce(ctx, cfg, opts)
	return exitCode(ctx, err, caught.Load())
}

// notifyContext cancels the returned context on SIGINT/SIGTERM and remembers the signal.
func notifyContext(parent context.Context, logger *zap.Logger) (context.Context, *atomic.Value, func()) {
	ctx, cancel := context.WithCancel(parent)
	caught := &atomic.Value{}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			caught.Store(sig)
			logger.Error("Caught signal, aborting run",
				zap.String("signal", sig.String()),
				zap.Int("signum", signalNumber(sig)),
			)
			cancel()
		case <-done:
		}
	}()

	return ctx, caught, func() {
		signal.Stop(sigCh)
		close(done)
		cancel()
	}
}

// reindexOnce pushes metrics on every path once the selection is known, including
// connection and preflight failures that never reach the reindex service.
func reindexOnce(ctx context.Context, cfg config.Config, opts options) error {
	logger := logpkg.FromContext(ctx)

	dialect := catalog.Dialect(cfg.Catalog.Driver)
	logger.Info("Configured backends",
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("catalog", catalog.Target(dialect, cfg.Catalog.DSN)),
		zap.String("search_driver", cfg.Search.Driver),
		zap.Strings("search_hosts", cfg.Search.Hosts),
		zap.String("index", cfg.Search.Index),
	)

	sel := selection.Resolve(opts.groups, opts.types, opts.affiliations)

	runMetrics := metrics.NewRun()
	started := time.Now()
	ran := false
	defer func() {
		if !ran {
			runMetrics.RunFinished(0, sel.IsAll(), time.Since(started), false)
		}
		pushMetrics(ctx, cfg.Metrics, runMetrics)
	}()

	store, err := openStore(cfg.Search)
	if err != nil {
		return fmt.Errorf("connect search backend: %w", err)
	}
	defer store.Close()

	readiness := time.Duration(cfg.Search.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("search backend not ready: %w", err)
	}

	cat, err := catalog.Open(ctx, catalog.Config{
		Dialect:       dialect,
		DSN:           cfg.Catalog.DSN,
		ResourceTable: cfg.Catalog.ResourceTable,
		RelationTable: cfg.Catalog.RelationTable,
		MaxOpenConns:  cfg.Catalog.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("connect catalog: %w", err)
	}
	defer func() { _ = cat.Close() }()

	report := health.New().Add("search", store).Add("catalog", cat).Check(ctx)
	if err := report.Err(); err != nil {
		return fmt.Errorf("preflight %s: %w", report.Status, err)
	}
	logger.Debug("Preflight checks passed", zap.Any("checks", report.Checks))

	index := resourceindex.New(store, cfg.Search.Index, cfg.Search.KeyPrefix)
	svc := reindex.New(cat, index, resource.DefaultRegistry(), logger).
		WithOptions(reindex.Options{
			SkipFailed:      cfg.Run.SkipFailed,
			StrictRelations: cfg.Run.StrictRelations,
		}).
		WithRecorder(runMetrics)

	ran = true
	_, err = svc.Run(ctx, sel)
	return err
}

// pushMetrics is best effort: a failed push is logged and never changes the exit status.
func pushMetrics(ctx context.Context, cfg config.MetricsConfig, run *metrics.Run) {
	if cfg.PushgatewayURL == "" {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
	defer cancel()
	if err := run.Push(pushCtx, cfg.PushgatewayURL, cfg.Job); err != nil {
		logpkg.FromContext(ctx).Warn("Metrics push failed", zap.Error(err))
	}
}

func openStore(cfg config.SearchConfig) (db.Store, error) {
	conn := dbRedis.Config{
		Addrs:    cfg.Hosts,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
	}
	switch cfg.Driver {
	case "valkey":
		return dbValkey.NewStore(dbValkey.Config{Config: conn, KeyPrefix: cfg.KeyPrefix})
	case "redis":
		return dbRedis.NewStore(conn)
	default:
		return nil, fmt.Errorf("unknown search driver %q", cfg.Driver)
	}
}

// exitCode maps the run outcome: 0 on success, the signal number after a caught signal,
// 1 for any other failure. The failure is logged with its kind.
func exitCode(ctx context.Context, err error, caught any) int {
	logger := logpkg.FromContext(ctx)

	if sig, ok := caught.(os.Signal); ok {
		if err != nil && !errors.Is(err, context.Canceled) && !reindex.IsAborted(err) {
			logger.Error("Run failed during shutdown", zap.String("kind", errorKind(err)), zap.Error(err))
		}
		return signalNumber(sig)
	}
	if err != nil {
		logger.Error("Run failed", zap.String("kind", errorKind(err)), zap.Error(err))
		return 1
	}
	return 0
}

func signalNumber(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return int(s)
	}
	return 1
}
