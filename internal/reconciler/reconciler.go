// Package reconciler repopulates an empty search index when the service
// starts.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LockKey is the redis key guarding startup reconciliation.
const LockKey = "shop:reconciler:lock"

// DefaultLockTTL bounds how long a crashed replica can keep the lock.
const DefaultLockTTL = 10 * time.Minute

// ManualReindexHint is logged when reconciliation fails.
const ManualReindexHint = "POST /api/products/index/reindex-all"

// Index is the part of the indexer the reconciler drives.
type Index interface {
	IndexedCount(ctx context.Context) (int64, error)
	ReindexAllPaginated(ctx context.Context) (int, error)
}

// Result reports what a run did.
type Result struct {
	Before    int64
	Indexed   int
	Reindexed bool
	LockHeld  bool
}

// Reconciler checks the index on startup and rebuilds it when empty.
type Reconciler struct {
	index  Index
	locker Locker
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Reconciler. A nil locker disables locking.
func New(index Index, locker Locker, ttl time.Duration, logger *slog.Logger) *Reconciler {
	if locker == nil {
		locker = NoopLocker{}
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Reconciler{index: index, locker: locker, ttl: ttl, logger: logger}
}

// Run reindexes when the index holds no documents. A replica that cannot
// take the lock leaves the work to the holder.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	release, err := r.locker.Acquire(ctx, LockKey, r.ttl)
	if errors.Is(err, ErrLockHeld) {
		r.logger.InfoContext(ctx, "reconciliation running on another instance, skipping")
		return Result{LockHeld: true}, nil
	}
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			r.logger.WarnContext(ctx, "failed to release reconciler lock", slog.String("error", err.Error()))
		}
	}()

	before, err := r.index.IndexedCount(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count indexed documents: %w", err)
	}
	if before > 0 {
		r.logger.InfoContext(ctx, "search index populated, no reconciliation needed", slog.Int64("documents", before))
		return Result{Before: before}, nil
	}

	r.logger.InfoContext(ctx, "search index empty, reindexing all products")
	start := time.Now()
	indexed, err := r.index.ReindexAllPaginated(ctx)
	if err != nil {
		return Result{Before: before, Indexed: indexed}, fmt.Errorf("reindex: %w", err)
	}

	after, err := r.index.IndexedCount(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to count documents after reindex", slog.String("error", err.Error()))
	}
	r.logger.InfoContext(ctx, "startup reconciliation finished",
		slog.Int64("before", before),
		slog.Int("indexed", indexed),
		slog.Int64("after", after),
		slog.Duration("duration", time.Since(start)),
	)
	return Result{Before: before, Indexed: indexed, Reindexed: true}, nil
}

// Start runs the reconciler in the background. Failures are logged with the
// manual recovery endpoint and never stop the service.
func (r *Reconciler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := r.Run(ctx); err != nil {
			r.logger.ErrorContext(ctx, "startup reconciliation failed, reindex manually",
				slog.String("error", err.Error()),
				slog.String("hint", ManualReindexHint),
			)
		}
	}()
	return done
}
