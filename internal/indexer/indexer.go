// Package indexer owns every write to the product search index: synchronous
// operations for operators and the reconciler, and retried asynchronous jobs
// fed by the event relay.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/engine"
	"github.com/IGDevX/marche-conclu-shop-service/internal/mapper"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

// Op names an index operation in logs, metrics and dead letters.
type Op string

// Index operations.
const (
	OpIndex   Op = "index"
	OpDelete  Op = "delete"
	OpIndexID Op = "index_by_id"
)

// DefaultBatchSize is the page size used by paginated reindexing.
const DefaultBatchSize = 1000

// DefaultReindexTimeout bounds a full reindex once it has started.
const DefaultReindexTimeout = 30 * time.Minute

// ProductSource loads products for indexing.
type ProductSource interface {
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int64, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// DeadLetter receives async jobs that exhausted their retries.
type DeadLetter interface {
	IndexFailed(ctx context.Context, op Op, productID int64, cause error, attempts int) error
}

// Config tunes an Indexer.
type Config struct {
	Retry     RetryPolicy
	BatchSize int
	// ReindexTimeout bounds full reindexes, which do not stop when the
	// caller goes away.
	ReindexTimeout time.Duration
}

// Option customizes an Indexer.
type Option func(*Indexer)

// WithDeadLetter routes exhausted jobs to dl.
func WithDeadLetter(dl DeadLetter) Option {
	return func(i *Indexer) { i.deadLetter = dl }
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(i *Indexer) { i.sleep = sleep }
}

// Indexer maps products to documents and writes them to the index.
type Indexer struct {
	writer     engine.Writer
	products   ProductSource
	pool       *Pool
	retry      RetryPolicy
	batchSize  int
	reindexTTL time.Duration
	sleep      SleepFunc
	deadLetter DeadLetter
	logger     *slog.Logger
}

// New creates an Indexer. pool runs the async operations.
func New(writer engine.Writer, products ProductSource, pool *Pool, cfg Config, log *slog.Logger, opts ...Option) *Indexer {
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ReindexTimeout <= 0 {
		cfg.ReindexTimeout = DefaultReindexTimeout
	}
	i := &Indexer{
		writer:    writer,
		products:  products,
		pool:      pool,
		retry:     cfg.Retry,
		batchSize:  cfg.BatchSize,
		reindexTTL: cfg.ReindexTimeout,
		sleep:      sleepContext,
		logger:     log,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ─── Synchronous operations ─────────────────────────────────────────────────

// IndexOne maps p and upserts its document.
func (i *Indexer) IndexOne(ctx context.Context, p *domain.Product) error {
	doc := mapper.ToDocument(p)
	if doc == nil {
		return apperrors.InvalidInput("cannot index a nil product")
	}
	if err := i.writer.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	return nil
}

// IndexByID loads the product, soft-deleted rows included, and indexes it.
// NotFound when the row never existed or was hard-deleted.
func (i *Indexer) IndexByID(ctx context.Context, id int64) error {
	p, err := i.products.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	return i.IndexOne(ctx, p)
}

// Delete removes the document for id. An absent document is not an error.
func (i *Indexer) Delete(ctx context.Context, id int64) error {
	if err := i.writer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	return nil
}

// detach keeps ctx values but drops its cancellation. A cleared index must be
// refilled even when the caller disconnects.
func (i *Indexer) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), i.reindexTTL)
}

// ReindexAll clears the index and writes every product in one bulk request.
func (i *Indexer) ReindexAll(ctx context.Context) (int, error) {
	ctx, cancel := i.detach(ctx)
	defer cancel()
	if err := i.writer.Clear(ctx); err != nil {
		return 0, fmt.Errorf("reindex all: clear: %w", err)
	}
	products, err := i.products.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex all: load products: %w", err)
	}
	docs := toDocuments(products)
	if err := i.writer.BulkUpsert(ctx, docs); err != nil {
		return 0, fmt.Errorf("reindex all: bulk upsert: %w", err)
	}
	i.logger.InfoContext(ctx, "reindexed all products", slog.Int("count", len(docs)))
	return len(docs), nil
}

// ReindexAllPaginated clears the index and writes products batch by batch.
// A batch that fails to load or write is logged and skipped. It returns the
// number of documents written.
func (i *Indexer) ReindexAllPaginated(ctx context.Context) (int, error) {
	ctx, cancel := i.detach(ctx)
	defer cancel()
	log := logger.WithContext(ctx, i.logger)
	if err := i.writer.Clear(ctx); err != nil {
		return 0, fmt.Errorf("paginated reindex: clear: %w", err)
	}

	indexed := 0
	totalPages := -1
	for page := 0; totalPages < 0 || page < totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		products, total, err := i.products.List(ctx, repository.ProductFilter{Page: page, Size: i.batchSize})
		if err != nil {
			if totalPages < 0 {
				return indexed, fmt.Errorf("paginated reindex: load first batch: %w", err)
			}
			log.Error("failed to load reindex batch, skipping",
				slog.Int("page", page),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(products) == 0 {
			break
		}
		totalPages = int((total + int64(i.batchSize) - 1) / int64(i.batchSize))

		docs := toDocuments(products)
		if err := i.writer.BulkUpsert(ctx, docs); err != nil {
			reindexDocuments.WithLabelValues(resultFailure).Add(float64(len(docs)))
			log.Error("failed to index reindex batch, skipping",
				slog.Int("page", page),
				slog.Int("batch_size", len(docs)),
				slog.String("error", apperrors.Indexing("bulk_upsert", err).Error()),
			)
			continue
		}
		indexed += len(docs)
		reindexDocuments.WithLabelValues(resultSuccess).Add(float64(len(docs)))
		log.Debug("indexed reindex batch",
			slog.Int("page", page),
			slog.Int("total_pages", totalPages),
			slog.Int("indexed", indexed),
		)
	}

	log.Info("paginated reindex finished", slog.Int("indexed", indexed))
	return indexed, nil
}

// RecreateIndex drops the index and creates it with a fresh mapping.
func (i *Indexer) RecreateIndex(ctx context.Context) error {
	if err := i.writer.Recreate(ctx); err != nil {
		return fmt.Errorf("recreate index: %w", err)
	}
	return nil
}

// RecreateAndReindex recreates the index and runs a paginated reindex.
// Like ReindexAllPaginated it runs to completion without the caller.
func (i *Indexer) RecreateAndReindex(ctx context.Context) (int, error) {
	ctx, cancel := i.detach(ctx)
	defer cancel()
	if err := i.RecreateIndex(ctx); err != nil {
		return 0, err
	}
	return i.ReindexAllPaginated(ctx)
}

// ClearIndex removes every document and keeps the index.
func (i *Indexer) ClearIndex(ctx context.Context) error {
	if err := i.writer.Clear(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

// IndexedCount returns the number of indexed documents.
func (i *Indexer) IndexedCount(ctx context.Context) (int64, error) {
	n, err := i.writer.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func toDocuments(products []domain.Product) []domain.ProductDocument {
	docs := make([]domain.ProductDocument, 0, len(products))
	for k := range products {
		if doc := mapper.ToDocument(&products[k]); doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs
}

// ─── Asynchronous operations ────────────────────────────────────────────────

// IndexOneAsync maps p now and upserts the document on the pool with retry.
func (i *Indexer) IndexOneAsync(ctx context.Context, p *domain.Product) error {
	doc := mapper.ToDocument(p)
	if doc == nil {
		return apperrors.InvalidInput("cannot index a nil product")
	}
	return i.submit(ctx, OpIndex, doc.ID, func(ctx context.Context) error {
		return i.writer.Upsert(ctx, doc)
	})
}

// IndexByIDAsync reloads and indexes the product on the pool with retry.
func (i *Indexer) IndexByIDAsync(ctx context.Context, id int64) error {
	return i.submit(ctx, OpIndexID, id, func(ctx context.Context) error {
		return i.IndexByID(ctx, id)
	})
}

// DeleteAsync removes the document on the pool with retry.
func (i *Indexer) DeleteAsync(ctx context.Context, id int64) error {
	return i.submit(ctx, OpDelete, id, func(ctx context.Context) error {
		return i.Delete(ctx, id)
	})
}

// submit schedules fn. The caller's context only contributes values such as
// the correlation id; the job is canceled by the pool, not by the caller.
func (i *Indexer) submit(ctx context.Context, op Op, id int64, fn func(ctx context.Context) error) error {
	values := context.WithoutCancel(ctx)
	err := i.pool.Submit(func(poolCtx context.Context) {
		jobCtx, cancel := context.WithCancel(values)
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()

		i.runJob(jobCtx, op, id, fn)
	})
	if err != nil {
		indexRejected.WithLabelValues(string(op)).Inc()
		return fmt.Errorf("%s product %d: %w", op, id, err)
	}
	return nil
}

func (i *Indexer) runJob(ctx context.Context, op Op, id int64, fn func(ctx context.Context) error) {
	log := logger.WithContext(ctx, i.logger).With(slog.String("op", string(op)), slog.Int64("product_id", id))

	attempts, err := i.retry.Do(ctx, i.sleep, fn, func(attempt int, err error) {
		indexRetries.WithLabelValues(string(op)).Inc()
		log.Warn("index job failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", i.retry.Backoff(attempt)),
			slog.String("error", err.Error()),
		)
	})

	switch {
	case err == nil:
		indexJobs.WithLabelValues(string(op), resultSuccess).Inc()
	case errors.Is(err, apperrors.ErrNotFound):
		indexJobs.WithLabelValues(string(op), resultNotFound).Inc()
		log.Warn("product not found, nothing to index")
	default:
		indexJobs.WithLabelValues(string(op), resultFailure).Inc()
		failure := apperrors.Indexing(string(op), err)
		log.Error("index job failed after all attempts",
			slog.Int("attempt", attempts),
			slog.String("error", failure.Error()),
		)
		if i.deadLetter != nil && ctx.Err() == nil {
			if dlErr := i.deadLetter.IndexFailed(ctx, op, id, err, attempts); dlErr != nil {
				log.Error("failed to dead-letter index job", slog.String("error", dlErr.Error()))
			}
		}
	}
}
