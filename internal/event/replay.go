package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IGDevX/marche-conclu-shop-service/internal/indexer"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	pkgkafka "github.com/IGDevX/marche-conclu-shop-service/pkg/kafka"
)

// Replayer runs index jobs synchronously.
type Replayer interface {
	IndexByID(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// ReplayHandler re-runs dead-lettered index jobs. Deletes are replayed as
// deletes; every other op reloads the product, so the document reflects the
// row as it is now rather than when the job failed. A product that no longer
// exists is skipped.
func ReplayHandler(ix Replayer, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, evt *pkgkafka.Event) error {
		if evt.EventType != TypeIndexFailed {
			logger.DebugContext(ctx, "ignoring event on dead-letter topic", slog.String("event_type", evt.EventType))
			return nil
		}

		var data IndexFailedData
		if err := evt.UnmarshalData(&data); err != nil {
			logger.ErrorContext(ctx, "dropping malformed dead letter",
				slog.String("event_id", evt.EventID),
				slog.String("error", err.Error()),
			)
			return nil
		}

		var err error
		if indexer.Op(data.Op) == indexer.OpDelete {
			err = ix.Delete(ctx, data.ProductID)
		} else {
			err = ix.IndexByID(ctx, data.ProductID)
		}

		switch {
		case err == nil:
			logger.InfoContext(ctx, "replayed dead-lettered index job",
				slog.String("op", data.Op),
				slog.Int64("product_id", data.ProductID),
			)
			return nil
		case errors.Is(err, apperrors.ErrNotFound):
			logger.WarnContext(ctx, "product gone, dead letter discarded", slog.Int64("product_id", data.ProductID))
			return nil
		default:
			return fmt.Errorf("replay %s product %d: %w", data.Op, data.ProductID, err)
		}
	}
}

// ReplayConfig configures the dead-letter replay consumer.
type ReplayConfig struct {
	Brokers    []string
	GroupID    string
	MaxRetries int
	RetryDelay time.Duration
}

// NewReplayConsumer creates a consumer on the index dead-letter topic.
// Events already replayed, according to store, are skipped.
func NewReplayConsumer(cfg ReplayConfig, ix Replayer, store pkgkafka.IdempotencyStore, logger *slog.Logger) *pkgkafka.Consumer {
	handler := pkgkafka.IdempotentHandler(store, ReplayHandler(ix, logger), logger)
	return pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:    cfg.Brokers,
		GroupID:    cfg.GroupID + "-dlq-replay",
		Topic:      pkgkafka.DLQTopic(DLQSource),
		MinBytes:   1,
		MaxBytes:   1 << 20,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}, handler, logger)
}
